package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/ppiankov/brandguard/internal/knowledge"
	"github.com/ppiankov/brandguard/internal/model"
	"github.com/spf13/cobra"
)

var (
	ingestURLs     []string
	ingestCategory string
	ingestWatch    bool
	ingestDebounce time.Duration
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [corpus-dir]",
	Short: "Chunk, embed and store the brand and product corpus",
	Long: `Ingest the knowledge corpus into the chunk database:
- Walk the corpus directory (default: knowledge.corpus_dir)
- Infer each file's category from its path (brand/voice/style or product/feature/docs)
- Extract text from Markdown, plain text, HTML and PDF files
- Fetch pages by URL, respecting robots.txt and per-domain rate limits

Re-ingesting a file replaces its previous chunks. With --watch, changed
files are re-ingested until interrupted.

Example:
  brandguard ingest ./corpus
  brandguard ingest --url https://example.com/product --category product
  brandguard ingest ./corpus --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringSliceVar(&ingestURLs, "url", nil, "page or PDF URL to ingest (repeatable)")
	ingestCmd.Flags().StringVar(&ingestCategory, "category", "product", "category for --url sources (brand or product)")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "keep watching the corpus directory for changes")
	ingestCmd.Flags().DurationVar(&ingestDebounce, "debounce", 500*time.Millisecond, "delay before re-ingesting a changed file")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	dir := a.cfg.Knowledge.CorpusDir
	if len(args) == 1 {
		dir = args[0]
	}
	ingester := a.ingester()

	if len(ingestURLs) > 0 {
		category, err := model.ParseCategory(ingestCategory)
		if err != nil {
			return err
		}
		for _, u := range ingestURLs {
			fmt.Fprintf(os.Stderr, "⚙️  Fetching %s...\n", u)
			n, err := ingester.IngestURL(ctx, u, category)
			if err != nil {
				fmt.Fprintf(os.Stderr, "✗ %s: %v\n", u, err)
				continue
			}
			fmt.Fprintf(os.Stderr, "✓ %s: %d %s chunk(s)\n", u, n, category)
		}
	}

	// URL-only ingestion skips the corpus walk unless a directory was named
	if len(ingestURLs) == 0 || len(args) == 1 {
		if err := ingestCorpus(ctx, ingester, dir); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "\nKnowledge store: %d brand chunk(s), %d product chunk(s) (%s)\n",
		a.store.Count(model.CategoryBrand), a.store.Count(model.CategoryProduct), a.cfg.Knowledge.DBPath)

	if !ingestWatch {
		return nil
	}

	fmt.Fprintf(os.Stderr, "\n👀 Watching %s for changes (Ctrl+C to stop)...\n", dir)
	watcher := knowledge.NewWatcher(dir, ingester, ingestDebounce, a.logger)
	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("watch corpus: %w", err)
	}
	return nil
}

func ingestCorpus(ctx context.Context, ingester *knowledge.Ingester, dir string) error {
	fmt.Fprintf(os.Stderr, "⚙️  Ingesting corpus from %s...\n", dir)
	summary, err := ingester.IngestDir(ctx, dir)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", dir, err)
	}

	categories := make([]string, 0, len(summary.Chunks))
	for c := range summary.Chunks {
		categories = append(categories, string(c))
	}
	sort.Strings(categories)

	fmt.Fprintf(os.Stderr, "✓ %d file(s), %d chunk(s)\n", summary.Files, summary.Total())
	for _, c := range categories {
		fmt.Fprintf(os.Stderr, "    %-8s %d\n", c, summary.Chunks[model.Category(c)])
	}
	for _, s := range summary.Skipped {
		fmt.Fprintf(os.Stderr, "  - skipped %s\n", s)
	}
	return nil
}
