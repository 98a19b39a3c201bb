package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/brandguard/internal/model"
	"github.com/ppiankov/brandguard/internal/verify"
	"github.com/spf13/cobra"
)

var (
	searchType string
	searchK    int
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the knowledge store",
	Long: `Rank the chunks of one category by similarity to a query.

Example:
  brandguard search "brand voice guidelines" --type brand
  brandguard search "identity security results" -k 3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := model.ParseCategory(searchType)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		k := searchK
		if k <= 0 {
			k = a.cfg.Runner.RetrievalK
		}
		matches, err := a.store.SearchScored(cmd.Context(), args[0], category, k)
		if err != nil {
			return err
		}

		if len(matches) == 0 {
			fmt.Fprintf(os.Stderr, "No %s chunks in the knowledge store. Run 'brandguard ingest' first.\n", category)
			return nil
		}
		for i, m := range matches {
			fmt.Printf("%d. [%s] %.3f  %s\n", i+1, m.Chunk.ID, m.Score, m.Chunk.Source)
			fmt.Printf("   %s\n", verify.Excerpt(m.Chunk.Text, 40))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchType, "type", "product", "context type: brand or product")
	searchCmd.Flags().IntVarP(&searchK, "k", "k", 0, "number of results (default: runner.retrieval_k)")
}
