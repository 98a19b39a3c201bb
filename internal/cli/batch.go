package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ppiankov/brandguard/internal/export"
	"github.com/ppiankov/brandguard/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchFormat  string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Run several briefs from a list file in parallel",
	Long: `Batch runs multiple event briefs concurrently against one knowledge store:
- Read brief paths from the input file (one per line, relative to the file)
- Run each brief through the gated loop with a bounded worker pool
- Write one export bundle per brief

Example:
  brandguard batch briefs.txt
  brandguard batch briefs.txt --concurrency 4 --output-dir ./bundles
  brandguard batch briefs.txt --format yaml --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", min(runtime.NumCPU(), 4), "number of briefs run at once")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./brandguard-bundles", "output directory for bundles")
	batchCmd.Flags().StringVar(&batchFormat, "format", "json", "bundle format: json or yaml")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	format, err := export.ResolveFormat("", batchFormat)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  BrandGuard Batch Run\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	controller, err := a.controller()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "⚙️  Running briefs with %d workers...\n\n", concurrency)
	results, err := worker.NewBatchRunner(controller, concurrency).RunFile(ctx, file)
	if err != nil {
		return fmt.Errorf("run batch: %w", err)
	}

	passed, flagged, failed := 0, 0, 0
	for _, result := range results {
		if result.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Source, result.Error)
			continue
		}

		res := result.Result
		name := fmt.Sprintf("%02d-%s.%s", result.Index+1, sanitizeFilename(res.Bundle.EventTitle), format)
		path := filepath.Join(outputDir, name)
		if err := export.WriteBundle(path, format, res.Bundle); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Source, err)
			continue
		}

		if res.Success {
			passed++
			fmt.Fprintf(os.Stderr, "✓ %s → %s (%d iteration(s))\n", result.Source, name, res.IterationsUsed)
		} else {
			flagged++
			fmt.Fprintf(os.Stderr, "⚠ %s → %s (flags: %s)\n", result.Source, name, joinFlags(res.Flags))
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d briefs\n", len(results))
	fmt.Fprintf(os.Stderr, "  Passed:    %d\n", passed)
	fmt.Fprintf(os.Stderr, "  Flagged:   %d\n", flagged)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failed)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

var filenameReplacer = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_", " ", "-",
)

// sanitizeFilename turns an event title into a safe file name
func sanitizeFilename(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = filenameReplacer.Replace(s)
	s = strings.Trim(s, ".-_")
	if s == "" {
		s = "bundle"
	}
	if r := []rune(s); len(r) > 80 {
		s = string(r[:80])
	}
	return s
}
