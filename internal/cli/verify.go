package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/brandguard/internal/model"
	"github.com/spf13/cobra"
)

var verifySources []string

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <claim>...",
	Short: "Trace claims to knowledge store chunks",
	Long: `Verify factual claims against candidate chunks by embedding similarity.

Candidates are the chunk ids given with --source. Without --source, the
top product chunks for each claim are retrieved first, the way the
controller does on a retry.

Example:
  brandguard verify "Fortune 500 customers cut incidents by 75%"
  brandguard verify "Deploys in under a day" --source seed_product_2`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		candidates := verifySources
		if len(candidates) == 0 {
			for _, claim := range args {
				chunks, err := a.store.Search(ctx, claim, model.CategoryProduct, a.cfg.Runner.RetrievalK)
				if err != nil {
					return fmt.Errorf("retrieve candidates: %w", err)
				}
				for _, c := range chunks {
					candidates = append(candidates, c.ID)
				}
			}
		}

		claims, err := a.verifier.Verify(ctx, args, candidates)
		if err != nil {
			return err
		}

		unsupported := 0
		for _, c := range claims {
			mark := "✓"
			if !c.Supported {
				mark = "✗"
				unsupported++
			}
			fmt.Printf("%s %.3f %-9s %s\n", mark, c.Similarity, c.Match, c.Text)
			if c.SourceChunkID != "" {
				fmt.Printf("    source: %s\n", c.SourceChunkID)
			}
			if c.QuotedSpan != "" {
				fmt.Printf("    quote:  %q\n", c.QuotedSpan)
			}
		}

		if unsupported > 0 {
			fmt.Fprintf(os.Stderr, "\n%d of %d claim(s) unsupported\n", unsupported, len(claims))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringSliceVar(&verifySources, "source", nil, "candidate chunk id (repeatable)")
}
