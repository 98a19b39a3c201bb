package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/brandguard/internal/model"
)

// WriteSummary prints a human-readable run summary
func WriteSummary(w io.Writer, res *model.RunResult) {
	status := "PASSED"
	if !res.Success {
		status = "EXPORTED WITH FLAGS"
	}

	fmt.Fprintf(w, "\nRun %s: %s after %d iteration(s)\n", res.RunID, status, res.IterationsUsed)
	if len(res.Flags) > 0 {
		flags := make([]string, len(res.Flags))
		for i, f := range res.Flags {
			flags[i] = string(f)
		}
		fmt.Fprintf(w, "Flags: %s\n", strings.Join(flags, ", "))
	}
	if res.Bundle == nil {
		return
	}

	fmt.Fprintln(w, "\nScorecards:")
	for _, ch := range model.AllChannels() {
		card, ok := res.Bundle.Scorecard[ch]
		if !ok {
			continue
		}
		mark := "✓"
		if !card.Passed {
			mark = "✗"
		}
		fmt.Fprintf(w, "  %s %-9s brand voice %2d/10  CTA clarity %2d/10  length ok: %t\n",
			mark, ch, card.BrandVoiceScore, card.CTAClarityScore, card.LengthOK)
		for _, issue := range card.Issues {
			fmt.Fprintf(w, "      - %s\n", issue)
		}
	}

	if len(res.Bundle.ClaimsTable) > 0 {
		fmt.Fprintln(w, "\nClaims:")
		for _, c := range res.Bundle.ClaimsTable {
			mark := "✓"
			if !c.Supported {
				mark = "✗"
			}
			source := c.SourceChunkID
			if source == "" {
				source = "no source"
			}
			fmt.Fprintf(w, "  %s %.2f %-8s %q (%s)\n", mark, c.Similarity, c.Match, c.Text, source)
		}
	}
}
