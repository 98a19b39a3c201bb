package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/brandguard/internal/auditlog"
	"github.com/ppiankov/brandguard/internal/runner"
	"github.com/spf13/cobra"
)

var (
	auditFile string
	auditDir  string
	listRuns  bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [run-id]",
	Short: "Summarise how a run used its tools",
	Long: `Read the audit log and describe one run: the tool sequence, how often
drafts were critiqued and claims verified, whether context was retrieved
before drafting and how the run ended. Without a run id the latest run
is analysed.

Example:
  brandguard analyze
  brandguard analyze 1b4e28ba-2fa1-11d2-883f-0016d3cca427
  brandguard analyze --list --file output/audit.jsonl`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := readAudit()
		if err != nil {
			return err
		}
		runs := auditlog.Runs(records)
		if len(runs) == 0 {
			return fmt.Errorf("no runs in the audit log")
		}

		if listRuns {
			for _, r := range runs {
				a := runner.Analyze(r.Entries)
				fmt.Printf("%s  iterations=%d  %s\n", r.ID, a.Iterations, outcome(a))
			}
			return nil
		}

		run := runs[len(runs)-1]
		if len(args) == 1 {
			found := false
			for _, r := range runs {
				if r.ID == args[0] {
					run, found = r, true
					break
				}
			}
			if !found {
				return fmt.Errorf("run %s not found in the audit log", args[0])
			}
		}

		a := runner.Analyze(run.Entries)
		a.RunID = run.ID
		printAnalysis(a)
		return nil
	},
}

func readAudit() ([]auditlog.Record, error) {
	if auditFile != "" {
		return auditlog.ReadFile(auditFile)
	}

	dir := auditDir
	if dir == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		dir = cfg.Output.AuditDir
	}
	store, err := auditlog.New(auditlog.Options{Dir: dir})
	if err != nil {
		return nil, err
	}
	return store.ReadAll()
}

func outcome(a runner.Analysis) string {
	switch {
	case a.Succeeded:
		return "passed"
	case a.Flagged:
		return "exported with flags"
	default:
		return "incomplete"
	}
}

func printAnalysis(a runner.Analysis) {
	fmt.Printf("Run:         %s\n", a.RunID)
	fmt.Printf("Outcome:     %s\n", outcome(a))
	fmt.Printf("Iterations:  %d\n", a.Iterations)
	fmt.Printf("Sequence:    %s\n", strings.Join(a.ToolSequence, " → "))

	tools := make([]string, 0, len(a.ToolCounts))
	for t := range a.ToolCounts {
		tools = append(tools, t)
	}
	sort.Strings(tools)
	fmt.Println("Tool calls:")
	for _, t := range tools {
		fmt.Printf("  %-18s %d\n", t, a.ToolCounts[t])
	}

	if len(a.Observations) > 0 {
		fmt.Println("Observations:")
		for _, o := range a.Observations {
			fmt.Printf("  - %s\n", o)
		}
	}
	if !a.RetrievedFirst {
		fmt.Fprintln(os.Stderr, "\n⚠ drafting started before any context was retrieved")
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&auditFile, "file", "", "read a single audit JSONL file")
	analyzeCmd.Flags().StringVar(&auditDir, "dir", "", "audit directory (default: output.audit_dir)")
	analyzeCmd.Flags().BoolVar(&listRuns, "list", false, "list every run in the log")
}
