package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/ppiankov/brandguard/internal/export"
	"github.com/ppiankov/brandguard/internal/model"
	"github.com/ppiankov/brandguard/internal/worker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	resultPath string
	strict     bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <brief>",
	Short: "Generate gated copy for one event brief",
	Long: `Run the draft, check and retry loop for an event brief (YAML or JSON):
- Retrieve brand voice and product context from the knowledge store
- Ask the drafting agent for every requested channel
- Check the response schema, score each draft and verify every claim
- Retry with feedback until all gates pass or the iteration budget is spent

The export bundle is always written. A run that never passed is exported
with flags naming the unmet gates.

Example:
  brandguard run brief.yaml
  brandguard run brief.yaml -o out/webinar.yaml --max-iterations 5
  brandguard run brief.json --provider anthropic --strict`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{
			"output":         "output.bundle_path",
			"format":         "output.format",
			"max-iterations": "runner.max_iterations",
			"provider":       "agent.provider",
			"model":          "agent.model",
		})
	},
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("output", "o", "", "export bundle path (default: output.bundle_path)")
	runCmd.Flags().String("format", "", "bundle format: json or yaml (default: from extension)")
	runCmd.Flags().Int("max-iterations", 0, "iteration budget (default: runner.max_iterations)")
	runCmd.Flags().String("provider", "", "drafting agent provider (openai, anthropic, ollama)")
	runCmd.Flags().String("model", "", "drafting agent model")
	runCmd.Flags().StringVar(&resultPath, "result", "", "also write the full run result (history and audit) to this path")
	runCmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when the run exports with flags")
}

func runRun(cmd *cobra.Command, args []string) error {
	brief, err := worker.LoadBrief(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	controller, err := a.controller()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Generating copy for %q (%d channel(s), up to %d iteration(s))...\n",
		brief.Title, len(brief.Channels), max(a.cfg.Runner.MaxIterations, 1))

	res := controller.Run(ctx, *brief)

	if err := writeRunOutputs(a.cfg.Output, res, resultPath); err != nil {
		return err
	}
	a.logger.Info("run finished",
		zap.String("run_id", res.RunID),
		zap.Bool("success", res.Success),
		zap.Int("iterations", res.IterationsUsed))

	export.WriteSummary(os.Stdout, res)

	if strict && !res.Success {
		return fmt.Errorf("run %s exported with flags: %s", res.RunID, joinFlags(res.Flags))
	}
	return nil
}

// writeRunOutputs writes the bundle and, when requested, the full result
func writeRunOutputs(out model.OutputConfig, res *model.RunResult, fullPath string) error {
	bundlePath := out.BundlePath
	if bundlePath == "" {
		bundlePath = model.DefaultConfig().Output.BundlePath
	}
	if err := export.WriteBundle(bundlePath, out.Format, res.Bundle); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Bundle written to: %s\n", bundlePath)

	if fullPath != "" {
		if err := export.WriteFile(fullPath, "", res); err != nil {
			return fmt.Errorf("write run result: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Run result written to: %s\n", fullPath)
	}
	return nil
}

func joinFlags(flags []model.Flag) string {
	names := make([]string, len(flags))
	for i, f := range flags {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
