package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/brandguard/internal/critic"
	"github.com/ppiankov/brandguard/internal/export"
	"github.com/ppiankov/brandguard/internal/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	draftFile     string
	draftChannel  string
	draftHeadline string
	draftBody     string
	draftCTA      string
	printFormat   string
)

// critiqueCmd represents the critique command
var critiqueCmd = &cobra.Command{
	Use:   "critique",
	Short: "Score a draft against the channel rubric",
	Long: `Score one channel draft with the deterministic critic: length limits,
brand voice and CTA clarity. The same draft always gets the same scorecard.

Example:
  brandguard critique --file draft.yaml
  brandguard critique --channel email --headline "Save your seat" \
    --body "You are invited..." --cta "Register now: {link}"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		draft, err := loadDraft()
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		card := critic.NewCritic(cfg.Critic).Critique(draft)

		format, err := export.ResolveFormat("", printFormat)
		if err != nil {
			return err
		}
		data, err := export.Marshal(card, format)
		if err != nil {
			return err
		}
		fmt.Print(string(data))

		if !card.Passed {
			fmt.Fprintf(os.Stderr, "\n✗ %s draft does not pass the quality gate\n", card.Channel)
		}
		return nil
	},
}

// loadDraft reads a draft from --file or assembles it from flags
func loadDraft() (model.ChannelDraft, error) {
	var draft model.ChannelDraft
	if draftFile != "" {
		data, err := os.ReadFile(draftFile)
		if err != nil {
			return draft, fmt.Errorf("read draft: %w", err)
		}
		if err := yaml.Unmarshal(data, &draft); err != nil {
			return draft, fmt.Errorf("parse draft %s: %w", draftFile, err)
		}
	}

	if draftChannel != "" {
		draft.Channel = model.Channel(draftChannel)
	}
	if draftHeadline != "" {
		draft.Headline = draftHeadline
	}
	if draftBody != "" {
		draft.Body = draftBody
	}
	if draftCTA != "" {
		draft.CTA = draftCTA
	}

	channel, err := model.ParseChannel(string(draft.Channel))
	if err != nil {
		return draft, err
	}
	draft.Channel = channel
	return draft, nil
}

func init() {
	rootCmd.AddCommand(critiqueCmd)

	critiqueCmd.Flags().StringVarP(&draftFile, "file", "f", "", "draft file (YAML or JSON)")
	critiqueCmd.Flags().StringVar(&draftChannel, "channel", "", "channel: email, facebook, linkedin or web")
	critiqueCmd.Flags().StringVar(&draftHeadline, "headline", "", "headline (email subject)")
	critiqueCmd.Flags().StringVar(&draftBody, "body", "", "body (web subhead)")
	critiqueCmd.Flags().StringVar(&draftCTA, "cta", "", "call to action")
	critiqueCmd.Flags().StringVar(&printFormat, "format", "yaml", "output format: json or yaml")
}
