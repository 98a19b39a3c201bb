// Package critic scores channel drafts against length limits and the brand voice and CTA rubrics.
// Scoring is a pure function of the draft, the channel constraints and the rubric weights.
package critic

import (
	"fmt"

	"github.com/ppiankov/brandguard/internal/extract"
	"github.com/ppiankov/brandguard/internal/model"
)

// Critic scores drafts using a per-channel rule table
type Critic struct {
	rules  map[model.Channel]model.ChannelConstraints
	rubric model.RubricWeights
}

// NewCritic creates a critic. Channels missing from cfg use the built-in rules.
func NewCritic(cfg model.CriticConfig) *Critic {
	rules := model.DefaultChannelConstraints()
	for ch, c := range cfg.Channels {
		rules[ch] = c
	}
	rubric := cfg.Rubric
	if rubric == (model.RubricWeights{}) {
		rubric = model.DefaultRubric()
	}
	return &Critic{rules: rules, rubric: rubric}
}

// Constraints returns the rules applied to channel
func (c *Critic) Constraints(channel model.Channel) model.ChannelConstraints {
	if r, ok := c.rules[channel]; ok {
		return r
	}
	return model.ChannelConstraints{BrandVoiceMin: 7, CTAClarityMin: 7}
}

// Critique scores draft against its channel's rules
func (c *Critic) Critique(draft model.ChannelDraft) model.Scorecard {
	return Critique(draft, c.Constraints(draft.Channel), c.rubric)
}

// Critique scores one draft. Repeated calls with the same input return identical scorecards.
// Issues are ordered length, brand voice, then CTA.
func Critique(draft model.ChannelDraft, rules model.ChannelConstraints, rubric model.RubricWeights) model.Scorecard {
	length := checkLength(draft, rules)
	voice := scoreBrandVoice(draft, rubric)
	cta := scoreCTA(draft.CTA, rubric)

	var issues []string
	issues = append(issues, length.issues...)
	issues = append(issues, voice.issues...)
	if voice.score < rules.BrandVoiceMin {
		issues = append(issues, fmt.Sprintf("brand voice score %d is below minimum %d", voice.score, rules.BrandVoiceMin))
	}
	issues = append(issues, cta.issues...)
	if cta.score < rules.CTAClarityMin {
		issues = append(issues, fmt.Sprintf("CTA clarity score %d is below minimum %d", cta.score, rules.CTAClarityMin))
	}
	if issues == nil {
		issues = []string{}
	}

	var signals []model.Signal
	signals = append(signals, length.signals...)
	signals = append(signals, voice.signals...)
	signals = append(signals, cta.signals...)

	return model.Scorecard{
		Channel:         draft.Channel,
		BrandVoiceScore: voice.score,
		CTAClarityScore: cta.score,
		LengthOK:        length.ok,
		CharCount:       length.chars,
		WordCount:       extract.WordCount(draft.Body),
		Issues:          issues,
		Passed:          length.ok && voice.score >= rules.BrandVoiceMin && cta.score >= rules.CTAClarityMin,
		Signals:         signals,
	}
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
