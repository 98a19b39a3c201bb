package runner

import (
	"github.com/ppiankov/brandguard/internal/agent"
	"github.com/ppiankov/brandguard/internal/model"
)

// BuildFeedback turns a failed iteration into feedback for the next draft
func BuildFeedback(rec model.IterationRecord) *agent.Feedback {
	f := &agent.Feedback{Iteration: rec.Index}

	switch rec.Outcome {
	case model.OutcomeSchemaInvalid:
		f.SchemaProblems = append([]string(nil), rec.Problems...)
	case model.OutcomeAgentUnreachable:
		if len(rec.Problems) > 0 {
			f.AgentError = rec.Problems[0]
		}
	case model.OutcomeGateFailed:
		f.Scorecards = make(map[model.Channel]model.Scorecard, len(rec.Scorecards))
		for ch, card := range rec.Scorecards {
			if !card.Passed {
				f.Scorecards[ch] = card
			}
		}
		f.UnsupportedClaims = model.UnsupportedClaims(rec.ClaimResults)
	}
	return f
}
