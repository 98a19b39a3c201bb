// Package agent drives the language model that writes channel drafts.
package agent

import (
	"context"

	"github.com/ppiankov/brandguard/internal/model"
)

// Agent writes one draft per requested channel
type Agent interface {
	// Name returns the provider name
	Name() string

	// Draft produces drafts for in.Channels. Transport failures and timeouts
	// wrap model.ErrAgentUnreachable; undecodable output wraps model.ErrSchemaInvalid.
	Draft(ctx context.Context, in Input) (*Output, error)
}

// Input is everything the agent sees for one iteration
type Input struct {
	Channels        []model.Channel
	EventBrief      string
	RetrievedChunks []model.Chunk
	Constraints     map[model.Channel]model.ChannelConstraints
	PriorFeedback   *Feedback
	Iteration       int
}

// Feedback summarises why the previous iteration did not pass
type Feedback struct {
	Iteration         int
	Scorecards        map[model.Channel]model.Scorecard
	UnsupportedClaims []model.Claim
	SchemaProblems    []string
	AgentError        string
}

// Empty reports whether the feedback carries nothing to act on
func (f *Feedback) Empty() bool {
	if f == nil {
		return true
	}
	return len(f.Scorecards) == 0 && len(f.UnsupportedClaims) == 0 &&
		len(f.SchemaProblems) == 0 && f.AgentError == ""
}

// Output holds the decoded drafts and the raw model response
type Output struct {
	Drafts map[model.Channel]*model.ChannelDraft
	Raw    string
}
