package runner

import (
	"context"
	"strings"
	"sync"

	"github.com/ppiankov/brandguard/internal/agent"
	"github.com/ppiankov/brandguard/internal/model"
)

const (
	goodCTA = "Register for your free seat: {link}"
	weakCTA = "Learn more"
)

// step is one scripted agent response
type step func(ctx context.Context, in agent.Input) (*agent.Output, error)

// scriptedAgent replays steps and repeats the last one when they run out
type scriptedAgent struct {
	mu     sync.Mutex
	steps  []step
	inputs []agent.Input
}

func (a *scriptedAgent) Name() string { return "scripted" }

func (a *scriptedAgent) Draft(ctx context.Context, in agent.Input) (*agent.Output, error) {
	a.mu.Lock()
	a.inputs = append(a.inputs, in)
	i := len(a.inputs) - 1
	if i >= len(a.steps) {
		i = len(a.steps) - 1
	}
	s := a.steps[i]
	a.mu.Unlock()
	return s(ctx, in)
}

func (a *scriptedAgent) calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.inputs)
}

// respond returns a step producing a draft per requested channel
func respond(cta string, claims ...string) step {
	return func(ctx context.Context, in agent.Input) (*agent.Output, error) {
		return output(in.Channels, cta, claims...), nil
	}
}

func output(channels []model.Channel, cta string, claims ...string) *agent.Output {
	out := &agent.Output{Drafts: map[model.Channel]*model.ChannelDraft{}}
	for _, ch := range channels {
		out.Drafts[ch] = &model.ChannelDraft{
			Channel:  ch,
			Headline: "Zero Trust in 45 minutes",
			Body:     "See how you can cut identity incidents.",
			CTA:      cta,
			Claims:   append([]string{}, claims...),
		}
	}
	return out
}

// fakeCritic fails any draft whose CTA is weakCTA
type fakeCritic struct{}

func (fakeCritic) Critique(d model.ChannelDraft) model.Scorecard {
	card := model.Scorecard{Channel: d.Channel, BrandVoiceScore: 8, CTAClarityScore: 8, LengthOK: true, Issues: []string{}, Passed: true}
	if d.CTA == weakCTA {
		card.CTAClarityScore = 5
		card.Passed = false
		card.Issues = []string{"CTA clarity score 5 is below minimum 7"}
	}
	return card
}

func (fakeCritic) Constraints(ch model.Channel) model.ChannelConstraints {
	return model.DefaultChannelConstraints()[ch]
}

// fakeVerifier supports exactly the claims in supported
type fakeVerifier struct {
	mu         sync.Mutex
	supported  map[string]bool
	candidates [][]string
	err        error
}

func (v *fakeVerifier) Verify(ctx context.Context, claims []string, ids []string) ([]model.Claim, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.candidates = append(v.candidates, append([]string(nil), ids...))
	if v.err != nil {
		return nil, v.err
	}
	out := make([]model.Claim, len(claims))
	for i, c := range claims {
		out[i] = model.Claim{Text: c, Match: model.MatchNone}
		if v.supported[c] {
			out[i] = model.Claim{Text: c, Supported: true, Similarity: 0.9, SourceChunkID: "p1", Match: model.MatchSupported}
		}
	}
	return out, nil
}

// fakeRetriever returns one chunk per category and one per claim query
type fakeRetriever struct {
	mu      sync.Mutex
	queries []string
}

func (r *fakeRetriever) Search(ctx context.Context, query string, category model.Category, k int) ([]model.Chunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	switch {
	case category == model.CategoryBrand:
		return []model.Chunk{{ID: "b1", Text: "Speak to the reader.", Category: model.CategoryBrand}}, nil
	case strings.HasPrefix(query, "Zero Trust Webinar"):
		return []model.Chunk{{ID: "p1", Text: "Fortune 500 customers.", Category: model.CategoryProduct}}, nil
	default:
		return []model.Chunk{{ID: "p1", Category: model.CategoryProduct}, {ID: "p-claim", Category: model.CategoryProduct}}, nil
	}
}

// memorySink records flushed trails
type memorySink struct {
	runID   string
	entries []model.AuditEntry
}

func (s *memorySink) Append(runID string, entries []model.AuditEntry) error {
	s.runID = runID
	s.entries = entries
	return nil
}

func testBrief() model.EventBrief {
	return model.EventBrief{
		Title:       "Zero Trust Webinar",
		Description: "Learn how to roll out zero trust",
		Channels:    []model.Channel{model.ChannelLinkedIn, model.ChannelEmail},
	}
}

// panickyVerifier blows up on every call
type panickyVerifier struct{}

func (panickyVerifier) Verify(ctx context.Context, claims []string, ids []string) ([]model.Claim, error) {
	panic("index out of range [-1]")
}

// panickyCritic blows up on the named channel only
type panickyCritic struct {
	fakeCritic
	channel model.Channel
}

func (c panickyCritic) Critique(d model.ChannelDraft) model.Scorecard {
	if d.Channel == c.channel {
		panic("scorer exploded")
	}
	return c.fakeCritic.Critique(d)
}
