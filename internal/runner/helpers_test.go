package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/brandguard/internal/agent"
	"github.com/ppiankov/brandguard/internal/critic"
	"github.com/ppiankov/brandguard/internal/embedding"
	"github.com/ppiankov/brandguard/internal/knowledge"
	"github.com/ppiankov/brandguard/internal/model"
	"github.com/ppiankov/brandguard/internal/verify"
)

func scored(index, passed, total int) model.IterationRecord {
	cards := map[model.Channel]model.Scorecard{}
	channels := model.AllChannels()
	for i := 0; i < total; i++ {
		cards[channels[i]] = model.Scorecard{Channel: channels[i], Passed: i < passed}
	}
	return model.IterationRecord{
		Index:      index,
		Outcome:    model.OutcomeGateFailed,
		Drafts:     map[model.Channel]model.ChannelDraft{model.ChannelEmail: {Channel: model.ChannelEmail}},
		Scorecards: cards,
	}
}

func TestBestIteration(t *testing.T) {
	withDrafts := model.IterationRecord{Index: 3, Outcome: model.OutcomeSchemaInvalid, Drafts: map[model.Channel]model.ChannelDraft{model.ChannelWeb: {}}}
	failed := model.IterationRecord{Index: 4, Outcome: model.OutcomeAgentUnreachable}

	tests := []struct {
		name    string
		history []model.IterationRecord
		want    int
		ok      bool
	}{
		{"empty", nil, -1, false},
		{"most passed wins", []model.IterationRecord{scored(1, 1, 2), scored(2, 2, 3), scored(3, 0, 2)}, 1, true},
		{"ties go to latest", []model.IterationRecord{scored(1, 1, 2), scored(2, 1, 2)}, 1, true},
		{"unscored ignored when something scored", []model.IterationRecord{scored(1, 0, 2), withDrafts, failed}, 0, true},
		{"latest drafts without scores", []model.IterationRecord{withDrafts, failed}, 0, true},
		{"nothing exportable", []model.IterationRecord{failed}, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BestIteration(tt.history)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestCheckSchema(t *testing.T) {
	channels := []model.Channel{model.ChannelWeb, model.ChannelEmail, model.ChannelFacebook}

	full := func() *agent.Output {
		return output(channels, goodCTA)
	}

	assert.Empty(t, CheckSchema(channels, full()))
	assert.Equal(t, []string{"response contains no drafts"}, CheckSchema(channels, nil))
	assert.Equal(t, []string{"response contains no drafts"}, CheckSchema(channels, &agent.Output{}))

	out := full()
	out.Drafts[model.ChannelEmail].Headline = " "
	out.Drafts[model.ChannelWeb].Body = ""
	out.Drafts[model.ChannelFacebook].Claims = nil
	out.Drafts[model.ChannelFacebook].Headline = ""
	assert.Equal(t, []string{
		"email: subject line (headline) is required",
		"facebook: claims list is missing (use [] when there are none)",
		"web: subhead (body) is required",
	}, CheckSchema(channels, out))

	out = full()
	out.Drafts[model.ChannelEmail].Channel = model.ChannelWeb
	out.Drafts[model.ChannelWeb].CTA = ""
	delete(out.Drafts, model.ChannelFacebook)
	out.Drafts[model.ChannelLinkedIn] = &model.ChannelDraft{}
	assert.Equal(t, []string{
		`email: draft declares channel "web"`,
		"missing draft for channel facebook",
		"web: cta is required",
	}, CheckSchema(channels, out))
}

func TestExportFlags(t *testing.T) {
	unsupported := scored(2, 2, 2)
	unsupported.ClaimResults = []model.Claim{{Text: "x"}}
	schema := model.IterationRecord{Index: 3, Outcome: model.OutcomeSchemaInvalid}
	unreachable := model.IterationRecord{Index: 3, Outcome: model.OutcomeAgentUnreachable}

	tests := []struct {
		name      string
		history   []model.IterationRecord
		cancelled bool
		want      []model.Flag
	}{
		{"gate", []model.IterationRecord{scored(1, 0, 1)}, false, []model.Flag{model.FlagQualityGateFailed}},
		{"claims only", []model.IterationRecord{unsupported}, false, []model.Flag{model.FlagUnverifiedClaims}},
		{"final schema failure", []model.IterationRecord{scored(1, 0, 1), schema}, false, []model.Flag{model.FlagQualityGateFailed, model.FlagSchemaInvalid}},
		{"schema never scored", []model.IterationRecord{schema, unreachable}, false, []model.Flag{model.FlagAgentUnreachable, model.FlagSchemaInvalid}},
		{"cancelled", nil, true, []model.Flag{model.FlagAgentUnreachable}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exportFlags(tt.history, tt.cancelled).Sorted())
		})
	}
}

func TestBuildFeedback(t *testing.T) {
	rec := scored(2, 1, 2)
	rec.ClaimResults = []model.Claim{{Text: "ok", Supported: true}, {Text: "bad"}}

	fb := BuildFeedback(rec)
	assert.Equal(t, 2, fb.Iteration)
	assert.Len(t, fb.Scorecards, 1)
	require.Len(t, fb.UnsupportedClaims, 1)
	assert.Equal(t, "bad", fb.UnsupportedClaims[0].Text)

	fb = BuildFeedback(model.IterationRecord{Index: 1, Outcome: model.OutcomeAgentUnreachable, Problems: []string{"timeout"}})
	assert.Equal(t, "timeout", fb.AgentError)
	assert.Empty(t, fb.SchemaProblems)
}

func TestTrail_MonotonicTimestamps(t *testing.T) {
	times := []time.Time{
		time.Date(2026, 1, 1, 10, 0, 2, 0, time.UTC),
		time.Date(2026, 1, 1, 10, 0, 1, 0, time.UTC),
		time.Date(2026, 1, 1, 11, 0, 3, 0, time.FixedZone("CET", 3600)),
	}
	i := 0
	trail := NewTrail(func() time.Time { t := times[i]; i++; return t })

	trail.State(StateStart, 0)
	trail.Record(ToolRetrieve, 0)
	trail.Record(ToolDraft, 1)

	entries := trail.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "state:START", entries[0].Tool)
	assert.Equal(t, entries[0].Timestamp, entries[1].Timestamp, "clock going backwards is clamped")
	assert.Equal(t, time.UTC, entries[2].Timestamp.Location())

	assert.Len(t, trail.Since(1), 2)
	assert.Empty(t, trail.Since(5))

	entries[0].Tool = "mutated"
	assert.Equal(t, "state:START", trail.Entries()[0].Tool, "entries are copies")
}

func TestAnalyze(t *testing.T) {
	entries := []model.AuditEntry{
		{Tool: "state:START"},
		{Tool: ToolRetrieve},
		{Tool: ToolRetrieve},
		{Tool: ToolDraft, Iteration: 1},
		{Tool: ToolCritique, Iteration: 1},
		{Tool: ToolCritique, Iteration: 1},
		{Tool: ToolVerify, Iteration: 1},
		{Tool: "state:RETRY", Iteration: 1},
		{Tool: ToolDraft, Iteration: 2},
		{Tool: ToolCritique, Iteration: 2},
		{Tool: ToolVerify, Iteration: 2},
		{Tool: "state:EXPORT_SUCCESS", Iteration: 2},
	}

	a := Analyze(entries)

	assert.Equal(t, 2, a.Iterations)
	assert.True(t, a.RetrievedFirst)
	assert.True(t, a.Succeeded)
	assert.False(t, a.Flagged)
	assert.Len(t, a.ToolSequence, 9)
	assert.Equal(t, 3, a.ToolCounts[ToolCritique])
	assert.Equal(t, 2, a.ToolCounts[ToolVerify])
	assert.Equal(t, []string{
		"Context was retrieved before drafting",
		"Drafts were critiqued 3 times",
		"Claims were verified 2 times",
		"No images were generated",
	}, a.Observations)
}

func TestAnalyze_NoRetrieval(t *testing.T) {
	a := Analyze([]model.AuditEntry{{Tool: ToolDraft, Iteration: 1}, {Tool: "state:EXPORT_WITH_FLAGS", Iteration: 1}})

	assert.False(t, a.RetrievedFirst)
	assert.True(t, a.Flagged)
	assert.Equal(t, "Run started with draft_content instead of retrieve_context", a.Observations[0])
	assert.Contains(t, a.Observations, "Drafts were never critiqued")
	assert.Contains(t, a.Observations, "Claims were never verified")
}

func TestRun_WithRealComponents(t *testing.T) {
	ctx := context.Background()
	store := knowledge.NewStore(embedding.NewHashEmbedder(256))
	seeded, err := knowledge.SeedIfEmpty(ctx, store)
	require.NoError(t, err)
	require.True(t, seeded)

	fortune, ok := store.Get("seed_product_2")
	require.True(t, ok)

	draft := func(ctx context.Context, in agent.Input) (*agent.Output, error) {
		out := &agent.Output{Drafts: map[model.Channel]*model.ChannelDraft{}}
		for _, ch := range in.Channels {
			out.Drafts[ch] = &model.ChannelDraft{
				Channel:  ch,
				Headline: "Zero Trust in 45 minutes",
				Body:     "Join our security architects and see how you can cut identity incidents with a rollout plan your team can start next week.",
				CTA:      goodCTA,
				Claims:   []string{fortune.Text},
			}
		}
		return out, nil
	}

	a := &scriptedAgent{steps: []step{draft}}
	c := NewController(a, store, critic.NewCritic(model.CriticConfig{}),
		verify.NewVerifier(store.Embedder(), store, model.VerifierConfig{}),
		model.RunnerConfig{MaxIterations: 3, Workers: 2})

	res := c.Run(ctx, testBrief())

	require.True(t, res.Success, "flags=%v history=%+v", res.Flags, res.History)
	assert.Equal(t, 1, res.IterationsUsed)
	require.Len(t, res.Bundle.ClaimsTable, 1)
	assert.Equal(t, "seed_product_2", res.Bundle.ClaimsTable[0].SourceChunkID)
	assert.Len(t, a.inputs[0].RetrievedChunks, 4, "both collections are retrieved before the first draft")
}
