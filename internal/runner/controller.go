// Package runner enforces the quality gates around the drafting agent.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/brandguard/internal/agent"
	"github.com/ppiankov/brandguard/internal/extract"
	"github.com/ppiankov/brandguard/internal/model"
	"go.uber.org/zap"
)

// brandVoiceQuery retrieves style guidance before the first draft
const brandVoiceQuery = "brand voice tone style guidelines audience"

// Retriever searches the knowledge store
type Retriever interface {
	Search(ctx context.Context, query string, category model.Category, k int) ([]model.Chunk, error)
}

// DraftCritic scores drafts against channel rules
type DraftCritic interface {
	Critique(draft model.ChannelDraft) model.Scorecard
	Constraints(channel model.Channel) model.ChannelConstraints
}

// ClaimVerifier grounds claims in retrieved chunks
type ClaimVerifier interface {
	Verify(ctx context.Context, claims []string, candidateIDs []string) ([]model.Claim, error)
}

// AuditSink persists the trail of a finished run
type AuditSink interface {
	Append(runID string, entries []model.AuditEntry) error
}

// Controller runs the draft, check and retry loop for one brief at a time.
// It holds no per-run state, so one controller can serve concurrent runs.
type Controller struct {
	agent     agent.Agent
	retriever Retriever
	critic    DraftCritic
	verifier  ClaimVerifier
	extractor *extract.ClaimExtractor
	config    model.RunnerConfig
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
	sink      AuditSink
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock replaces time.Now for audit timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator replaces the run id generator
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// WithAuditSink persists each run's trail when the run ends
func WithAuditSink(sink AuditSink) Option {
	return func(c *Controller) {
		c.sink = sink
	}
}

// NewController creates a controller. Zero config values fall back to defaults.
func NewController(a agent.Agent, retriever Retriever, critic DraftCritic, verifier ClaimVerifier, cfg model.RunnerConfig, opts ...Option) *Controller {
	defaults := model.DefaultConfig().Runner
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaults.MaxIterations
	}
	if cfg.RetrievalK <= 0 {
		cfg.RetrievalK = defaults.RetrievalK
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}

	c := &Controller{
		agent:     a,
		retriever: retriever,
		critic:    critic,
		verifier:  verifier,
		extractor: extract.NewClaimExtractor(),
		config:    cfg,
		logger:    zap.NewNop(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// run is the private state of one invocation
type run struct {
	id       string
	brief    model.EventBrief
	channels []model.Channel
	trail    *Trail
	history  []model.IterationRecord
	chunks   []model.Chunk
	seen     map[string]bool
	logger   *zap.Logger
}

func (r *run) addChunks(chunks []model.Chunk) {
	for _, ch := range chunks {
		if !r.seen[ch.ID] {
			r.seen[ch.ID] = true
			r.chunks = append(r.chunks, ch)
		}
	}
}

func (r *run) chunkIDs() []string {
	ids := make([]string, len(r.chunks))
	for i, ch := range r.chunks {
		ids[i] = ch.ID
	}
	return ids
}

// Run generates copy for brief. It never fails: every outcome is a RunResult,
// successful or carrying flags for the gates that were not met.
func (c *Controller) Run(ctx context.Context, brief model.EventBrief) *model.RunResult {
	r := &run{
		id:       c.newID(),
		brief:    brief,
		channels: model.SortChannels(brief.Channels),
		trail:    NewTrail(c.now),
		seen:     make(map[string]bool),
	}
	r.logger = c.logger.With(zap.String("run_id", r.id))
	r.trail.State(StateStart, 0)

	if err := brief.Validate(); err != nil {
		r.logger.Warn("rejecting brief", zap.Error(err))
		flags := model.FlagSet{}
		flags.Add(model.FlagSchemaInvalid)
		r.trail.State(StateExportWithFlags, 0)
		return c.finish(r, false, flags, -1)
	}

	c.retrieve(ctx, r, 0, brandVoiceQuery, model.CategoryBrand)
	c.retrieve(ctx, r, 0, productQuery(brief), model.CategoryProduct)

	var feedback *agent.Feedback
	cancelled := false
	for iteration := 1; iteration <= c.config.MaxIterations; iteration++ {
		if ctx.Err() != nil {
			r.logger.Warn("run cancelled", zap.Int("iteration", iteration), zap.Error(ctx.Err()))
			cancelled = true
			break
		}

		mark := r.trail.Len()
		if feedback != nil {
			for i, claim := range feedback.UnsupportedClaims {
				if i >= agent.MaxFeedbackClaims {
					break
				}
				c.retrieve(ctx, r, iteration, claim.Text, model.CategoryProduct)
			}
		}

		rec := c.iterate(ctx, r, iteration, feedback)
		r.logger.Info("iteration finished",
			zap.Int("iteration", iteration),
			zap.String("outcome", string(rec.Outcome)),
			zap.Int("passed", model.CountPassed(rec.Scorecards)),
			zap.Int("claims", len(rec.ClaimResults)))

		if rec.Outcome == model.OutcomePassed {
			r.trail.State(StateExportSuccess, iteration)
			rec.ToolCalls = r.trail.Since(mark)
			r.history = append(r.history, rec)
			return c.finish(r, true, model.FlagSet{}, len(r.history)-1)
		}

		if iteration < c.config.MaxIterations {
			r.trail.State(StateRetry, iteration)
			feedback = BuildFeedback(rec)
		}
		rec.ToolCalls = r.trail.Since(mark)
		r.history = append(r.history, rec)
	}

	flags := exportFlags(r.history, cancelled)
	best, _ := BestIteration(r.history)
	r.trail.State(StateExportWithFlags, len(r.history))
	return c.finish(r, false, flags, best)
}

// iterate performs one DRAFTING, SCHEMA_CHECK and QUALITY_CHECK pass
func (c *Controller) iterate(ctx context.Context, r *run, iteration int, feedback *agent.Feedback) model.IterationRecord {
	rec := model.IterationRecord{Index: iteration}

	r.trail.State(StateDrafting, iteration)
	r.trail.Record(ToolDraft, iteration)
	out, err := c.draft(ctx, c.input(r, iteration, feedback))
	if err != nil {
		rec.Problems = []string{err.Error()}
		if errors.Is(err, model.ErrSchemaInvalid) {
			r.trail.State(StateSchemaCheck, iteration)
			rec.Outcome = model.OutcomeSchemaInvalid
		} else {
			rec.Outcome = model.OutcomeAgentUnreachable
		}
		r.logger.Warn("drafting failed", zap.Int("iteration", iteration), zap.Error(err))
		return rec
	}

	r.trail.State(StateSchemaCheck, iteration)
	rec.Drafts = requestedDrafts(r.channels, out)
	if problems := CheckSchema(r.channels, out); len(problems) > 0 {
		rec.Outcome = model.OutcomeSchemaInvalid
		rec.Problems = problems
		return rec
	}

	r.trail.State(StateQualityCheck, iteration)
	cards, claims, err := c.qualityCheck(ctx, r, iteration, rec.Drafts)
	rec.Scorecards = cards
	rec.ClaimResults = claims
	if err != nil {
		r.logger.Warn("claim verification failed", zap.Int("iteration", iteration), zap.Error(err))
		rec.Problems = append(rec.Problems, fmt.Sprintf("%s: %v", ToolVerify, err))
	}

	if err == nil && model.AllPassed(cards) && model.AllSupported(claims) {
		rec.Outcome = model.OutcomePassed
	} else {
		rec.Outcome = model.OutcomeGateFailed
	}
	return rec
}

func (c *Controller) input(r *run, iteration int, feedback *agent.Feedback) agent.Input {
	constraints := make(map[model.Channel]model.ChannelConstraints, len(r.channels))
	for _, ch := range r.channels {
		constraints[ch] = c.critic.Constraints(ch)
	}
	return agent.Input{
		Channels:        r.channels,
		EventBrief:      r.brief.Text(),
		RetrievedChunks: append([]model.Chunk(nil), r.chunks...),
		Constraints:     constraints,
		PriorFeedback:   feedback,
		Iteration:       iteration,
	}
}

// draft makes the one blocking call of an iteration.
// Panics and unclassified errors count as an unreachable agent, and the
// deadline holds even when the agent ignores its context.
func (c *Controller) draft(ctx context.Context, in agent.Input) (*agent.Output, error) {
	if c.config.AgentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.AgentTimeout)
		defer cancel()
	}

	type drafted struct {
		out *agent.Output
		err error
	}
	// buffered so an abandoned call can still deliver and exit
	done := make(chan drafted, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- drafted{err: fmt.Errorf("%w: agent panicked: %v", model.ErrAgentUnreachable, p)}
			}
		}()
		out, err := c.agent.Draft(ctx, in)
		done <- drafted{out: out, err: err}
	}()

	var res drafted
	select {
	case res = <-done:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", model.ErrAgentUnreachable, ctx.Err())
	}

	switch {
	case res.err == nil && res.out == nil:
		res.err = fmt.Errorf("%w: agent returned no output", model.ErrSchemaInvalid)
	case res.err != nil && !errors.Is(res.err, model.ErrSchemaInvalid) && !errors.Is(res.err, model.ErrAgentUnreachable):
		res.err = fmt.Errorf("%w: %w", model.ErrAgentUnreachable, res.err)
	}
	if res.err != nil {
		return nil, res.err
	}
	return res.out, nil
}

// retrieve runs one knowledge query; failures are logged and leave the context unchanged
func (c *Controller) retrieve(ctx context.Context, r *run, iteration int, query string, category model.Category) {
	r.trail.Record(ToolRetrieve, iteration)
	chunks, err := c.retriever.Search(ctx, query, category, c.config.RetrievalK)
	if err != nil {
		r.logger.Warn("retrieval failed", zap.String("category", string(category)), zap.Error(err))
		return
	}
	r.addChunks(chunks)
}

// finish assembles the result and export bundle and flushes the trail
func (c *Controller) finish(r *run, success bool, flags model.FlagSet, best int) *model.RunResult {
	bundle := &model.ExportBundle{
		EventTitle:  r.brief.Title,
		GeneratedAt: c.now().UTC(),
		Content:     map[model.Channel]model.ChannelDraft{},
		Scorecard:   map[model.Channel]model.Scorecard{},
		ClaimsTable: []model.Claim{},
		Flags:       flags.Sorted(),
		Iterations:  len(r.history),
	}
	if best >= 0 {
		rec := r.history[best]
		for ch, d := range rec.Drafts {
			bundle.Content[ch] = d.Clone()
		}
		for ch, card := range rec.Scorecards {
			bundle.Scorecard[ch] = card
		}
		bundle.ClaimsTable = append(bundle.ClaimsTable, rec.ClaimResults...)
	}

	audit := r.trail.Entries()
	if c.sink != nil {
		if err := c.sink.Append(r.id, audit); err != nil {
			r.logger.Warn("audit write failed", zap.Error(err))
		}
	}

	r.logger.Info("run finished",
		zap.Bool("success", success),
		zap.Int("iterations", len(r.history)),
		zap.Any("flags", bundle.Flags))

	return &model.RunResult{
		RunID:          r.id,
		Success:        success,
		IterationsUsed: len(r.history),
		Flags:          bundle.Flags,
		Bundle:         bundle,
		History:        r.history,
		Audit:          audit,
	}
}

// exportFlags names the gates a run that never passed did not meet
func exportFlags(history []model.IterationRecord, cancelled bool) model.FlagSet {
	flags := model.FlagSet{}

	if best, ok := BestIteration(history); ok && history[best].Scored() {
		rec := history[best]
		if !model.AllPassed(rec.Scorecards) {
			flags.Add(model.FlagQualityGateFailed)
		}
		if !model.AllSupported(rec.ClaimResults) {
			flags.Add(model.FlagUnverifiedClaims)
		}
	}

	scored, schemaFailed := false, false
	for _, rec := range history {
		scored = scored || rec.Scored()
		schemaFailed = schemaFailed || rec.Outcome == model.OutcomeSchemaInvalid
	}
	if !scored && schemaFailed {
		flags.Add(model.FlagSchemaInvalid)
	}

	if n := len(history); n > 0 {
		switch history[n-1].Outcome {
		case model.OutcomeSchemaInvalid:
			flags.Add(model.FlagSchemaInvalid)
		case model.OutcomeAgentUnreachable:
			flags.Add(model.FlagAgentUnreachable)
		}
	}
	if cancelled {
		flags.Add(model.FlagAgentUnreachable)
	}
	return flags
}

// requestedDrafts copies the drafts of requested channels that the agent returned
func requestedDrafts(channels []model.Channel, out *agent.Output) map[model.Channel]model.ChannelDraft {
	drafts := make(map[model.Channel]model.ChannelDraft, len(channels))
	for _, ch := range channels {
		if d, ok := out.Drafts[ch]; ok && d != nil {
			drafts[ch] = d.Clone()
		}
	}
	return drafts
}

func productQuery(brief model.EventBrief) string {
	parts := []string{strings.TrimSpace(brief.Title), strings.TrimSpace(brief.Description)}
	parts = append(parts, brief.KeyMessages...)
	return strings.Join(parts, " ")
}
