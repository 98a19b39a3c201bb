package runner

import (
	"context"
	"fmt"
	"sort"

	"github.com/ppiankov/brandguard/internal/extract"
	"github.com/ppiankov/brandguard/internal/model"
	"github.com/ppiankov/brandguard/internal/worker"
)

// critiqueJob scores one channel's draft
type critiqueJob struct {
	critic  DraftCritic
	channel model.Channel
	draft   model.ChannelDraft
}

type critiqueResult struct {
	channel model.Channel
	card    model.Scorecard
	err     error
}

func (r *critiqueResult) GetError() error { return r.err }

func (j *critiqueJob) Execute(ctx context.Context) (res worker.Result) {
	defer func() {
		if p := recover(); p != nil {
			res = &critiqueResult{channel: j.channel, err: fmt.Errorf("critic panicked: %v", p)}
		}
	}()
	return &critiqueResult{channel: j.channel, card: j.critic.Critique(j.draft)}
}

// verifyJob checks the iteration's claims against retrieved chunks
type verifyJob struct {
	verifier ClaimVerifier
	claims   []string
	chunkIDs []string
}

type verifyResult struct {
	claims []model.Claim
	err    error
}

func (r *verifyResult) GetError() error { return r.err }

func (j *verifyJob) Execute(ctx context.Context) (res worker.Result) {
	defer func() {
		if p := recover(); p != nil {
			res = &verifyResult{err: fmt.Errorf("verifier panicked: %v", p)}
		}
	}()
	claims, err := j.verifier.Verify(ctx, j.claims, j.chunkIDs)
	return &verifyResult{claims: claims, err: err}
}

// qualityCheck critiques every draft and verifies claims concurrently.
// Audit entries are recorded in channel order before dispatch.
func (c *Controller) qualityCheck(ctx context.Context, r *run, iteration int, drafts map[model.Channel]model.ChannelDraft) (map[model.Channel]model.Scorecard, []model.Claim, error) {
	channels := make([]model.Channel, 0, len(drafts))
	for ch := range drafts {
		channels = append(channels, ch)
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i] < channels[j] })

	jobs := make([]worker.Job, 0, len(channels)+1)
	for _, ch := range channels {
		r.trail.Record(ToolCritique, iteration)
		jobs = append(jobs, &critiqueJob{critic: c.critic, channel: ch, draft: drafts[ch]})
	}

	claims := c.collectClaims(channels, drafts)
	r.trail.Record(ToolVerify, iteration)
	jobs = append(jobs, &verifyJob{verifier: c.verifier, claims: claims, chunkIDs: r.chunkIDs()})

	cards := make(map[model.Channel]model.Scorecard, len(channels))
	var results []model.Claim
	var verifyErr error
	verified := false
	for _, res := range worker.Run(ctx, c.config.Workers, jobs) {
		switch v := res.(type) {
		case *critiqueResult:
			if v.err != nil {
				cards[v.channel] = model.Scorecard{Channel: v.channel, Issues: []string{v.err.Error()}}
				continue
			}
			cards[v.channel] = v.card
		case *verifyResult:
			results, verifyErr, verified = v.claims, v.err, true
		}
	}

	for _, ch := range channels {
		if _, ok := cards[ch]; !ok {
			cards[ch] = model.Scorecard{Channel: ch, Issues: []string{"critique did not run"}}
		}
	}
	if !verified && verifyErr == nil {
		verifyErr = fmt.Errorf("verification did not run: %v", ctx.Err())
	}
	if verifyErr != nil {
		// A failed verification call leaves every claim unsupported
		results = make([]model.Claim, len(claims))
		for i, text := range claims {
			results[i] = model.Claim{Text: text, Match: model.MatchNone}
		}
	}
	return cards, results, verifyErr
}

// collectClaims gathers declared claims, plus body claims when enabled, in channel order
func (c *Controller) collectClaims(channels []model.Channel, drafts map[model.Channel]model.ChannelDraft) []string {
	var claims []string
	for _, ch := range channels {
		d := drafts[ch]
		claims = append(claims, d.Claims...)
		if c.config.ExtractBodyClaims {
			claims = append(claims, c.extractor.FromDraft(d)...)
		}
	}
	return extract.NormalizeClaims(claims)
}
