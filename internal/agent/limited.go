package agent

import (
	"context"
	"fmt"

	"github.com/ppiankov/brandguard/internal/model"
	"github.com/ppiankov/brandguard/internal/worker"
)

// RateLimited throttles drafting calls per provider.
// One limiter can be shared by agents of several runs.
type RateLimited struct {
	inner   Agent
	limiter *worker.Limiter
}

// NewRateLimited wraps inner with limiter
func NewRateLimited(inner Agent, limiter *worker.Limiter) *RateLimited {
	return &RateLimited{inner: inner, limiter: limiter}
}

// Name returns the wrapped agent's name
func (r *RateLimited) Name() string {
	return r.inner.Name()
}

// Draft waits for a token on the provider's limiter and then delegates
func (r *RateLimited) Draft(ctx context.Context, in Input) (*Output, error) {
	if err := r.limiter.Wait(ctx, r.inner.Name()); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %w", model.ErrAgentUnreachable, err)
	}
	return r.inner.Draft(ctx, in)
}
