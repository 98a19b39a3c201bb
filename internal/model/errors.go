package model

import (
	"errors"
	"fmt"
)

var (
	// ErrEmbedding is the sentinel every EmbeddingError unwraps to
	ErrEmbedding = errors.New("embedding failed")

	// ErrSchemaInvalid marks agent output that does not match the draft schema
	ErrSchemaInvalid = errors.New("schema invalid")

	// ErrQualityGateFailed marks a draft whose scorecard did not pass
	ErrQualityGateFailed = errors.New("quality gate failed")

	// ErrUnverifiedClaim marks a claim below the support threshold
	ErrUnverifiedClaim = errors.New("unverified claim")

	// ErrAgentUnreachable marks a transport failure or timeout on the drafting call
	ErrAgentUnreachable = errors.New("agent unreachable")
)

// EmbeddingError reports input that could not be embedded
type EmbeddingError struct {
	Input string
	Err   error
}

func (e *EmbeddingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("embedding failed for %q", truncate(e.Input, 40))
	}
	return fmt.Sprintf("embedding failed for %q: %v", truncate(e.Input, 40), e.Err)
}

func (e *EmbeddingError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrEmbedding}
	}
	return []error{ErrEmbedding, e.Err}
}

// ErrEmptyInput is returned (wrapped in EmbeddingError) for blank text
var ErrEmptyInput = errors.New("empty input")

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
