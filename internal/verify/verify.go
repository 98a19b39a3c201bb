// Package verify grounds draft claims in retrieved knowledge chunks.
package verify

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ppiankov/brandguard/internal/embedding"
	"github.com/ppiankov/brandguard/internal/model"
	"go.uber.org/zap"
)

// ChunkSource resolves chunk ids to chunks with embeddings
type ChunkSource interface {
	Lookup(ids []string) []model.Chunk
}

// Thresholds are the similarity cut-offs for support and weak matches
type Thresholds struct {
	Support float64
	Weak    float64
}

// DefaultThresholds returns the built-in cut-offs
func DefaultThresholds() Thresholds {
	return Thresholds{Support: 0.7, Weak: 0.5}
}

// similarityPrecision is the resolution similarities are rounded to before classification
const similarityPrecision = 1e6

// Verifier checks claims against candidate chunks
type Verifier struct {
	embedder   embedding.Embedder
	chunks     ChunkSource
	thresholds Thresholds
	logger     *zap.Logger
}

// Option configures a Verifier
type Option func(*Verifier)

// WithLogger sets the verifier logger
func WithLogger(logger *zap.Logger) Option {
	return func(v *Verifier) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// NewVerifier creates a verifier. embedder must be the one the chunks were embedded with.
func NewVerifier(embedder embedding.Embedder, chunks ChunkSource, cfg model.VerifierConfig, opts ...Option) *Verifier {
	t := Thresholds{Support: cfg.SupportThreshold, Weak: cfg.WeakThreshold}
	if t.Support <= 0 {
		t.Support = DefaultThresholds().Support
	}
	if t.Weak <= 0 || t.Weak > t.Support {
		t.Weak = math.Min(DefaultThresholds().Weak, t.Support)
	}
	v := &Verifier{
		embedder:   embedder,
		chunks:     chunks,
		thresholds: t,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Thresholds returns the cut-offs in use
func (v *Verifier) Thresholds() Thresholds {
	return v.thresholds
}

// Verify classifies each claim by its best-matching candidate chunk.
// Candidate order and duplicates do not matter; unknown ids are ignored.
// With no usable candidates every claim is unsupported and nothing is embedded.
func (v *Verifier) Verify(ctx context.Context, claims []string, candidateIDs []string) ([]model.Claim, error) {
	candidates := v.candidates(candidateIDs)
	results := make([]model.Claim, 0, len(claims))

	for _, text := range claims {
		if len(candidates) == 0 {
			results = append(results, model.Claim{Text: text, Match: model.MatchNone})
			continue
		}

		vec, err := v.embedder.Embed(ctx, text)
		if err != nil {
			if errors.Is(err, model.ErrEmptyInput) {
				results = append(results, model.Claim{Text: text, Match: model.MatchNone})
				continue
			}
			return nil, fmt.Errorf("verify claim %q: %w", text, err)
		}

		best, score, ok := nearest(vec, candidates)
		if !ok {
			v.logger.Warn("no comparable candidate for claim", zap.String("claim", text))
			results = append(results, model.Claim{Text: text, Match: model.MatchNone})
			continue
		}
		results = append(results, v.classify(text, best, score))
	}

	v.logger.Debug("claims verified",
		zap.Int("claims", len(claims)),
		zap.Int("candidates", len(candidates)),
		zap.Int("unsupported", len(model.UnsupportedClaims(results))))

	return results, nil
}

// candidates returns the known chunks among ids, sorted by id
func (v *Verifier) candidates(ids []string) []model.Chunk {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	chunks := v.chunks.Lookup(unique)
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].ID < chunks[j].ID })
	return chunks
}

// nearest returns the most similar chunk; equal similarities go to the smallest id.
// Candidates whose similarity is NaN are skipped, and ok is false when none remain.
func nearest(vec []float32, sorted []model.Chunk) (chunk model.Chunk, score float64, ok bool) {
	best := -1
	bestScore := math.Inf(-1)
	for i, c := range sorted {
		s := Round(embedding.Cosine(vec, c.Embedding))
		if math.IsNaN(s) {
			continue
		}
		if best < 0 || s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return model.Chunk{}, 0, false
	}
	return sorted[best], bestScore, true
}

func (v *Verifier) classify(text string, chunk model.Chunk, score float64) model.Claim {
	claim := model.Claim{Text: text, Similarity: score, Match: Classify(score, v.thresholds)}
	switch claim.Match {
	case model.MatchSupported:
		claim.Supported = true
		claim.SourceChunkID = chunk.ID
		claim.QuotedSpan = QuotedSpan(text, chunk.Text)
	case model.MatchWeak:
		claim.SourceChunkID = chunk.ID
	}
	return claim
}

// Classify maps a similarity to a match status. The verifier passes the
// similarity after Round, so the partition applies to the recorded value:
// a raw cosine of 0.6999996 is recorded as 0.7 and counts as supported.
// Float32 embeddings carry no meaningful precision past that point.
func Classify(similarity float64, t Thresholds) model.MatchStatus {
	switch {
	case similarity >= t.Support:
		return model.MatchSupported
	case similarity >= t.Weak:
		return model.MatchWeak
	default:
		return model.MatchNone
	}
}

// Round rounds a similarity to six decimal places
func Round(s float64) float64 {
	return math.Round(s*similarityPrecision) / similarityPrecision
}
