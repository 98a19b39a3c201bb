// Package embedding turns text into vectors for retrieval and claim verification.
package embedding

import (
	"context"
	"math"
	"strings"

	"github.com/ppiankov/brandguard/internal/model"
)

// Embedder produces vectors for text
type Embedder interface {
	// Name identifies the embedder and model; used to namespace caches
	Name() string

	// Dimensions returns the vector size, or 0 if not yet known
	Dimensions() int

	// Embed returns the embedding for text. Blank text fails with *model.EmbeddingError.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// checkInput rejects text that cannot be embedded
func checkInput(text string) error {
	if strings.TrimSpace(text) == "" {
		return &model.EmbeddingError{Input: text, Err: model.ErrEmptyInput}
	}
	return nil
}

// Cosine returns the cosine similarity of a and b.
// Mismatched lengths and zero vectors yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Normalize scales v to unit length in place
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}
