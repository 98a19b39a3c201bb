package embedding

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/ppiankov/brandguard/internal/extract"
	"github.com/ppiankov/brandguard/internal/model"
)

// HashEmbedder is a deterministic feature-hashing embedder.
// Unigrams and bigrams are hashed into a fixed number of signed buckets and
// the result is L2-normalised, so texts sharing words land close together.
// It needs no network access and is the default for offline use and tests.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder returns a hashing embedder with the given dimension
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = 256
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Name returns the embedder identifier
func (e *HashEmbedder) Name() string {
	return fmt.Sprintf("hash-%d", e.dimensions)
}

// Dimensions returns the vector size
func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

// Embed hashes the words and word pairs of text into a unit vector
func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := checkInput(text); err != nil {
		return nil, err
	}

	words := extract.Words(text)
	if len(words) == 0 {
		return nil, &model.EmbeddingError{Input: text, Err: model.ErrEmptyInput}
	}

	vec := make([]float32, e.dimensions)
	for i, w := range words {
		e.add(vec, w, 1.0)
		if i > 0 {
			e.add(vec, words[i-1]+" "+w, 0.5)
		}
	}

	Normalize(vec)
	return vec, nil
}

func (e *HashEmbedder) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	idx := int(sum % uint64(e.dimensions))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}
