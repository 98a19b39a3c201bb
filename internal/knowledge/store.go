// Package knowledge holds the embedded brand and product corpus and answers similarity queries over it.
package knowledge

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/ppiankov/brandguard/internal/embedding"
	"github.com/ppiankov/brandguard/internal/model"
	"go.uber.org/zap"
)

// Match is a chunk with its similarity to a query
type Match struct {
	Chunk model.Chunk `json:"chunk"`
	Score float64     `json:"score"`
}

// Store is an in-memory vector index over chunks.
// Writes happen at ingest time; during runs it is shared by concurrent readers.
type Store struct {
	mu       sync.RWMutex
	chunks   []model.Chunk
	index    map[string]int
	embedder embedding.Embedder
	logger   *zap.Logger
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithLogger sets the store logger
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates an empty store that embeds queries with embedder
func NewStore(embedder embedding.Embedder, opts ...StoreOption) *Store {
	s := &Store{
		index:    make(map[string]int),
		embedder: embedder,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Embedder returns the embedder used for queries
func (s *Store) Embedder() embedding.Embedder {
	return s.embedder
}

// Add inserts chunks and returns how many were new.
// Chunks whose id is already present are skipped.
func (s *Store) Add(chunks ...model.Chunk) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, c := range chunks {
		if err := validate(c, s.dimensions()); err != nil {
			return added, err
		}
		if _, exists := s.index[c.ID]; exists {
			continue
		}
		s.index[c.ID] = len(s.chunks)
		s.chunks = append(s.chunks, c)
		added++
	}

	if added > 0 {
		s.logger.Debug("chunks added", zap.Int("added", added), zap.Int("total", len(s.chunks)))
	}
	return added, nil
}

// dimensions is the embedding width of stored chunks, 0 while empty.
// Called with the lock held.
func (s *Store) dimensions() int {
	if len(s.chunks) == 0 {
		return 0
	}
	return len(s.chunks[0].Embedding)
}

// validate checks c against a store of width dims; 0 accepts any width
func validate(c model.Chunk, dims int) error {
	if c.ID == "" {
		return fmt.Errorf("chunk has no id")
	}
	if _, err := model.ParseCategory(string(c.Category)); err != nil {
		return fmt.Errorf("chunk %s: %w", c.ID, err)
	}
	if len(c.Embedding) == 0 {
		return fmt.Errorf("chunk %s has no embedding", c.ID)
	}
	if dims > 0 && dims != len(c.Embedding) {
		return fmt.Errorf("chunk %s: embedding has %d dimensions, store has %d",
			c.ID, len(c.Embedding), dims)
	}
	for i, x := range c.Embedding {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return fmt.Errorf("chunk %s: embedding has non-finite value at %d", c.ID, i)
		}
	}
	return nil
}

// Search returns up to k chunks of category ranked by cosine similarity to query
func (s *Store) Search(ctx context.Context, query string, category model.Category, k int) ([]model.Chunk, error) {
	matches, err := s.SearchScored(ctx, query, category, k)
	if err != nil {
		return nil, err
	}
	out := make([]model.Chunk, len(matches))
	for i, m := range matches {
		out[i] = m.Chunk
	}
	return out, nil
}

// SearchScored is Search with similarity scores.
// Equal scores keep insertion order.
func (s *Store) SearchScored(ctx context.Context, query string, category model.Category, k int) ([]Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &model.EmbeddingError{Input: query, Err: model.ErrEmptyInput}
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	if k <= 0 {
		return []Match{}, nil
	}

	s.mu.RLock()
	matches := make([]Match, 0)
	for _, c := range s.chunks {
		if c.Category != category {
			continue
		}
		matches = append(matches, Match{Chunk: c, Score: embedding.Cosine(vec, c.Embedding)})
	}
	s.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > k {
		matches = matches[:k]
	}

	s.logger.Debug("search",
		zap.String("category", string(category)),
		zap.Int("k", k),
		zap.Int("results", len(matches)))

	return matches, nil
}

// Get returns the chunk with id
func (s *Store) Get(id string) (model.Chunk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return model.Chunk{}, false
	}
	return s.chunks[i], true
}

// Lookup returns the known chunks among ids, in insertion order
func (s *Store) Lookup(ids []string) []model.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()

	positions := make([]int, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if i, ok := s.index[id]; ok && !seen[i] {
			seen[i] = true
			positions = append(positions, i)
		}
	}
	sort.Ints(positions)

	out := make([]model.Chunk, len(positions))
	for j, i := range positions {
		out[j] = s.chunks[i]
	}
	return out
}

// Len returns the number of chunks
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Count returns the number of chunks in category
func (s *Store) Count(category model.Category) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, c := range s.chunks {
		if c.Category == category {
			n++
		}
	}
	return n
}

// All returns a copy of every chunk in insertion order
func (s *Store) All() []model.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// Put implements Sink. Chunks previously stored for source are replaced.
// Every new chunk is validated first, so a rejected batch leaves the store unchanged.
func (s *Store) Put(ctx context.Context, source string, chunks []model.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.chunks[:0:0]
	for _, c := range s.chunks {
		if c.Source != source {
			kept = append(kept, c)
		}
	}

	dims := 0
	switch {
	case len(kept) > 0:
		dims = len(kept[0].Embedding)
	case len(chunks) > 0:
		dims = len(chunks[0].Embedding)
	}
	for _, c := range chunks {
		if err := validate(c, dims); err != nil {
			return err
		}
	}

	removed := len(s.chunks) - len(kept)
	index := make(map[string]int, len(kept)+len(chunks))
	for i, c := range kept {
		index[c.ID] = i
	}
	for _, c := range chunks {
		if _, exists := index[c.ID]; exists {
			continue
		}
		index[c.ID] = len(kept)
		kept = append(kept, c)
	}
	s.chunks, s.index = kept, index

	s.logger.Debug("source replaced",
		zap.String("source", source),
		zap.Int("removed", removed),
		zap.Int("added", len(chunks)))
	return nil
}
