package embedding

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ppiankov/brandguard/internal/cache"
	"go.uber.org/zap"
)

// CachedEmbedder memoises another embedder through a byte cache
type CachedEmbedder struct {
	inner  Embedder
	cache  cache.Cache
	logger *zap.Logger
}

// NewCachedEmbedder wraps inner with c
func NewCachedEmbedder(inner Embedder, c cache.Cache, logger *zap.Logger) *CachedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{inner: inner, cache: c, logger: logger}
}

// Name returns the wrapped embedder's name
func (e *CachedEmbedder) Name() string {
	return e.inner.Name()
}

// Dimensions returns the wrapped embedder's dimension
func (e *CachedEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}

// Embed returns a cached vector or computes and stores one
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := checkInput(text); err != nil {
		return nil, err
	}

	key := cache.Key(e.inner.Name(), text)
	if raw, ok := e.cache.Get(key); ok {
		vec, err := DecodeVector(raw)
		if err == nil {
			return vec, nil
		}
		e.logger.Debug("dropping corrupt cached vector", zap.String("key", key), zap.Error(err))
		_ = e.cache.Delete(key)
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := e.cache.Set(key, EncodeVector(vec), 0); err != nil {
		e.logger.Warn("embedding cache write failed", zap.Error(err))
	}
	return vec, nil
}

// Stats returns the cache's hit and miss counts. ok is false when the
// cache does not count them.
func (e *CachedEmbedder) Stats() (hits, misses int64, ok bool) {
	counter, ok := e.cache.(interface{ Stats() (int64, int64) })
	if !ok {
		return 0, 0, false
	}
	hits, misses = counter.Stats()
	return hits, misses, true
}

// EncodeVector serialises a vector as little-endian float32 bytes
func EncodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return buf
}

// DecodeVector is the inverse of EncodeVector
func DecodeVector(b []byte) ([]float32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid vector length %d", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
