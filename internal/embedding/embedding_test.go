package embedding

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ppiankov/brandguard/internal/cache"
	"github.com/ppiankov/brandguard/internal/model"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(64)
	ctx := context.Background()

	a, err := e.Embed(ctx, "Register for the Zero Trust webinar")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	b, _ := e.Embed(ctx, "Register for the Zero Trust webinar")

	if len(a) != 64 {
		t.Fatalf("expected 64 dimensions, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d: %v vs %v", i, a[i], b[i])
		}
	}

	var norm float64
	for _, x := range a {
		norm += float64(x) * float64(x)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("expected unit vector, got squared norm %f", norm)
	}
}

func TestHashEmbedder_SimilarTextsCloser(t *testing.T) {
	e := NewHashEmbedder(256)
	ctx := context.Background()

	base, _ := e.Embed(ctx, "Fortune 500 customers reported 75% reduction in identity-related security incidents")
	near, _ := e.Embed(ctx, "customers reported 75% reduction in security incidents")
	far, _ := e.Embed(ctx, "Speak directly to the reader with a warm and confident tone")

	if Cosine(base, near) <= Cosine(base, far) {
		t.Errorf("expected overlapping text to be closer: near=%f far=%f", Cosine(base, near), Cosine(base, far))
	}
}

func TestHashEmbedder_EmptyInput(t *testing.T) {
	e := NewHashEmbedder(16)

	for _, in := range []string{"", "   ", "!!! ..."} {
		_, err := e.Embed(context.Background(), in)
		if err == nil {
			t.Errorf("expected error for %q", in)
			continue
		}
		var embErr *model.EmbeddingError
		if !errors.As(err, &embErr) {
			t.Errorf("expected EmbeddingError for %q, got %T", in, err)
		}
		if !errors.Is(err, model.ErrEmbedding) {
			t.Errorf("expected error to match ErrEmbedding for %q", in)
		}
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"mismatched", []float32{1, 0}, []float32{1}, 0},
		{"zero", []float32{0, 0}, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: expected %f, got %f", tt.name, tt.want, got)
		}
	}
}

type countingEmbedder struct {
	inner Embedder
	calls int
}

func (c *countingEmbedder) Name() string    { return c.inner.Name() }
func (c *countingEmbedder) Dimensions() int { return c.inner.Dimensions() }
func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return c.inner.Embed(ctx, text)
}

func TestCachedEmbedder_HitsCache(t *testing.T) {
	counter := &countingEmbedder{inner: NewHashEmbedder(32)}
	e := NewCachedEmbedder(counter, cache.NewMemoryCache(time.Minute, time.Minute), nil)
	ctx := context.Background()

	first, err := e.Embed(ctx, "cache me")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	second, err := e.Embed(ctx, "cache me")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if counter.calls != 1 {
		t.Errorf("expected 1 underlying call, got %d", counter.calls)
	}
	if Cosine(first, second) < 0.999999 {
		t.Error("cached vector differs from computed vector")
	}
	if _, err := e.Embed(ctx, " "); err == nil {
		t.Error("expected blank input to fail before reaching the cache")
	}
}

func TestCachedEmbedder_Stats(t *testing.T) {
	layered := NewCachedEmbedder(NewHashEmbedder(16), cache.NewLayeredCache(time.Minute, t.TempDir(), time.Hour), nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := layered.Embed(ctx, "stats"); err != nil {
			t.Fatalf("Embed failed: %v", err)
		}
	}
	hits, misses, ok := layered.Stats()
	if !ok || hits != 2 || misses != 1 {
		t.Errorf("expected 2 hits / 1 miss, got %d / %d (ok=%v)", hits, misses, ok)
	}

	plain := NewCachedEmbedder(NewHashEmbedder(16), cache.NewMemoryCache(time.Minute, time.Minute), nil)
	if _, _, ok := plain.Stats(); ok {
		t.Error("expected memory cache to report no stats")
	}
}

func TestVectorCodec(t *testing.T) {
	in := []float32{0.5, -1.25, 3}
	out, err := DecodeVector(EncodeVector(in))
	if err != nil {
		t.Fatalf("DecodeVector failed: %v", err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("index %d: expected %v, got %v", i, in[i], out[i])
		}
	}
	if _, err := DecodeVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated input")
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(model.EmbeddingConfig{Provider: "word2vec"}, model.CacheConfig{}, nil, nil)
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}
