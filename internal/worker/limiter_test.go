package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 20; i++ {
		if !limiter.Allow("openai") {
			t.Fatalf("expected unlimited limiter to allow request %d", i)
		}
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "anthropic"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.WaitURL(ctx, "http://example.com/foo"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.WaitURL(ctx, "not a url"); err == nil {
		t.Error("expected error for URL without host")
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	start := time.Now()
	err := limiter.WaitWithDelay(ctx, "example.com", 50*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitWithDelay failed: %v", err)
	}

	if d := time.Since(start); d < 50*time.Millisecond {
		t.Errorf("expected delay >= 50ms, got %v", d)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "example.com"); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// burst 1 is spent
	if limiter.Allow("example.com") {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}

	if !limiter.Allow("other.com") {
		t.Errorf("expected allow for other key")
	}
}

func TestLimiter_SetRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	limiter.SetRate("ollama", 0.1, 1)

	if !limiter.Allow("ollama") {
		t.Errorf("first request should pass")
	}
	if limiter.Allow("ollama") {
		t.Errorf("second request should fail")
	}
	if !limiter.Allow("openai") {
		t.Errorf("other key should pass")
	}
}

func TestDomainKey(t *testing.T) {
	domain, err := DomainKey("http://Example.com/foo")
	if err != nil {
		t.Fatalf("DomainKey failed: %v", err)
	}
	if domain != "example.com" {
		t.Errorf("expected example.com, got %s", domain)
	}

	if _, err := DomainKey("::invalid"); err == nil {
		t.Errorf("expected error for invalid URL")
	}
}
