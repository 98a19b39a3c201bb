package cache

import (
	"strings"
	"testing"
	"time"
)

func TestKey_NamespacedAndStable(t *testing.T) {
	a := Key("hash-256", "hello")
	b := Key("hash-256", "hello")
	c := Key("openai", "hello")

	if a != b {
		t.Errorf("expected identical keys, got %s and %s", a, b)
	}
	if a == c {
		t.Error("expected different namespaces to produce different keys")
	}
	if !strings.HasPrefix(a, "brandguard:v1:hash-256:") {
		t.Errorf("unexpected key prefix: %s", a)
	}
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	value := []byte("vector")
	if err := c.Set("k", value, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value[0] = 'X' // caller mutation must not leak into the cache

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if string(got) != "vector" {
		t.Errorf("expected %q, got %q", "vector", got)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 item, got %d", c.Len())
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestDiskCache_RoundTripAndExpiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := Key("hash-8", "some text")

	if err := c.Set(key, []byte{1, 2, 3}, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok := c.Get(key)
	if !ok || len(got) != 3 || got[2] != 3 {
		t.Fatalf("unexpected value %v (hit=%v)", got, ok)
	}

	// Move the clock past expiry
	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, ok := c.Get(key); ok {
		t.Error("expected expired entry to be dropped")
	}
}

func TestDiskCache_DeleteMissing(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	if err := c.Delete(Key("x", "missing")); err != nil {
		t.Errorf("expected no error deleting a missing key, got %v", err)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	key := Key("hash-8", "promote me")

	// Write through a separate disk cache so only disk holds the value
	if err := NewDiskCache(dir, time.Hour).Set(key, []byte("v"), 0); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	c := NewLayeredCache(time.Minute, dir, time.Hour)
	if _, ok := c.Get(key); !ok {
		t.Fatal("expected disk hit")
	}
	if _, ok := c.memory.Get(key); !ok {
		t.Error("expected value promoted to memory")
	}
	if _, ok := c.Get("absent"); ok {
		t.Error("expected miss")
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit / 1 miss, got %d / %d", hits, misses)
	}
}
