package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores opaque byte values by key
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a cache key for text under a namespace (e.g. the embedder name).
// The namespace keeps vectors from different models apart.
func Key(namespace, text string) string {
	hash := sha256.Sum256([]byte(namespace + "\x00" + text))
	return "brandguard:v1:" + namespace + ":" + hex.EncodeToString(hash[:])
}
