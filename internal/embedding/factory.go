package embedding

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ppiankov/brandguard/internal/cache"
	"github.com/ppiankov/brandguard/internal/model"
	"go.uber.org/zap"
)

// New creates an embedder from configuration, wrapped in a cache when enabled
func New(cfg model.EmbeddingConfig, cacheCfg model.CacheConfig, httpClient *http.Client, logger *zap.Logger) (Embedder, error) {
	var base Embedder

	switch strings.ToLower(cfg.Provider) {
	case "", "hash":
		base = NewHashEmbedder(cfg.Dimensions)

	case "openai":
		e, err := NewOpenAIEmbedder(cfg, httpClient)
		if err != nil {
			return nil, err
		}
		base = e

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: hash, openai)", cfg.Provider)
	}

	if !cacheCfg.Enabled {
		return base, nil
	}

	var c cache.Cache
	if cacheCfg.Dir != "" {
		c = cache.NewLayeredCache(cacheCfg.MemoryTTL, cacheCfg.Dir, cacheCfg.DiskTTL)
	} else {
		c = cache.NewMemoryCache(cacheCfg.MemoryTTL, cacheCfg.MemoryTTL)
	}
	return NewCachedEmbedder(base, c, logger), nil
}
