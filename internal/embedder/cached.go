// internal/embedder/cached.go
package embedder

import (
	"context"
	"log"

	"github.com/QuietTern/embedgen/internal/cache"
	"github.com/QuietTern/embedgen/internal/metrics"
	"github.com/QuietTern/embedgen/internal/vectorizer"
)

// Cached decorates an Embedder with a vector cache keyed by model name and
// text digest. Cache failures are treated as misses; the inner embedder's
// result is authoritative.
type Cached struct {
	inner Embedder
	cache cache.Cache
}

// NewCached wraps inner with c. A nil cache returns inner unchanged.
func NewCached(inner Embedder, c cache.Cache) Embedder {
	if c == nil {
		return inner
	}
	return &Cached{inner: inner, cache: c}
}

// Different models produce different vectors for the same text, so the
// model name is part of the key.
func (e *Cached) cacheKey(text string) string {
	return vectorizer.TextHash(e.inner.ModelName() + "\x00" + text)
}

func (e *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	key := e.cacheKey(text)

	if vec, found, err := e.cache.Get(ctx, key); err == nil && found {
		metrics.CacheHits.Inc()
		return vec, nil
	}
	metrics.CacheMisses.Inc()

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := e.cache.Set(ctx, key, vec); err != nil {
		log.Printf("embedding cache write failed: %v", err)
	}
	return vec, nil
}

func (e *Cached) ModelName() string { return e.inner.ModelName() }

func (e *Cached) Dimensions() int { return e.inner.Dimensions() }

var _ Embedder = (*Cached)(nil)
