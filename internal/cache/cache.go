// Package cache stores computed embedding vectors under content-address
// keys so repeat texts skip the model round trip.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long cached vectors live when no TTL is configured.
const DefaultTTL = time.Hour

// Cache is a key → vector store. Implementations are safe for concurrent
// use. Get reports a miss with found=false; a non-nil error means the
// backend itself failed, which callers may treat as a miss.
type Cache interface {
	Get(ctx context.Context, key string) (vec []float32, found bool, err error)
	Set(ctx context.Context, key string, vec []float32) error
	Close() error
}
