package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process Cache backed by an expiring map.
type Memory struct {
	c *gocache.Cache
}

// NewMemory creates an in-memory cache whose entries expire after ttl.
// Expired entries are swept at twice the ttl.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{c: gocache.New(ttl, ttl*2)}
}

func (m *Memory) Get(_ context.Context, key string) ([]float32, bool, error) {
	val, found := m.c.Get(key)
	if !found {
		return nil, false, nil
	}
	vec, ok := val.([]float32)
	if !ok {
		return nil, false, nil
	}
	return vec, true, nil
}

func (m *Memory) Set(_ context.Context, key string, vec []float32) error {
	m.c.Set(key, vec, gocache.DefaultExpiration)
	return nil
}

func (m *Memory) Close() error {
	m.c.Flush()
	return nil
}

var _ Cache = (*Memory)(nil)
