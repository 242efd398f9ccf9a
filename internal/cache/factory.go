package cache

import (
	"fmt"
	"time"
)

// Config holds cache configuration
type Config struct {
	Driver string `yaml:"driver"` // "memory", "redis", or "" for no cache

	TTL time.Duration `yaml:"ttl"`

	Redis RedisConfig `yaml:"redis"`
}

// New creates a Cache implementation based on config. An empty driver
// returns a nil Cache, meaning caching is disabled.
func New(cfg Config) (Cache, error) {
	switch cfg.Driver {
	case "":
		return nil, nil

	case "memory":
		return NewMemory(cfg.TTL), nil

	case "redis":
		rc := cfg.Redis
		if rc.Addr == "" {
			rc = DefaultRedisConfig()
		}
		if cfg.TTL > 0 {
			rc.TTL = cfg.TTL
		}
		return NewRedis(rc)

	default:
		return nil, fmt.Errorf("unknown cache driver: %s", cfg.Driver)
	}
}
