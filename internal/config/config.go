// Package config loads server configuration. Values come from defaults,
// then an optional YAML file, then environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/QuietTern/embedgen/internal/cache"
	"github.com/QuietTern/embedgen/internal/dispatch"
	"github.com/QuietTern/embedgen/internal/embedder"
	"github.com/QuietTern/embedgen/internal/storage"
	"github.com/QuietTern/embedgen/internal/vectorizer"
)

// Config represents the complete server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`

	// Mode selects the embedding path: only "mock" (case-insensitive)
	// selects the mock path, everything else, including unset, is real.
	Mode string `yaml:"mode"`

	// Dim is the vector length of the mock and fallback hash paths. Model
	// vectors keep the provider's own length.
	Dim int `yaml:"dim"`

	Embedder embedder.Config `yaml:"embedder"`
	Storage  storage.Config  `yaml:"storage"`
	Cache    cache.Config    `yaml:"cache"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`

	// RateLimit is requests per minute per client IP. Zero disables it.
	RateLimit int `yaml:"rate_limit"`

	CORSOrigins []string `yaml:"cors_origins"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
			RateLimit:    100,
		},
		Mode: "real",
		Dim:  vectorizer.DefaultDim,
		Embedder: embedder.Config{
			Provider: "ollama",
			Timeout:  30 * time.Second,
		},
		Storage: storage.Config{
			Driver:     "sqlite",
			SQLitePath: ".embedgen/records.db",
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment overrides apply. Environment variables in the
// format ${VAR_NAME} are expanded inside the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// applyEnv applies environment overrides. EMBEDDINGS_MODE wins over the
// file because it is the mode contract of the embedding CLI.
func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(dispatch.EnvMode); ok {
		c.Mode = v
	}
	if v := os.Getenv("EMBEDGEN_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if c.Embedder.OpenAIKey == "" {
		c.Embedder.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// Validate checks the configuration for errors. Factories re-check their
// own sections at construction; this catches mistakes at startup before
// any connection is attempted.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit cannot be negative")
	}

	switch c.Storage.Driver {
	case "sqlite", "postgres", "mongodb":
	default:
		return fmt.Errorf("invalid storage.driver: %q", c.Storage.Driver)
	}

	switch c.Cache.Driver {
	case "", "memory", "redis":
	default:
		return fmt.Errorf("invalid cache.driver: %q", c.Cache.Driver)
	}

	switch c.Embedder.Provider {
	case "", "ollama", "openai", "hash":
	default:
		return fmt.Errorf("invalid embedder.provider: %q", c.Embedder.Provider)
	}

	return nil
}
