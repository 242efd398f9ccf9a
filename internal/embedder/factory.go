// internal/embedder/factory.go
package embedder

import (
	"fmt"
	"time"
)

// Config holds embedder configuration
type Config struct {
	Provider string `yaml:"provider"` // "ollama", "openai", "hash"

	Model      string        `yaml:"model"`
	Dimensions int           `yaml:"dimensions"`
	Timeout    time.Duration `yaml:"timeout"`

	// Ollama
	OllamaURL string `yaml:"ollama_url"`

	// OpenAI
	OpenAIKey string `yaml:"openai_key"`
}

// New creates an Embedder implementation based on config
func New(cfg Config) (Embedder, error) {
	switch cfg.Provider {
	case "ollama", "":
		var opts []OllamaOption
		if cfg.OllamaURL != "" {
			opts = append(opts, WithOllamaURL(cfg.OllamaURL))
		}
		if cfg.Model != "" {
			opts = append(opts, WithOllamaModel(cfg.Model))
			// A custom model has an unknown output length unless the
			// caller pinned one.
			opts = append(opts, WithOllamaDimensions(cfg.Dimensions))
		} else if cfg.Dimensions > 0 {
			opts = append(opts, WithOllamaDimensions(cfg.Dimensions))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithOllamaTimeout(cfg.Timeout))
		}
		return NewOllama(opts...), nil

	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("openai API key is required")
		}
		var opts []OpenAIOption
		if cfg.Model != "" {
			opts = append(opts, WithOpenAIModel(cfg.Model))
			opts = append(opts, WithOpenAIDimensions(cfg.Dimensions))
		} else if cfg.Dimensions > 0 {
			opts = append(opts, WithOpenAIDimensions(cfg.Dimensions))
		}
		return NewOpenAI(cfg.OpenAIKey, opts...), nil

	case "hash":
		return NewHash(cfg.Dimensions), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
