package storage

import (
	"context"
	"fmt"
)

// DefaultDim is the vector column length used when none is configured. It
// matches the default Ollama embedding model.
const DefaultDim = 384

// Config holds storage configuration
type Config struct {
	Driver string `yaml:"driver"` // "sqlite", "postgres", "mongodb"

	// Dim fixes the vector column length for drivers with typed vector
	// columns. Every saved vector must have this length.
	Dim int `yaml:"dim"`

	// SQLite
	SQLitePath string `yaml:"sqlite_path"`

	// Postgres
	PostgresDSN string `yaml:"postgres_dsn"`

	// MongoDB
	MongoDBURI      string `yaml:"mongodb_uri"`
	MongoDBDatabase string `yaml:"mongodb_database"`
}

// New creates a Storage implementation based on config
func New(ctx context.Context, cfg Config) (Storage, error) {
	if cfg.Dim < 1 {
		cfg.Dim = DefaultDim
	}

	switch cfg.Driver {
	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite path is required")
		}
		return NewSQLite(cfg.SQLitePath, cfg.Dim)

	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres DSN is required")
		}
		return NewPostgres(ctx, cfg.PostgresDSN, cfg.Dim)

	case "mongodb":
		if cfg.MongoDBURI == "" {
			return nil, fmt.Errorf("mongodb URI is required")
		}
		if cfg.MongoDBDatabase == "" {
			cfg.MongoDBDatabase = "embedgen"
		}
		return NewMongoDB(ctx, cfg.MongoDBURI, cfg.MongoDBDatabase)

	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
