package storage

import (
	"context"

	"github.com/QuietTern/embedgen/internal/types"
)

// Storage defines the interface for embedding record persistence. Drivers
// with typed vector columns (sqlite, postgres) fix the vector length at
// creation and reject vectors of any other length.
type Storage interface {
	// Save persists a record and its vector, returning the stored record
	// with ID and CreatedAt filled in.
	Save(ctx context.Context, rec types.Record, vector []float32) (*types.Record, error)
	// Get returns one record by ID, or types.ErrNotFound.
	Get(ctx context.Context, id int64) (*types.Record, error)
	// Nearest returns records ordered by cosine distance to vector.
	Nearest(ctx context.Context, vector []float32, opts types.SearchOpts) ([]types.Record, error)
	// List returns records newest first.
	List(ctx context.Context, opts types.ListOpts) ([]types.Record, error)
	// Delete removes a record and its vector, or types.ErrNotFound.
	Delete(ctx context.Context, id int64) error
	Close() error
}
