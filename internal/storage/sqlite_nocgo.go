//go:build !cgo

package storage

import (
	"context"
	"fmt"

	"github.com/QuietTern/embedgen/internal/types"
)

// SQLite is a stub for non-CGO builds
type SQLite struct{}

var errNoCGO = fmt.Errorf("SQLite storage requires CGO (build with CGO_ENABLED=1)")

// NewSQLite returns an error in non-CGO builds
func NewSQLite(path string, dim int) (*SQLite, error) {
	return nil, errNoCGO
}

func (s *SQLite) Save(ctx context.Context, rec types.Record, vector []float32) (*types.Record, error) {
	return nil, errNoCGO
}

func (s *SQLite) Get(ctx context.Context, id int64) (*types.Record, error) {
	return nil, errNoCGO
}

func (s *SQLite) Nearest(ctx context.Context, vector []float32, opts types.SearchOpts) ([]types.Record, error) {
	return nil, errNoCGO
}

func (s *SQLite) List(ctx context.Context, opts types.ListOpts) ([]types.Record, error) {
	return nil, errNoCGO
}

func (s *SQLite) Delete(ctx context.Context, id int64) error {
	return errNoCGO
}

func (s *SQLite) Close() error {
	return nil
}
