// internal/service/service.go
package service

import (
	"context"
	"fmt"

	"github.com/QuietTern/embedgen/internal/dispatch"
	"github.com/QuietTern/embedgen/internal/storage"
	"github.com/QuietTern/embedgen/internal/types"
	"github.com/QuietTern/embedgen/internal/vectorizer"
)

// Service contains the business logic for embedding operations
type Service struct {
	storage    storage.Storage
	dispatcher *dispatch.Dispatcher
}

// New creates a new Service
func New(store storage.Storage, disp *dispatch.Dispatcher) *Service {
	return &Service{
		storage:    store,
		dispatcher: disp,
	}
}

// Embed generates an embedding for text. Generation itself cannot fail;
// the returned error reports persistence problems only. Empty input is
// never persisted, so the record is nil for it regardless of persist.
func (s *Service) Embed(ctx context.Context, text string, persist bool) (dispatch.Result, *types.Record, error) {
	res := s.dispatcher.Generate(ctx, text)

	if !persist || res.Path == dispatch.PathEmpty {
		return res, nil, nil
	}

	rec := types.Record{
		TextHash: vectorizer.TextHash(res.Text),
		Text:     res.Text,
		Source:   res.Path.Source(),
		Model:    res.Model,
	}

	saved, err := s.storage.Save(ctx, rec, res.Vector)
	if err != nil {
		return res, nil, fmt.Errorf("failed to save record: %w", err)
	}

	return res, saved, nil
}

// Search finds stored records by semantic similarity to the query text.
// The query vector comes from the same pipeline as stored vectors, so
// like is compared with like.
func (s *Service) Search(ctx context.Context, query string, opts types.SearchOpts) ([]types.Record, error) {
	res := s.dispatcher.Generate(ctx, query)
	if res.Path == dispatch.PathEmpty {
		return nil, fmt.Errorf("query text is empty")
	}

	return s.storage.Nearest(ctx, res.Vector, opts)
}

// Get returns a stored record by ID
func (s *Service) Get(ctx context.Context, id int64) (*types.Record, error) {
	return s.storage.Get(ctx, id)
}

// List returns recent records
func (s *Service) List(ctx context.Context, opts types.ListOpts) ([]types.Record, error) {
	return s.storage.List(ctx, opts)
}

// Delete removes a stored record
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.storage.Delete(ctx, id)
}

// Mode reports which path the dispatcher resolves non-empty input to
func (s *Service) Mode() dispatch.Mode {
	return s.dispatcher.Mode()
}

// ModelName reports the configured provider model, if any
func (s *Service) ModelName() string {
	return s.dispatcher.ModelName()
}

// Close cleans up resources
func (s *Service) Close() error {
	return s.storage.Close()
}
