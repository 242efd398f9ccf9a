package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/QuietTern/embedgen/internal/dispatch"
	"github.com/QuietTern/embedgen/internal/service"
	"github.com/QuietTern/embedgen/internal/types"
	"github.com/QuietTern/embedgen/internal/vectorizer"
)

// mockStorage implements storage.Storage for testing
type mockStorage struct {
	records   []types.Record
	nextID    int64
	saveErr   error
	gotVector []float32
}

func (m *mockStorage) Save(ctx context.Context, rec types.Record, vector []float32) (*types.Record, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	m.nextID++
	rec.ID = m.nextID
	rec.Dim = len(vector)
	m.records = append(m.records, rec)
	return &rec, nil
}

func (m *mockStorage) Get(ctx context.Context, id int64) (*types.Record, error) {
	for i := range m.records {
		if m.records[i].ID == id {
			r := m.records[i]
			return &r, nil
		}
	}
	return nil, types.ErrNotFound
}

func (m *mockStorage) Nearest(ctx context.Context, vector []float32, opts types.SearchOpts) ([]types.Record, error) {
	m.gotVector = vector
	return m.records, nil
}

func (m *mockStorage) List(ctx context.Context, opts types.ListOpts) ([]types.Record, error) {
	return m.records, nil
}

func (m *mockStorage) Delete(ctx context.Context, id int64) error {
	for i := range m.records {
		if m.records[i].ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return types.ErrNotFound
}

func (m *mockStorage) Close() error {
	return nil
}

func TestService_Embed(t *testing.T) {
	store := &mockStorage{}
	svc := service.New(store, dispatch.New(dispatch.ModeMock, nil, 8))

	ctx := context.Background()
	res, rec, err := svc.Embed(ctx, "hello", true)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if len(res.Vector) != 8 {
		t.Errorf("expected 8-dimension vector, got %d", len(res.Vector))
	}
	if rec == nil {
		t.Fatal("expected a persisted record")
	}
	if rec.Source != types.SourceMock {
		t.Errorf("expected source 'mock', got %q", rec.Source)
	}
	if rec.TextHash != vectorizer.TextHash("hello") {
		t.Errorf("expected text hash of input, got %q", rec.TextHash)
	}
	if len(store.records) != 1 {
		t.Errorf("expected 1 stored record, got %d", len(store.records))
	}
}

func TestService_Embed_NoPersist(t *testing.T) {
	store := &mockStorage{}
	svc := service.New(store, dispatch.New(dispatch.ModeMock, nil, 8))

	ctx := context.Background()
	res, rec, err := svc.Embed(ctx, "hello", false)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if rec != nil {
		t.Error("expected no record without persist")
	}
	if len(res.Vector) != 8 {
		t.Errorf("expected 8-dimension vector, got %d", len(res.Vector))
	}
	if len(store.records) != 0 {
		t.Errorf("expected 0 stored records, got %d", len(store.records))
	}
}

func TestService_Embed_EmptyText(t *testing.T) {
	store := &mockStorage{}
	svc := service.New(store, dispatch.New(dispatch.ModeMock, nil, 8))

	ctx := context.Background()
	res, rec, err := svc.Embed(ctx, "   ", true)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if res.Path != dispatch.PathEmpty {
		t.Errorf("expected empty path, got %q", res.Path)
	}
	if len(res.Vector) != 0 {
		t.Errorf("expected zero-length vector, got %d", len(res.Vector))
	}
	if rec != nil {
		t.Error("empty input must not be persisted")
	}
	if len(store.records) != 0 {
		t.Errorf("expected 0 stored records, got %d", len(store.records))
	}
}

func TestService_Embed_SaveError(t *testing.T) {
	store := &mockStorage{saveErr: errors.New("disk full")}
	svc := service.New(store, dispatch.New(dispatch.ModeMock, nil, 8))

	ctx := context.Background()
	res, rec, err := svc.Embed(ctx, "hello", true)
	if err == nil {
		t.Fatal("expected persistence error")
	}

	// The vector itself is still usable
	if len(res.Vector) != 8 {
		t.Errorf("expected 8-dimension vector despite save error, got %d", len(res.Vector))
	}
	if rec != nil {
		t.Error("expected nil record on save error")
	}
}

func TestService_Search(t *testing.T) {
	store := &mockStorage{}
	svc := service.New(store, dispatch.New(dispatch.ModeMock, nil, 8))

	ctx := context.Background()

	// Store something first
	_, _, err := svc.Embed(ctx, "hello", true)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	results, err := svc.Search(ctx, "hello again", types.SearchOpts{Limit: 5})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
	// Query vector comes from the same pipeline as stored vectors
	if len(store.gotVector) != 8 {
		t.Errorf("expected 8-dimension query vector, got %d", len(store.gotVector))
	}
}

func TestService_Search_EmptyQuery(t *testing.T) {
	store := &mockStorage{}
	svc := service.New(store, dispatch.New(dispatch.ModeMock, nil, 8))

	ctx := context.Background()
	_, err := svc.Search(ctx, "", types.SearchOpts{Limit: 5})
	if err == nil {
		t.Error("expected error for empty query, got nil")
	}
}

func TestService_Delete(t *testing.T) {
	store := &mockStorage{}
	svc := service.New(store, dispatch.New(dispatch.ModeMock, nil, 8))

	ctx := context.Background()
	_, rec, err := svc.Embed(ctx, "hello", true)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if err := svc.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err = svc.Get(ctx, rec.ID)
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
