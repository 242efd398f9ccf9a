// internal/api/handlers_test.go
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/QuietTern/embedgen/internal/api"
	"github.com/QuietTern/embedgen/internal/dispatch"
	"github.com/QuietTern/embedgen/internal/service"
	"github.com/QuietTern/embedgen/internal/types"
)

// mockStorage implements storage.Storage for testing
type mockStorage struct {
	records []types.Record
	nextID  int64
}

func (m *mockStorage) Save(ctx context.Context, rec types.Record, vector []float32) (*types.Record, error) {
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
	return m.records, nil
}

func (m *mockStorage) List(ctx context.Context, opts types.ListOpts) ([]types.Record, error) {
	// Apply offset and limit
	start := opts.Offset
	if start > len(m.records) {
		return []types.Record{}, nil
	}
	end := start + opts.Limit
	if end > len(m.records) {
		end = len(m.records)
	}
	return m.records[start:end], nil
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

func setupTestServer() (*api.Handlers, *chi.Mux) {
	store := &mockStorage{}
	svc := service.New(store, dispatch.New(dispatch.ModeMock, nil, 8))
	handlers := api.NewHandlers(svc)

	r := chi.NewRouter()
	r.Use(api.RequestID)
	r.Get("/health", handlers.Health)
	r.Post("/v1/embeddings", handlers.Embed)
	r.Post("/v1/embeddings/search", handlers.Search)
	r.Get("/v1/records", handlers.List)
	r.Get("/v1/records/{id}", handlers.Get)
	r.Delete("/v1/records/{id}", handlers.Delete)

	return handlers, r
}

func postJSON(r *chi.Mux, path string, body interface{}) *httptest.ResponseRecorder {
	jsonBody, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	_, r := setupTestServer()

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var resp api.HealthResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Status != "ok" {
		t.Errorf("expected status 'ok', got %q", resp.Status)
	}
	if resp.Mode != "mock" {
		t.Errorf("expected mode 'mock', got %q", resp.Mode)
	}
}

func TestHealth_Unavailable(t *testing.T) {
	handlers, r := setupTestServer()
	handlers.SetHealthCheck(func() error {
		return fmt.Errorf("storage down")
	})

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rr.Code)
	}
}

func TestEmbed(t *testing.T) {
	_, r := setupTestServer()

	rr := postJSON(r, "/v1/embeddings", api.EmbedRequest{Text: "hello", Persist: true})

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp api.EmbedResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Vector) != 8 {
		t.Errorf("expected 8-dimension vector, got %d", len(resp.Vector))
	}
	if resp.Source != "mock" {
		t.Errorf("expected source 'mock', got %q", resp.Source)
	}
	if resp.Record == nil {
		t.Error("expected persisted record in response")
	}
}

func TestEmbed_EmptyText(t *testing.T) {
	_, r := setupTestServer()

	rr := postJSON(r, "/v1/embeddings", api.EmbedRequest{Text: "   ", Persist: true})

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	body := rr.Body.Bytes()
	var resp api.EmbedResponse
	json.NewDecoder(bytes.NewReader(body)).Decode(&resp)
	if len(resp.Vector) != 0 {
		t.Errorf("expected zero-length vector, got %d", len(resp.Vector))
	}
	if resp.Source != "empty" {
		t.Errorf("expected source 'empty', got %q", resp.Source)
	}
	if resp.Record != nil {
		t.Error("empty input must not be persisted")
	}

	// The raw body must carry "vector":[] rather than null
	if !bytes.Contains(body, []byte(`"vector":[]`)) {
		t.Errorf("expected vector to serialize as [], body: %s", body)
	}
}

func TestEmbed_InvalidBody(t *testing.T) {
	_, r := setupTestServer()

	req := httptest.NewRequest("POST", "/v1/embeddings", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestSearch(t *testing.T) {
	_, r := setupTestServer()

	// Store an embedding first
	rr := postJSON(r, "/v1/embeddings", api.EmbedRequest{Text: "hello", Persist: true})
	if rr.Code != http.StatusOK {
		t.Fatalf("embed failed: %d", rr.Code)
	}

	rr = postJSON(r, "/v1/embeddings/search", api.SearchRequest{Query: "greeting", Limit: 5})

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp api.SearchResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Records) != 1 {
		t.Errorf("expected 1 record, got %d", len(resp.Records))
	}
}

func TestSearch_MissingQuery(t *testing.T) {
	_, r := setupTestServer()

	rr := postJSON(r, "/v1/embeddings/search", api.SearchRequest{Limit: 5})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestList(t *testing.T) {
	_, r := setupTestServer()

	// Store some embeddings
	for i := 0; i < 3; i++ {
		rr := postJSON(r, "/v1/embeddings", api.EmbedRequest{
			Text:    fmt.Sprintf("text %d", i),
			Persist: true,
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("embed failed: %d", rr.Code)
		}
	}

	// Test basic list
	req := httptest.NewRequest("GET", "/v1/records", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var resp api.ListResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Records) != 3 {
		t.Errorf("expected 3 records, got %d", len(resp.Records))
	}
	if resp.Pagination == nil {
		t.Fatal("expected pagination info")
	}
	if resp.Pagination.HasMore {
		t.Error("expected HasMore to be false")
	}

	// Test with limit
	req = httptest.NewRequest("GET", "/v1/records?limit=2", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Records) != 2 {
		t.Errorf("expected 2 records with limit, got %d", len(resp.Records))
	}
	if !resp.Pagination.HasMore {
		t.Error("expected HasMore to be true")
	}

	// Test with offset
	req = httptest.NewRequest("GET", "/v1/records?limit=2&offset=2", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Records) != 1 {
		t.Errorf("expected 1 record with offset, got %d", len(resp.Records))
	}
	if resp.Pagination.HasMore {
		t.Error("expected HasMore to be false")
	}
}

func TestGet(t *testing.T) {
	_, r := setupTestServer()

	rr := postJSON(r, "/v1/embeddings", api.EmbedRequest{Text: "hello", Persist: true})
	var embResp api.EmbedResponse
	json.NewDecoder(rr.Body).Decode(&embResp)
	if embResp.Record == nil {
		t.Fatal("expected persisted record")
	}

	req := httptest.NewRequest("GET", fmt.Sprintf("/v1/records/%d", embResp.Record.ID), nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp api.GetResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Record == nil || resp.Record.Text != "hello" {
		t.Errorf("expected record with text 'hello', got %+v", resp.Record)
	}

	// Not found
	req = httptest.NewRequest("GET", "/v1/records/99999", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}

	// Invalid ID format
	req = httptest.NewRequest("GET", "/v1/records/invalid", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for invalid ID, got %d", rr.Code)
	}
}

func TestDelete(t *testing.T) {
	_, r := setupTestServer()

	rr := postJSON(r, "/v1/embeddings", api.EmbedRequest{Text: "hello", Persist: true})
	var embResp api.EmbedResponse
	json.NewDecoder(rr.Body).Decode(&embResp)
	if embResp.Record == nil {
		t.Fatal("expected persisted record")
	}
	recID := embResp.Record.ID

	req := httptest.NewRequest("DELETE", fmt.Sprintf("/v1/records/%d", recID), nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp api.DeleteResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Message == "" {
		t.Error("expected message in response")
	}

	// Second delete is a 404
	req = httptest.NewRequest("DELETE", fmt.Sprintf("/v1/records/%d", recID), nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for second delete, got %d", rr.Code)
	}
}
