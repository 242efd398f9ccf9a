package shim_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/QuietTern/embedgen/internal/api"
	"github.com/QuietTern/embedgen/internal/mcptypes"
	"github.com/QuietTern/embedgen/internal/shim"
	"github.com/QuietTern/embedgen/internal/types"
)

// mockAPIClient implements shim.APIClient for testing
type mockAPIClient struct {
	records   []types.Record
	nextID    int64
	embedErr  error
	searchErr error
	listErr   error
	getErr    error
	deleteErr error
}

func (m *mockAPIClient) Embed(ctx context.Context, text string, persist bool) (*api.EmbedResponse, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return &api.EmbedResponse{Vector: []float32{}, Source: "empty"}, nil
	}

	vector := make([]float32, 8)
	resp := &api.EmbedResponse{
		Vector: vector,
		Source: "mock",
		Model:  "hash-sha256",
		Dim:    len(vector),
	}

	if persist {
		m.nextID++
		rec := types.Record{
			ID:        m.nextID,
			Text:      trimmed,
			Source:    types.SourceMock,
			Model:     "hash-sha256",
			Dim:       len(vector),
			CreatedAt: time.Now(),
		}
		m.records = append(m.records, rec)
		resp.Record = &rec
	}
	return resp, nil
}

func (m *mockAPIClient) Search(ctx context.Context, query string, limit int, source, model string) ([]types.Record, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	var results []types.Record
	for _, rec := range m.records {
		if source != "" && string(rec.Source) != source {
			continue
		}
		if model != "" && rec.Model != model {
			continue
		}
		results = append(results, rec)
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

func (m *mockAPIClient) List(ctx context.Context, limit, offset int, source, model string) ([]types.Record, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var results []types.Record
	skipped := 0
	for _, rec := range m.records {
		if source != "" && string(rec.Source) != source {
			continue
		}
		if model != "" && rec.Model != model {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		results = append(results, rec)
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

func (m *mockAPIClient) Get(ctx context.Context, id int64) (*types.Record, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for i := range m.records {
		if m.records[i].ID == id {
			rec := m.records[i]
			return &rec, nil
		}
	}
	return nil, types.ErrNotFound
}

func (m *mockAPIClient) Delete(ctx context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i := range m.records {
		if m.records[i].ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return types.ErrNotFound
}

func TestShimHandler_Embed_Success(t *testing.T) {
	client := &mockAPIClient{}
	handler := shim.NewHandler(client)

	ctx := context.Background()
	input := mcptypes.EmbedInput{Text: "hello world", Persist: true}

	result, output, err := handler.Embed(ctx, nil, input)
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("Embed returned error result: %v", result.Content)
	}
	if len(output.Vector) != 8 {
		t.Errorf("expected vector of length 8, got %d", len(output.Vector))
	}
	if output.Source != "mock" {
		t.Errorf("expected source 'mock', got %q", output.Source)
	}
	if output.Record == nil {
		t.Fatal("expected persisted record")
	}
}

func TestShimHandler_Embed_EmptyText(t *testing.T) {
	client := &mockAPIClient{}
	handler := shim.NewHandler(client)

	ctx := context.Background()
	input := mcptypes.EmbedInput{Text: "   "}

	result, output, err := handler.Embed(ctx, nil, input)
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("Embed returned error result: %v", result.Content)
	}
	if len(output.Vector) != 0 {
		t.Errorf("expected empty vector, got length %d", len(output.Vector))
	}
	if output.Source != "empty" {
		t.Errorf("expected source 'empty', got %q", output.Source)
	}
}

func TestShimHandler_Embed_ClientError(t *testing.T) {
	client := &mockAPIClient{embedErr: errors.New("connection failed")}
	handler := shim.NewHandler(client)

	ctx := context.Background()
	input := mcptypes.EmbedInput{Text: "hello"}

	result, _, _ := handler.Embed(ctx, nil, input)
	if !result.IsError {
		t.Error("expected error result when client fails")
	}
}

func TestShimHandler_Search_Success(t *testing.T) {
	client := &mockAPIClient{}
	client.Embed(context.Background(), "alpha", true)
	client.Embed(context.Background(), "beta", true)

	handler := shim.NewHandler(client)

	ctx := context.Background()
	input := mcptypes.SearchInput{
		Query: "alpha",
		Limit: 10,
	}

	result, output, err := handler.Search(ctx, nil, input)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("Search returned error result: %v", result.Content)
	}
	if len(output.Records) != 2 {
		t.Errorf("expected 2 records, got %d", len(output.Records))
	}
}

func TestShimHandler_Search_MissingQuery(t *testing.T) {
	client := &mockAPIClient{}
	handler := shim.NewHandler(client)

	ctx := context.Background()
	input := mcptypes.SearchInput{Limit: 5}

	result, _, _ := handler.Search(ctx, nil, input)
	if !result.IsError {
		t.Error("expected error for missing query")
	}
}

func TestShimHandler_Search_DefaultLimit(t *testing.T) {
	client := &mockAPIClient{}
	for i := 0; i < 10; i++ {
		client.Embed(context.Background(), "record", true)
	}

	handler := shim.NewHandler(client)

	ctx := context.Background()
	input := mcptypes.SearchInput{Query: "record"} // No limit specified

	_, output, _ := handler.Search(ctx, nil, input)
	if len(output.Records) != 5 { // Default limit is 5
		t.Errorf("expected 5 records (default limit), got %d", len(output.Records))
	}
}

func TestShimHandler_Search_NoResults(t *testing.T) {
	client := &mockAPIClient{}
	handler := shim.NewHandler(client)

	ctx := context.Background()
	input := mcptypes.SearchInput{Query: "nonexistent"}

	result, output, _ := handler.Search(ctx, nil, input)
	if result.IsError {
		t.Error("empty results should not be an error")
	}
	if len(output.Records) != 0 {
		t.Errorf("expected 0 records, got %d", len(output.Records))
	}
}

func TestShimHandler_List_Success(t *testing.T) {
	client := &mockAPIClient{}
	client.Embed(context.Background(), "one", true)
	client.Embed(context.Background(), "two", true)

	handler := shim.NewHandler(client)

	ctx := context.Background()
	input := mcptypes.ListInput{Limit: 10}

	result, output, err := handler.List(ctx, nil, input)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("List returned error result: %v", result.Content)
	}
	if len(output.Records) != 2 {
		t.Errorf("expected 2 records, got %d", len(output.Records))
	}
}

func TestShimHandler_List_DefaultLimit(t *testing.T) {
	client := &mockAPIClient{}
	for i := 0; i < 15; i++ {
		client.Embed(context.Background(), "record", true)
	}

	handler := shim.NewHandler(client)

	ctx := context.Background()
	input := mcptypes.ListInput{} // No limit specified

	_, output, _ := handler.List(ctx, nil, input)
	if len(output.Records) != 10 { // Default limit is 10
		t.Errorf("expected 10 records (default limit), got %d", len(output.Records))
	}
}

func TestShimHandler_Get_Success(t *testing.T) {
	client := &mockAPIClient{}
	resp, _ := client.Embed(context.Background(), "hello", true)

	handler := shim.NewHandler(client)

	ctx := context.Background()
	input := mcptypes.GetInput{ID: resp.Record.ID}

	result, output, err := handler.Get(ctx, nil, input)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("Get returned error result: %v", result.Content)
	}
	if output.Record == nil || output.Record.Text != "hello" {
		t.Errorf("expected record with text 'hello', got %+v", output.Record)
	}
}

func TestShimHandler_Get_NotFound(t *testing.T) {
	client := &mockAPIClient{}
	handler := shim.NewHandler(client)

	ctx := context.Background()
	input := mcptypes.GetInput{ID: 99999}

	result, _, _ := handler.Get(ctx, nil, input)
	if !result.IsError {
		t.Error("expected error result for missing record")
	}
}

func TestShimHandler_Get_MissingID(t *testing.T) {
	client := &mockAPIClient{}
	handler := shim.NewHandler(client)

	ctx := context.Background()
	input := mcptypes.GetInput{} // ID is 0

	result, _, _ := handler.Get(ctx, nil, input)
	if !result.IsError {
		t.Error("expected error for missing ID")
	}
}

func TestShimHandler_Delete_Success(t *testing.T) {
	client := &mockAPIClient{}
	resp, _ := client.Embed(context.Background(), "hello", true)

	handler := shim.NewHandler(client)

	ctx := context.Background()
	input := mcptypes.DeleteInput{ID: resp.Record.ID}

	result, output, err := handler.Delete(ctx, nil, input)
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("Delete returned error result: %v", result.Content)
	}
	if output.Message == "" {
		t.Error("expected non-empty message")
	}
}

func TestShimHandler_Delete_MissingID(t *testing.T) {
	client := &mockAPIClient{}
	handler := shim.NewHandler(client)

	ctx := context.Background()
	input := mcptypes.DeleteInput{} // ID is 0

	result, _, _ := handler.Delete(ctx, nil, input)
	if !result.IsError {
		t.Error("expected error for missing ID")
	}
}

func TestShimRegister(t *testing.T) {
	client := &mockAPIClient{}
	handler := shim.NewHandler(client)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "test-server",
		Version: "0.0.1",
	}, nil)

	// Should not panic
	shim.Register(server, handler)
}
