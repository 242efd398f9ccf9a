// internal/shim/tools.go
// Package shim exposes the embedding tools over MCP by proxying every call
// to a remote API server instead of touching local storage.
package shim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/QuietTern/embedgen/internal/api"
	"github.com/QuietTern/embedgen/internal/mcptypes"
	"github.com/QuietTern/embedgen/internal/types"
)

// APIClient is the remote API surface the shim needs. *client.Client
// implements it.
type APIClient interface {
	Embed(ctx context.Context, text string, persist bool) (*api.EmbedResponse, error)
	Search(ctx context.Context, query string, limit int, source, model string) ([]types.Record, error)
	List(ctx context.Context, limit, offset int, source, model string) ([]types.Record, error)
	Get(ctx context.Context, id int64) (*types.Record, error)
	Delete(ctx context.Context, id int64) error
}

// Handler holds shim dependencies
type Handler struct {
	client APIClient
}

// NewHandler creates a new shim handler
func NewHandler(c APIClient) *Handler {
	return &Handler{client: c}
}

// Register adds all embedding tools to the MCP server, backed by the
// remote API
func Register(server *mcp.Server, h *Handler) {
	mcp.AddTool(server, mcptypes.EmbedTool, h.Embed)
	mcp.AddTool(server, mcptypes.SearchTool, h.Search)
	mcp.AddTool(server, mcptypes.ListTool, h.List)
	mcp.AddTool(server, mcptypes.GetTool, h.Get)
	mcp.AddTool(server, mcptypes.DeleteTool, h.Delete)
}

func (h *Handler) Embed(ctx context.Context, req *mcp.CallToolRequest, input mcptypes.EmbedInput) (*mcp.CallToolResult, mcptypes.EmbedOutput, error) {
	resp, err := h.client.Embed(ctx, input.Text, input.Persist)
	if err != nil {
		return mcptypes.ErrorResult(fmt.Sprintf("failed to embed: %v", err)), mcptypes.EmbedOutput{}, nil
	}

	out := mcptypes.EmbedOutput{
		Vector: resp.Vector,
		Source: resp.Source,
		Model:  resp.Model,
		Dim:    resp.Dim,
		Record: resp.Record,
	}

	vec, _ := json.Marshal(resp.Vector)
	return mcptypes.TextResult(string(vec)), out, nil
}

func (h *Handler) Search(ctx context.Context, req *mcp.CallToolRequest, input mcptypes.SearchInput) (*mcp.CallToolResult, mcptypes.SearchOutput, error) {
	if input.Query == "" {
		return mcptypes.ErrorResult("query is required"), mcptypes.SearchOutput{}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 5
	}

	records, err := h.client.Search(ctx, input.Query, limit, input.Source, input.Model)
	if err != nil {
		return mcptypes.ErrorResult(fmt.Sprintf("failed to search: %v", err)), mcptypes.SearchOutput{}, nil
	}

	if len(records) == 0 {
		return mcptypes.TextResult("No matching records found."), mcptypes.SearchOutput{Records: []types.Record{}}, nil
	}

	result, _ := json.MarshalIndent(records, "", "  ")
	return mcptypes.TextResult(string(result)), mcptypes.SearchOutput{Records: records}, nil
}

func (h *Handler) List(ctx context.Context, req *mcp.CallToolRequest, input mcptypes.ListInput) (*mcp.CallToolResult, mcptypes.ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	records, err := h.client.List(ctx, limit, input.Offset, input.Source, input.Model)
	if err != nil {
		return mcptypes.ErrorResult(fmt.Sprintf("failed to list: %v", err)), mcptypes.ListOutput{}, nil
	}

	if len(records) == 0 {
		return mcptypes.TextResult("No records found."), mcptypes.ListOutput{Records: []types.Record{}}, nil
	}

	result, _ := json.MarshalIndent(records, "", "  ")
	return mcptypes.TextResult(string(result)), mcptypes.ListOutput{Records: records}, nil
}

func (h *Handler) Get(ctx context.Context, req *mcp.CallToolRequest, input mcptypes.GetInput) (*mcp.CallToolResult, mcptypes.GetOutput, error) {
	if input.ID == 0 {
		return mcptypes.ErrorResult("id is required"), mcptypes.GetOutput{}, nil
	}

	record, err := h.client.Get(ctx, input.ID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return mcptypes.ErrorResult(fmt.Sprintf("record %d not found", input.ID)), mcptypes.GetOutput{}, nil
		}
		return mcptypes.ErrorResult(fmt.Sprintf("failed to fetch record: %v", err)), mcptypes.GetOutput{}, nil
	}

	result, _ := json.MarshalIndent(record, "", "  ")
	return mcptypes.TextResult(string(result)), mcptypes.GetOutput{Record: record}, nil
}

func (h *Handler) Delete(ctx context.Context, req *mcp.CallToolRequest, input mcptypes.DeleteInput) (*mcp.CallToolResult, mcptypes.DeleteOutput, error) {
	if input.ID == 0 {
		return mcptypes.ErrorResult("id is required"), mcptypes.DeleteOutput{}, nil
	}

	if err := h.client.Delete(ctx, input.ID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return mcptypes.ErrorResult(fmt.Sprintf("record %d not found", input.ID)), mcptypes.DeleteOutput{}, nil
		}
		return mcptypes.ErrorResult(fmt.Sprintf("failed to delete: %v", err)), mcptypes.DeleteOutput{}, nil
	}

	msg := fmt.Sprintf("Record %d has been deleted.", input.ID)
	return mcptypes.TextResult(msg), mcptypes.DeleteOutput{Message: msg}, nil
}
