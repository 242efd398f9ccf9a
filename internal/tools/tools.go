package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/QuietTern/embedgen/internal/mcptypes"
	"github.com/QuietTern/embedgen/internal/service"
	"github.com/QuietTern/embedgen/internal/types"
)

// Handler holds dependencies for tool handlers
type Handler struct {
	svc *service.Service
}

// NewHandler creates a Handler backed by the given service
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register adds all embedding tools to the MCP server
func Register(server *mcp.Server, svc *service.Service) {
	h := NewHandler(svc)

	mcp.AddTool(server, mcptypes.EmbedTool, h.Embed)
	mcp.AddTool(server, mcptypes.SearchTool, h.Search)
	mcp.AddTool(server, mcptypes.ListTool, h.List)
	mcp.AddTool(server, mcptypes.GetTool, h.Get)
	mcp.AddTool(server, mcptypes.DeleteTool, h.Delete)
}

func (h *Handler) Embed(ctx context.Context, req *mcp.CallToolRequest, input mcptypes.EmbedInput) (*mcp.CallToolResult, mcptypes.EmbedOutput, error) {
	res, record, err := h.svc.Embed(ctx, input.Text, input.Persist)
	if err != nil {
		return mcptypes.ErrorResult(fmt.Sprintf("failed to store record: %v", err)), mcptypes.EmbedOutput{}, nil
	}

	out := mcptypes.EmbedOutput{
		Vector: res.Vector,
		Source: string(res.Path),
		Model:  res.Model,
		Dim:    len(res.Vector),
		Record: record,
	}

	vec, err := json.Marshal(res.Vector)
	if err != nil {
		return mcptypes.ErrorResult(fmt.Sprintf("failed to format response: %v", err)), mcptypes.EmbedOutput{}, nil
	}
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

	records, err := h.svc.Search(ctx, input.Query, types.SearchOpts{
		Limit:  limit,
		Source: types.Source(input.Source),
		Model:  input.Model,
	})
	if err != nil {
		return mcptypes.ErrorResult(fmt.Sprintf("failed to search: %v", err)), mcptypes.SearchOutput{}, nil
	}

	if len(records) == 0 {
		return mcptypes.TextResult("No matching records found."), mcptypes.SearchOutput{Records: []types.Record{}}, nil
	}

	result, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return mcptypes.ErrorResult(fmt.Sprintf("failed to format response: %v", err)), mcptypes.SearchOutput{}, nil
	}
	return mcptypes.TextResult(string(result)), mcptypes.SearchOutput{Records: records}, nil
}

func (h *Handler) List(ctx context.Context, req *mcp.CallToolRequest, input mcptypes.ListInput) (*mcp.CallToolResult, mcptypes.ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	records, err := h.svc.List(ctx, types.ListOpts{
		Limit:  limit,
		Offset: input.Offset,
		Source: types.Source(input.Source),
		Model:  input.Model,
	})
	if err != nil {
		return mcptypes.ErrorResult(fmt.Sprintf("failed to list: %v", err)), mcptypes.ListOutput{}, nil
	}

	if len(records) == 0 {
		return mcptypes.TextResult("No records found."), mcptypes.ListOutput{Records: []types.Record{}}, nil
	}

	result, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return mcptypes.ErrorResult(fmt.Sprintf("failed to format response: %v", err)), mcptypes.ListOutput{}, nil
	}
	return mcptypes.TextResult(string(result)), mcptypes.ListOutput{Records: records}, nil
}

func (h *Handler) Get(ctx context.Context, req *mcp.CallToolRequest, input mcptypes.GetInput) (*mcp.CallToolResult, mcptypes.GetOutput, error) {
	if input.ID == 0 {
		return mcptypes.ErrorResult("id is required"), mcptypes.GetOutput{}, nil
	}

	record, err := h.svc.Get(ctx, input.ID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return mcptypes.ErrorResult(fmt.Sprintf("record %d not found", input.ID)), mcptypes.GetOutput{}, nil
		}
		return mcptypes.ErrorResult(fmt.Sprintf("failed to fetch record: %v", err)), mcptypes.GetOutput{}, nil
	}

	result, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return mcptypes.ErrorResult(fmt.Sprintf("failed to format response: %v", err)), mcptypes.GetOutput{}, nil
	}
	return mcptypes.TextResult(string(result)), mcptypes.GetOutput{Record: record}, nil
}

func (h *Handler) Delete(ctx context.Context, req *mcp.CallToolRequest, input mcptypes.DeleteInput) (*mcp.CallToolResult, mcptypes.DeleteOutput, error) {
	if input.ID == 0 {
		return mcptypes.ErrorResult("id is required"), mcptypes.DeleteOutput{}, nil
	}

	if err := h.svc.Delete(ctx, input.ID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return mcptypes.ErrorResult(fmt.Sprintf("record %d not found", input.ID)), mcptypes.DeleteOutput{}, nil
		}
		return mcptypes.ErrorResult(fmt.Sprintf("failed to delete: %v", err)), mcptypes.DeleteOutput{}, nil
	}

	msg := fmt.Sprintf("Record %d has been deleted.", input.ID)
	return mcptypes.TextResult(msg), mcptypes.DeleteOutput{Message: msg}, nil
}
