// internal/mcptypes/types.go
// Package mcptypes contains shared MCP tool input/output types.
// These are used by both the direct MCP server (tools) and the shim proxy.
package mcptypes

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/QuietTern/embedgen/internal/types"
)

// EmbedInput defines the input schema for eg_embed
type EmbedInput struct {
	Text    string `json:"text" jsonschema_description:"Text to embed; whitespace-only text yields an empty vector"`
	Persist bool   `json:"persist,omitempty" jsonschema_description:"Store the result as a record (default: false)"`
}

// EmbedOutput defines the output schema for eg_embed
type EmbedOutput struct {
	Vector []float32     `json:"vector"`
	Source string        `json:"source"`
	Model  string        `json:"model,omitempty"`
	Dim    int           `json:"dim"`
	Record *types.Record `json:"record,omitempty"`
}

// SearchInput defines the input schema for eg_search
type SearchInput struct {
	Query  string `json:"query" jsonschema:"required" jsonschema_description:"Text to find similar records for"`
	Limit  int    `json:"limit,omitempty" jsonschema_description:"Maximum number of results (default: 5)"`
	Source string `json:"source,omitempty" jsonschema_description:"Filter by source (mock, model, or fallback)"`
	Model  string `json:"model,omitempty" jsonschema_description:"Filter by the model that produced the vector"`
}

// SearchOutput defines the output schema for eg_search
type SearchOutput struct {
	Records []types.Record `json:"records"`
}

// ListInput defines the input schema for eg_list
type ListInput struct {
	Limit  int    `json:"limit,omitempty" jsonschema_description:"Maximum number of results (default: 10)"`
	Offset int    `json:"offset,omitempty" jsonschema_description:"Number of records to skip"`
	Source string `json:"source,omitempty" jsonschema_description:"Filter by source (mock, model, or fallback)"`
	Model  string `json:"model,omitempty" jsonschema_description:"Filter by the model that produced the vector"`
}

// ListOutput defines the output schema for eg_list
type ListOutput struct {
	Records []types.Record `json:"records"`
}

// GetInput defines the input schema for eg_get
type GetInput struct {
	ID int64 `json:"id" jsonschema:"required" jsonschema_description:"ID of the record to fetch"`
}

// GetOutput defines the output schema for eg_get
type GetOutput struct {
	Record *types.Record `json:"record"`
}

// DeleteInput defines the input schema for eg_delete
type DeleteInput struct {
	ID int64 `json:"id" jsonschema:"required" jsonschema_description:"ID of the record to delete"`
}

// DeleteOutput defines the output schema for eg_delete
type DeleteOutput struct {
	Message string `json:"message"`
}

// TextResult creates a successful MCP result with text content
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// ErrorResult creates an error MCP result
func ErrorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// Tool definitions (shared between server and shim)
var (
	EmbedTool = &mcp.Tool{
		Name:        "eg_embed",
		Description: "Generate an embedding vector for text, optionally persisting it as a record",
	}

	SearchTool = &mcp.Tool{
		Name:        "eg_search",
		Description: "Search stored records by semantic similarity",
	}

	ListTool = &mcp.Tool{
		Name:        "eg_list",
		Description: "List recent embedding records",
	}

	GetTool = &mcp.Tool{
		Name:        "eg_get",
		Description: "Fetch an embedding record by ID",
	}

	DeleteTool = &mcp.Tool{
		Name:        "eg_delete",
		Description: "Delete an embedding record by ID",
	}
)
