// internal/api/types.go
package api

import "github.com/QuietTern/embedgen/internal/types"

// EmbedRequest is the body for POST /v1/embeddings
type EmbedRequest struct {
	Text    string `json:"text"`
	Persist bool   `json:"persist,omitempty"`
}

// EmbedResponse carries the generated vector. Source is one of "empty",
// "mock", "model", or "fallback"; empty results are never persisted, so
// Record stays nil for them.
type EmbedResponse struct {
	Vector []float32     `json:"vector"`
	Source string        `json:"source"`
	Model  string        `json:"model,omitempty"`
	Dim    int           `json:"dim"`
	Record *types.Record `json:"record,omitempty"`
}

// SearchRequest is the body for POST /v1/embeddings/search
type SearchRequest struct {
	Query  string `json:"query"`
	Limit  int    `json:"limit,omitempty"`
	Source string `json:"source,omitempty"`
	Model  string `json:"model,omitempty"`
}

// SearchResponse lists records by similarity to the query
type SearchResponse struct {
	Records []types.Record `json:"records"`
}

// ListResponse is the reply for GET /v1/records
type ListResponse struct {
	Records    []types.Record  `json:"records"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}

// PaginationInfo reports the applied window
type PaginationInfo struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// GetResponse is the reply for GET /v1/records/{id}
type GetResponse struct {
	Record *types.Record `json:"record"`
}

// DeleteResponse is the reply for DELETE /v1/records/{id}
type DeleteResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the shape of all error replies
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the reply for GET /health
type HealthResponse struct {
	Status string `json:"status"`
	Mode   string `json:"mode,omitempty"`
	Model  string `json:"model,omitempty"`
}
