// internal/client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/QuietTern/embedgen/internal/api"
	"github.com/QuietTern/embedgen/internal/types"
)

// Client is an HTTP client for the embedding API
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a new API client
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	return c.http.Do(req)
}

func apiError(resp *http.Response) error {
	var errResp api.ErrorResponse
	json.NewDecoder(resp.Body).Decode(&errResp)
	if errResp.Error == "" {
		errResp.Error = resp.Status
	}
	return fmt.Errorf("API error: %s", errResp.Error)
}

// Embed generates an embedding for text, optionally persisting it
func (c *Client) Embed(ctx context.Context, text string, persist bool) (*api.EmbedResponse, error) {
	req := api.EmbedRequest{
		Text:    text,
		Persist: persist,
	}

	resp, err := c.doRequest(ctx, "POST", "/v1/embeddings", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var result api.EmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Search finds stored records similar to the query text
func (c *Client) Search(ctx context.Context, query string, limit int, source, model string) ([]types.Record, error) {
	req := api.SearchRequest{
		Query:  query,
		Limit:  limit,
		Source: source,
		Model:  model,
	}

	resp, err := c.doRequest(ctx, "POST", "/v1/embeddings/search", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var result api.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return result.Records, nil
}

// List returns recent records
func (c *Client) List(ctx context.Context, limit, offset int, source, model string) ([]types.Record, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	if source != "" {
		params.Set("source", source)
	}
	if model != "" {
		params.Set("model", model)
	}

	resp, err := c.doRequest(ctx, "GET", "/v1/records?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var result api.ListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return result.Records, nil
}

// Get fetches a record by ID
func (c *Client) Get(ctx context.Context, id int64) (*types.Record, error) {
	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/v1/records/%d", id), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, types.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var result api.GetResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return result.Record, nil
}

// Delete removes a record by ID
func (c *Client) Delete(ctx context.Context, id int64) error {
	resp, err := c.doRequest(ctx, "DELETE", fmt.Sprintf("/v1/records/%d", id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return types.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	return nil
}

// Health reports server status
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	resp, err := c.doRequest(ctx, "GET", "/health", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result api.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return &result, fmt.Errorf("server unhealthy: %s", result.Status)
	}

	return &result, nil
}
