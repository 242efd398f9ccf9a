// internal/embedder/openai.go
package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	// DefaultOpenAIURL is the OpenAI API base URL.
	DefaultOpenAIURL = "https://api.openai.com"

	// DefaultOpenAIModel is the default OpenAI embedding model.
	DefaultOpenAIModel = "text-embedding-3-small"

	// DefaultOpenAIDimensions is the vector length text-embedding-3-small produces.
	DefaultOpenAIDimensions = 1536

	apiPathOpenAIEmbeddings = "/v1/embeddings"
)

// OpenAI implements Embedder using the OpenAI embeddings API.
type OpenAI struct {
	apiKey     string
	baseURL    string
	model      string
	dimensions int
	http       *http.Client
}

// OpenAIOption configures an OpenAI embedder.
type OpenAIOption func(*OpenAI)

// WithOpenAIURL sets the API base URL.
func WithOpenAIURL(url string) OpenAIOption {
	return func(o *OpenAI) { o.baseURL = url }
}

// WithOpenAIModel sets the embedding model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(o *OpenAI) { o.model = model }
}

// WithOpenAIDimensions sets the expected vector length. Zero disables the
// response length check.
func WithOpenAIDimensions(dims int) OpenAIOption {
	return func(o *OpenAI) { o.dimensions = dims }
}

// NewOpenAI creates a new OpenAI embedder. The key is required at call
// time, not construction time; an empty key fails on the first Embed.
func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAI {
	o := &OpenAI{
		apiKey:     apiKey,
		baseURL:    DefaultOpenAIURL,
		model:      DefaultOpenAIModel,
		dimensions: DefaultOpenAIDimensions,
		http:       &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type openAIRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type openAIResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed encodes one text via the OpenAI embeddings API.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	if o.apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY not set")
	}

	jsonBody, err := json.Marshal(openAIRequest{Input: text, Model: o.model})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+apiPathOpenAIEmbeddings, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call OpenAI: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(body))
	}

	var out openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(out.Data) == 0 {
		return nil, errors.New("openai returned no embeddings")
	}

	vec := out.Data[0].Embedding
	if o.dimensions > 0 && len(vec) != o.dimensions {
		return nil, fmt.Errorf("unexpected embedding dimensions: got %d, want %d", len(vec), o.dimensions)
	}

	return vec, nil
}

// ModelName returns the model requests are made with.
func (o *OpenAI) ModelName() string { return o.model }

// Dimensions returns the expected vector length.
func (o *OpenAI) Dimensions() int { return o.dimensions }

var _ Embedder = (*OpenAI)(nil)
