// internal/embedder/embedder.go
package embedder

import "context"

// Embedder is the boundary to an embedding model. Implementations encode
// one text per call. Any error crossing this interface means the model was
// unavailable for that call; callers decide how to degrade.
type Embedder interface {
	// Embed encodes one text into a numeric vector.
	Embed(ctx context.Context, text string) ([]float32, error)
	// ModelName returns the model identifier requests are made with.
	ModelName() string
	// Dimensions returns the vector length the model is expected to
	// produce, or 0 when unknown.
	Dimensions() int
}
