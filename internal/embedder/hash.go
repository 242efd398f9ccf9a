// internal/embedder/hash.go
package embedder

import (
	"context"

	"github.com/QuietTern/embedgen/internal/vectorizer"
)

// HashModelName is the model identifier reported by the hash embedder.
const HashModelName = "hash-sha256"

// Hash is an Embedder that derives vectors locally from a SHA-256 digest.
// It needs no network and never fails, so it stands in for a real model in
// fully offline deployments.
type Hash struct {
	dim int
}

// NewHash creates a hash embedder producing dim-length vectors.
func NewHash(dim int) *Hash {
	if dim < 1 {
		dim = vectorizer.DefaultDim
	}
	return &Hash{dim: dim}
}

func (h *Hash) Embed(_ context.Context, text string) ([]float32, error) {
	return vectorizer.Vectorize(text, h.dim), nil
}

func (h *Hash) ModelName() string { return HashModelName }

func (h *Hash) Dimensions() int { return h.dim }

var _ Embedder = (*Hash)(nil)
