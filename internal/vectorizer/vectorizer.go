// internal/vectorizer/vectorizer.go
// Package vectorizer turns text into fixed-length float vectors using a
// cryptographic digest. Identical text always yields an identical vector,
// in the same process and across machines. The vectors carry no semantic
// meaning; they exist so the rest of the system can be exercised without
// a real embedding model.
package vectorizer

import (
	"crypto/sha256"
	"encoding/hex"
)

// DefaultDim is the vector length used when no dimension is configured.
const DefaultDim = 32

// Vectorize maps text to dim floats, each in [0, 1]. The SHA-256 digest of
// the UTF-8 bytes is tiled until it covers dim bytes, truncated to exactly
// dim, and each byte b becomes b/255. Empty text is reserved: it maps to all
// zeros without hashing. A dim below 1 falls back to DefaultDim. Vectorize
// has no failure path.
func Vectorize(text string, dim int) []float32 {
	if dim < 1 {
		dim = DefaultDim
	}
	vec := make([]float32, dim)
	if text == "" {
		return vec
	}
	digest := sha256.Sum256([]byte(text))
	for i := range vec {
		vec[i] = float32(digest[i%len(digest)]) / 255
	}
	return vec
}

// TextHash returns the hex-encoded SHA-256 digest of text. Stored records
// and cache keys use it as a stable content address.
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
