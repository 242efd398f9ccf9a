// internal/dispatch/dispatcher.go
// Package dispatch routes one text to the mock, model, or fallback
// embedding path. The dispatcher never fails: provider errors are absorbed
// into the fallback path and surface only as a counter and a log line.
package dispatch

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/QuietTern/embedgen/internal/embedder"
	"github.com/QuietTern/embedgen/internal/metrics"
	"github.com/QuietTern/embedgen/internal/types"
	"github.com/QuietTern/embedgen/internal/vectorizer"
)

// FallbackPrefix is prepended to the text before hashing when the provider
// fails. It keeps fallback vectors distinguishable from mock vectors for
// the same text.
const FallbackPrefix = "fallback:"

// Path identifies which branch produced a Result.
type Path string

const (
	// PathEmpty is the reserved zero-length result for empty input.
	PathEmpty Path = "empty"
	// PathMock is a deterministic hash vector chosen by ModeMock.
	PathMock Path = "mock"
	// PathModel is a vector returned by the provider.
	PathModel Path = "model"
	// PathFallback is a hash vector substituted after a provider failure.
	PathFallback Path = "fallback"
)

// Source maps the path to the provenance stored on records. PathEmpty has
// no source; empty results are never stored.
func (p Path) Source() types.Source {
	switch p {
	case PathMock:
		return types.SourceMock
	case PathModel:
		return types.SourceModel
	case PathFallback:
		return types.SourceFallback
	}
	return ""
}

// Result is the outcome of a single embedding generation. Vector is never
// nil: empty input yields a zero-length vector that serializes to [], which
// is distinct from a full-length all-zero vector.
type Result struct {
	Vector []float32
	Path   Path
	Model  string
	Text   string // trimmed input the vector was derived from
}

// Dispatcher turns text into vectors. It is immutable after construction
// and safe for concurrent use.
type Dispatcher struct {
	mode     Mode
	provider embedder.Embedder
	dim      int
}

// New creates a Dispatcher with a fixed mode. provider may be nil, in which
// case every ModeReal call takes the fallback path. dim bounds only the
// hash paths; model vectors pass through at the provider's own length.
func New(mode Mode, provider embedder.Embedder, dim int) *Dispatcher {
	if dim < 1 {
		dim = vectorizer.DefaultDim
	}
	return &Dispatcher{mode: mode, provider: provider, dim: dim}
}

// Mode returns the mode the dispatcher was constructed with.
func (d *Dispatcher) Mode() Mode { return d.mode }

// Dim returns the hash-path vector length.
func (d *Dispatcher) Dim() int { return d.dim }

// ModelName returns the provider's model identifier, or the hash model
// name when no provider is configured.
func (d *Dispatcher) ModelName() string {
	if d.provider != nil {
		return d.provider.ModelName()
	}
	return embedder.HashModelName
}

// Generate produces a vector for text. The input is trimmed first; trimmed
// empty input yields the reserved zero-length result regardless of mode.
// Generate never returns an error: any provider failure is converted into
// a hash of the "fallback:"-prefixed text.
func (d *Dispatcher) Generate(ctx context.Context, text string) Result {
	start := time.Now()
	res := d.generate(ctx, text)
	metrics.EmbedDuration.WithLabelValues(string(res.Path)).Observe(time.Since(start).Seconds())
	metrics.EmbeddingsGenerated.WithLabelValues(string(res.Path), res.Model).Inc()
	return res
}

func (d *Dispatcher) generate(ctx context.Context, text string) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Vector: []float32{}, Path: PathEmpty}
	}

	if d.mode == ModeMock {
		return Result{
			Vector: vectorizer.Vectorize(text, d.dim),
			Path:   PathMock,
			Model:  embedder.HashModelName,
			Text:   text,
		}
	}

	failedModel := "none"
	if d.provider != nil {
		vec, err := d.provider.Embed(ctx, text)
		if err == nil {
			return Result{Vector: vec, Path: PathModel, Model: d.provider.ModelName(), Text: text}
		}
		failedModel = d.provider.ModelName()
		log.Printf("embedding provider %s unavailable, using hash fallback: %v", failedModel, err)
	} else {
		log.Printf("no embedding provider configured, using hash fallback")
	}

	metrics.ProviderFallbacks.WithLabelValues(failedModel).Inc()
	return Result{
		Vector: vectorizer.Vectorize(FallbackPrefix+text, d.dim),
		Path:   PathFallback,
		Model:  embedder.HashModelName,
		Text:   text,
	}
}
