// Package metrics exposes Prometheus collectors for the embedding pipeline.
// The fallback counter is the production signal that the model provider is
// degraded while callers keep receiving vectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "embedgen"

var (
	// EmbeddingsGenerated counts produced vectors by the path that
	// produced them: mock, model, fallback, or empty.
	EmbeddingsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embeddings_generated_total",
			Help:      "Total number of embedding results produced, by path",
		},
		[]string{"path", "model"},
	)

	// ProviderFallbacks counts provider failures absorbed by the hash
	// fallback path.
	ProviderFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_fallback_total",
			Help:      "Total number of provider failures recovered via hash fallback",
		},
		[]string{"model"},
	)

	// EmbedDuration tracks embedding generation latency.
	EmbedDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "embed_duration_seconds",
			Help:      "Embedding generation latency in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"path"},
	)

	// CacheHits counts embedding cache lookups served without a model call.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of embedding cache hits",
		},
	)

	// CacheMisses counts embedding cache lookups that fell through to the model.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of embedding cache misses",
		},
	)

	// HTTPRequests counts API requests by method, route pattern, and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the API server",
		},
		[]string{"method", "path", "status"},
	)
)
