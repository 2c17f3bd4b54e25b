package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Answer pipeline metrics
	AISearchRequests prometheus.Counter
	AISearchLatency  prometheus.Histogram
	AISearchErrors   *prometheus.CounterVec // by pipeline stage
	AnswerCacheHits  prometheus.Counter

	// Outbound service metrics
	EmbeddingRequests prometheus.Counter
	EmbeddingErrors   prometheus.Counter
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics
func InitMetrics() *Metrics {
	metrics := &Metrics{
		AISearchRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tungra_ai_search_requests_total",
			Help: "Total number of AI search requests processed",
		}),

		AISearchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tungra_ai_search_duration_seconds",
			Help:    "AI search request latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60}, // up to a minute for slow generations
		}),

		AISearchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tungra_ai_search_errors_total",
			Help: "Total number of AI search failures by pipeline stage",
		}, []string{"stage"}),

		AnswerCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tungra_answer_cache_hits_total",
			Help: "Total number of AI search answers served from cache",
		}),

		EmbeddingRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tungra_embedding_requests_total",
			Help: "Total number of outbound embedding service calls",
		}),

		EmbeddingErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tungra_embedding_errors_total",
			Help: "Total number of failed embedding service calls",
		}),
	}

	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance (may be nil in tests)
func GetMetrics() *Metrics {
	return globalMetrics
}
