// Package metrics exposes Prometheus instruments for engine initialization
// and query handling.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	// Engine initialization
	InitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommender_init_duration_seconds",
			Help:    "Duration of engine initialization in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	InitTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_init_total",
			Help: "Total number of engine initializations by result",
		},
		[]string{"result"},
	)

	LatentDimensions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommender_latent_dimensions",
			Help: "Latent dimensions produced by the factorizer",
		},
	)

	RequestedRank = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommender_requested_rank",
			Help: "Latent rank requested from the factorizer",
		},
	)

	CatalogItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommender_catalog_items",
			Help: "Number of indexed catalog items",
		},
	)

	// Queries
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_requests_total",
			Help: "Total number of core operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommender_request_duration_seconds",
			Help:    "Core operation duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)

	QueryResolution = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_query_resolution_total",
			Help: "How recommendation seeds were resolved",
		},
		[]string{"mode"}, // "default", "title", "text", "fallback"
	)
)

// RecordInit records a finished initialization.
func RecordInit(duration time.Duration, err error) {
	InitDuration.Observe(duration.Seconds())
	if err != nil {
		InitTotal.WithLabelValues(OutcomeError).Inc()
		return
	}
	InitTotal.WithLabelValues(OutcomeSuccess).Inc()
}

// SetIndexShape publishes the dimensions of a freshly built index.
func SetIndexShape(items, requestedRank, latentDim int) {
	CatalogItems.Set(float64(items))
	RequestedRank.Set(float64(requestedRank))
	LatentDimensions.Set(float64(latentDim))
}

// RecordRequest records one core operation call.
func RecordRequest(operation string, duration time.Duration, err error) {
	RequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	RequestsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordResolution counts how a seed was resolved.
func RecordResolution(mode string) {
	QueryResolution.WithLabelValues(mode).Inc()
}
