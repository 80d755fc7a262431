// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialmap_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "socialmap_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialmap_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Photo Metrics
	PhotoOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialmap_photo_operations_total",
			Help: "Total number of photo operations by outcome",
		},
		[]string{"operation", "result"}, // operation: "upload", "delete", "refresh", "backfill"
	)

	PhotoUploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "socialmap_photo_upload_bytes",
			Help:    "Size of stored photo payloads in bytes",
			Buckets: prometheus.ExponentialBuckets(64*1024, 2, 9), // 64KiB .. 16MiB
		},
	)

	// Geocoding Metrics
	GeocodeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialmap_geocode_requests_total",
			Help: "Total number of geocoder lookups by kind and source",
		},
		[]string{"kind", "source"}, // kind: "reverse", "search"; source: "cache", "upstream", "error"
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordPhotoOperation counts a photo operation as success or error.
func RecordPhotoOperation(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	PhotoOperations.WithLabelValues(operation, result).Inc()
}

func RecordGeocode(kind, source string) {
	GeocodeRequests.WithLabelValues(kind, source).Inc()
}
