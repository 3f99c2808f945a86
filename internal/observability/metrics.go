package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"devconnect/internal/models"
)

var (
	// PostOperations counts post engine calls by operation and outcome code.
	PostOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnect_post_operations_total",
		Help: "Total number of post operations by outcome",
	}, []string{"operation", "outcome"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnect_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"operation"})

	// StoreQueryLatency records store latency by backend and operation.
	StoreQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "devconnect_store_query_latency_seconds",
		Help:    "Post and user store latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"store", "operation"})

	// ProfileCacheResults counts profile cache hits and misses.
	ProfileCacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnect_profile_cache_results_total",
		Help: "Profile cache lookups by result",
	}, []string{"result"})
)

// RecordPostOperation increments PostOperations using the error code of err
// as the outcome label.
func RecordPostOperation(operation string, err error) {
	PostOperations.WithLabelValues(operation, Outcome(err)).Inc()
}

// Outcome returns "ok" for nil, the AppError code when err carries one, and
// the internal code otherwise.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return models.CodeInternal
}

// ObserveStoreQuery records the latency of a store call started at start.
func ObserveStoreQuery(store, operation string, start time.Time) {
	StoreQueryLatency.WithLabelValues(store, operation).Observe(time.Since(start).Seconds())
}

// Collectors returns the application collectors so that they can be exposed
// from a registry other than the default one.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{PostOperations, RedisErrors, StoreQueryLatency, ProfileCacheResults}
}
