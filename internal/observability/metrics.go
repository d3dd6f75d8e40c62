// Package observability provides prometheus collectors and tracing setup.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canteenhub_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "canteenhub_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ReviewListCacheLookups counts review listing cache lookups by outcome.
	ReviewListCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canteenhub_review_list_cache_lookups_total",
		Help: "Review listing cache lookups by outcome (hit, miss, error)",
	}, []string{"outcome"})

	// ReviewsCreated counts persisted reviews by meal time.
	ReviewsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canteenhub_reviews_created_total",
		Help: "Total number of reviews created",
	}, []string{"meal_time"})

	// ResetMailsSent counts password-reset emails by delivery outcome.
	ResetMailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canteenhub_reset_mails_total",
		Help: "Password reset emails by outcome (sent, failed)",
	}, []string{"outcome"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
