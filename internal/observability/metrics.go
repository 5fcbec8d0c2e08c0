package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SwipesTotal counts swipe decisions by outcome ("like" or "pass").
	SwipesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kindler_swipes_total",
		Help: "Total number of swipe decisions recorded, by outcome",
	}, []string{"outcome"})

	// MatchesFormed counts pairs that reached mutual like.
	MatchesFormed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kindler_matches_formed_total",
		Help: "Total number of mutual-like matches formed",
	})

	// CandidateExhaustion counts candidate requests that found nobody left.
	CandidateExhaustion = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kindler_candidate_exhaustion_total",
		Help: "Total number of candidate requests that exhausted the pool",
	})

	// CandidateFallbacks counts candidate picks that fell back to the
	// unfiltered pool after the location-filtered sample came up empty.
	CandidateFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kindler_candidate_fallbacks_total",
		Help: "Total number of candidate picks served from the unfiltered pool",
	})

	// MessagesSent counts direct messages accepted for delivery.
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kindler_messages_sent_total",
		Help: "Total number of direct messages sent",
	})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kindler_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kindler_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called,
// intended for use with defer.
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
