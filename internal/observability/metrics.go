// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by key family and result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_cache_lookups_total",
		Help: "Cache-aside lookups by key family and result",
	}, []string{"family", "result"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "foodgram_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// RelationToggles counts favorite, cart and subscription toggles by outcome.
	RelationToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_relation_toggles_total",
		Help: "Relation add/remove attempts by kind, action and outcome",
	}, []string{"kind", "action", "outcome"})

	// RecipeWrites counts recipe composition writes by operation and outcome.
	RecipeWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_recipe_writes_total",
		Help: "Recipe create/update/delete operations by outcome",
	}, []string{"operation", "outcome"})

	// ShoppingListDownloads counts shopping list exports by aggregation strategy.
	ShoppingListDownloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_shopping_list_downloads_total",
		Help: "Shopping list downloads by aggregation strategy",
	}, []string{"strategy"})

	// ShoppingListLines observes how many distinct ingredients a shopping list holds.
	ShoppingListLines = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "foodgram_shopping_list_lines",
		Help:    "Distinct ingredient lines per shopping list",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})
)

// Outcome labels an operation result for metrics.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
