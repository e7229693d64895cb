// Package telemetry exposes Prometheus instrumentation for the query
// cache and backend fetch path.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors TraceLens registers.
type Metrics struct {
	CacheHits       *prometheus.CounterVec
	CacheMisses     *prometheus.CounterVec
	CacheStale      *prometheus.CounterVec
	Coalesced       *prometheus.CounterVec
	RefreshFailures *prometheus.CounterVec
	FetchDuration   *prometheus.HistogramVec
}

// New registers the TraceLens collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tracelens_cache_hits_total",
			Help: "Cache reads served fresh without a network call.",
		}, []string{"kind"}),
		CacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tracelens_cache_misses_total",
			Help: "Cache reads that required a blocking backend fetch.",
		}, []string{"kind"}),
		CacheStale: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tracelens_cache_stale_served_total",
			Help: "Cache reads served stale while a revalidation ran.",
		}, []string{"kind"}),
		Coalesced: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tracelens_cache_coalesced_total",
			Help: "Cache reads attached to an already in-flight fetch.",
		}, []string{"kind"}),
		RefreshFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tracelens_refresh_failures_total",
			Help: "Background refreshes that failed and left stale data in place.",
		}, []string{"kind"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tracelens_fetch_duration_seconds",
			Help:    "Backend fetch latency by data kind.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
}
