package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SnapshotFetches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_snapshot_fetches_total",
		Help: "Upstream snapshot fetches attempted",
	})
	SnapshotFetchErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_snapshot_fetch_errors_total",
		Help: "Upstream snapshot fetches that failed",
	})
	CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_result_cache_hits_total",
		Help: "Flip list requests served from the result cache",
	})
	CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_result_cache_misses_total",
		Help: "Flip list requests that triggered a recompute",
	})
	DeriveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bazaar_derive_duration_seconds",
		Help:    "Wall time of fetch+derive on a cache miss",
		Buckets: prometheus.DefBuckets,
	})
	RecordsDerived = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bazaar_records_derived",
		Help: "Qualifying flip records in the last derivation",
	})
)

var registerOnce sync.Once

// Handler registers the collectors and returns the /metrics handler.
func Handler() http.Handler {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			SnapshotFetches,
			SnapshotFetchErrors,
			CacheHits,
			CacheMisses,
			DeriveDuration,
			RecordsDerived,
		)
	})
	return promhttp.Handler()
}
