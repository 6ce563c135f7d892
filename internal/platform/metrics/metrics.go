package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	AuthFailures     prometheus.Counter
	SigningFailures  prometheus.Counter

	CacheHits      *prometheus.CounterVec
	CacheMisses    *prometheus.CounterVec
	CacheStale     *prometheus.CounterVec
	CacheFallbacks *prometheus.CounterVec

	SchemaSkippedRecords *prometheus.CounterVec

	QuotesCreated   prometheus.Counter
	SessionsCreated prometheus.Counter

	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		UpstreamRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rampgw_upstream_requests_total",
			Help: "Upstream API requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rampgw_upstream_request_duration_seconds",
			Help:    "Upstream API request latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rampgw_upstream_auth_failures_total",
			Help: "Upstream 401/403 responses; sustained growth means credential rot",
		}),
		SigningFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rampgw_signing_failures_total",
			Help: "Failed attempts to produce a signed upstream token",
		}),
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rampgw_catalog_cache_hits_total",
			Help: "Catalog cache hits on a fresh entry",
		}, []string{"domain"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rampgw_catalog_cache_misses_total",
			Help: "Catalog cache misses that triggered an upstream fetch",
		}, []string{"domain"}),
		CacheStale: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rampgw_catalog_cache_stale_served_total",
			Help: "Stale catalog entries served after an upstream failure",
		}, []string{"domain"}),
		CacheFallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rampgw_catalog_cache_fallbacks_total",
			Help: "Static fallback catalogs served with no cached entry available",
		}, []string{"domain"}),
		SchemaSkippedRecords: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rampgw_schema_skipped_records_total",
			Help: "Upstream records dropped for missing required identifiers",
		}, []string{"shape"}),
		QuotesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rampgw_quotes_created_total",
			Help: "Quotes successfully created upstream",
		}),
		SessionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rampgw_sessions_created_total",
			Help: "Session tokens successfully created upstream",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rampgw_http_request_duration_seconds",
			Help:    "Latency of gateway HTTP endpoints",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// ObserveUpstream records one upstream round trip.
func (m *Metrics) ObserveUpstream(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
