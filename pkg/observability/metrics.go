package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the NBLAST service.
type Metrics struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestErrors   *prometheus.CounterVec

	// Neuron lifecycle metrics
	NeuronsAdded               prometheus.Counter
	TangentEstimationFailures  prometheus.Counter

	// Arena query metrics
	ArenaQueryDuration *prometheus.HistogramVec
	ArenaBatchSize     prometheus.Histogram

	// Pair cache metrics
	PairCacheHits   prometheus.Counter
	PairCacheMisses prometheus.Counter
	PairCacheSize   prometheus.Gauge

	// Approximate shortlist metrics (pkg/neighbor) — never touch exact scoring
	ShortlistQueries    prometheus.Counter
	ShortlistLatency    prometheus.Histogram
	ShortlistIndexSize  prometheus.Gauge

	// Tenant metrics
	TenantsTotal     prometheus.Gauge
	TenantQuotaUsage *prometheus.GaugeVec

	// System metrics
	GoroutinesCount prometheus.Gauge
	MemoryUsage     prometheus.Gauge
}

// NewMetrics creates all Prometheus metrics and registers them with the
// default registry. A second call in the same process panics on the
// duplicate registration.
func NewMetrics() *Metrics {
	m := &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nblast_requests_total",
				Help: "Total number of requests by method and status",
			},
			[]string{"method", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nblast_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		RequestErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nblast_request_errors_total",
				Help: "Total number of request errors by method and error type",
			},
			[]string{"method", "error_type"},
		),

		NeuronsAdded: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "nblast_neurons_added_total",
				Help: "Total number of neurons added to an arena",
			},
		),
		TangentEstimationFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "nblast_tangent_estimation_failures_total",
				Help: "Total number of neuron insertions rejected due to tangent estimation failure",
			},
		),

		ArenaQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nblast_arena_query_duration_seconds",
				Help:    "Arena query/batch/all-vs-all duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"operation"},
		),
		ArenaBatchSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nblast_arena_batch_size",
				Help:    "Number of query*target pairs per batch call",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
		),

		PairCacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "nblast_pair_cache_hits_total",
				Help: "Total number of pairwise score cache hits",
			},
		),
		PairCacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "nblast_pair_cache_misses_total",
				Help: "Total number of pairwise score cache misses",
			},
		),
		PairCacheSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "nblast_pair_cache_size",
				Help: "Current number of entries in the pairwise score cache",
			},
		),

		ShortlistQueries: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "nblast_shortlist_queries_total",
				Help: "Total number of approximate shortlist queries",
			},
		),
		ShortlistLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nblast_shortlist_latency_seconds",
				Help:    "Approximate shortlist query latency in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
		),
		ShortlistIndexSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "nblast_shortlist_index_size",
				Help: "Number of descriptors held by the approximate shortlist index",
			},
		),

		TenantsTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "nblast_tenants_total",
				Help: "Total number of active tenants",
			},
		),
		TenantQuotaUsage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "nblast_tenant_quota_usage",
				Help: "Tenant quota usage percentage by tenant and resource",
			},
			[]string{"tenant", "resource"},
		),

		GoroutinesCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "nblast_goroutines",
				Help: "Current number of goroutines",
			},
		),
		MemoryUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "nblast_memory_bytes",
				Help: "Memory usage in bytes",
			},
		),
	}

	return m
}

// RecordRequest records a request with duration and status.
func (m *Metrics) RecordRequest(method, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, status).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordError records an error.
func (m *Metrics) RecordError(method, errorType string) {
	m.RequestErrors.WithLabelValues(method, errorType).Inc()
}

// RecordNeuronAdded records a successful neuron insertion into an arena.
func (m *Metrics) RecordNeuronAdded() {
	m.NeuronsAdded.Inc()
}

// RecordTangentEstimationFailure records a neuron insertion rejected because
// tangent estimation failed.
func (m *Metrics) RecordTangentEstimationFailure() {
	m.TangentEstimationFailures.Inc()
}

// RecordArenaQuery records one arena operation's (query/batch/all_vs_all)
// duration and, for batch-shaped operations, its pair count.
func (m *Metrics) RecordArenaQuery(operation string, duration time.Duration, pairCount int) {
	m.ArenaQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if pairCount > 0 {
		m.ArenaBatchSize.Observe(float64(pairCount))
	}
}

// RecordPairCacheHit records a pairwise cache hit.
func (m *Metrics) RecordPairCacheHit() {
	m.PairCacheHits.Inc()
}

// RecordPairCacheMiss records a pairwise cache miss.
func (m *Metrics) RecordPairCacheMiss() {
	m.PairCacheMisses.Inc()
}

// UpdatePairCacheSize updates the pairwise cache size gauge.
func (m *Metrics) UpdatePairCacheSize(size int) {
	m.PairCacheSize.Set(float64(size))
}

// RecordShortlistQuery records one approximate-shortlist query.
func (m *Metrics) RecordShortlistQuery(duration time.Duration) {
	m.ShortlistQueries.Inc()
	m.ShortlistLatency.Observe(duration.Seconds())
}

// UpdateShortlistIndexSize updates the shortlist descriptor count gauge.
func (m *Metrics) UpdateShortlistIndexSize(size int) {
	m.ShortlistIndexSize.Set(float64(size))
}

// UpdateTenantCount updates the total tenant count.
func (m *Metrics) UpdateTenantCount(count int) {
	m.TenantsTotal.Set(float64(count))
}

// UpdateTenantQuota updates tenant quota usage.
func (m *Metrics) UpdateTenantQuota(tenant, resource string, usage float64) {
	m.TenantQuotaUsage.WithLabelValues(tenant, resource).Set(usage)
}

// UpdateGoroutineCount updates goroutine count.
func (m *Metrics) UpdateGoroutineCount(count int) {
	m.GoroutinesCount.Set(float64(count))
}

// UpdateMemoryUsage updates memory usage.
func (m *Metrics) UpdateMemoryUsage(bytes uint64) {
	m.MemoryUsage.Set(float64(bytes))
}
