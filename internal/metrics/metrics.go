package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Catalog metrics
	CatalogFetchTotal     *prometheus.CounterVec
	CatalogFetchDuration  prometheus.Histogram
	CatalogRecordsLoaded  prometheus.Gauge
	IndexSnapshotTotal    *prometheus.CounterVec
	IndexBuildDuration    prometheus.Histogram

	// Search metrics
	SearchRequestsTotal   *prometheus.CounterVec
	SearchDurationSeconds prometheus.Histogram

	// Chat metrics
	ChatRepliesTotal *prometheus.CounterVec
	LLMRequestsTotal *prometheus.CounterVec
	LLMDuration      *prometheus.HistogramVec
	LLMFallbackTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal    *prometheus.CounterVec
	RateLimiterDropped prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// Catalog metrics
		CatalogFetchTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebot_catalog_fetch_total",
				Help: "Total number of catalog fetch attempts by status",
			},
			[]string{"status"}, // status: success, error
		),

		CatalogFetchDuration: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "coursebot_catalog_fetch_duration_seconds",
				Help:    "Catalog fetch duration in seconds including retries",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
			},
		),

		CatalogRecordsLoaded: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "coursebot_catalog_records_loaded",
				Help: "Number of course records currently loaded in memory",
			},
		),

		IndexSnapshotTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebot_index_snapshot_total",
				Help: "Index snapshot cache events by result",
			},
			[]string{"event"}, // event: hit, miss, stale, corrupt, saved
		),

		IndexBuildDuration: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "coursebot_index_build_duration_seconds",
				Help:    "Duration of a full index build",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
			},
		),

		// Search metrics
		SearchRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebot_search_requests_total",
				Help: "Total number of search requests by intent and outcome",
			},
			[]string{"intent", "outcome"}, // outcome: hit, empty, error
		),

		SearchDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "coursebot_search_duration_seconds",
				Help:    "Search request duration in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),

		// Chat metrics
		ChatRepliesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebot_chat_replies_total",
				Help: "Total number of chat replies by source",
			},
			[]string{"source"}, // source: llm, local
		),

		LLMRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebot_llm_requests_total",
				Help: "Total number of LLM completion requests by provider and status",
			},
			[]string{"provider", "status"}, // status: success, timeout, rate_limit, error
		),

		LLMDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coursebot_llm_duration_seconds",
				Help:    "LLM completion duration in seconds by provider",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
			},
			[]string{"provider"},
		),

		LLMFallbackTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebot_llm_fallback_total",
				Help: "Total number of provider fallbacks",
			},
			[]string{"from", "to"},
		),

		// HTTP metrics
		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebot_http_errors_total",
				Help: "Total HTTP errors by type",
			},
			[]string{"error_type"}, // error_type: catalog_unavailable, bad_request, rate_limit, internal
		),

		RateLimiterDropped: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "coursebot_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by the global rate limiter",
			},
		),
	}

	return m
}

// RecordCatalogFetch records a catalog fetch attempt with status
func (m *Metrics) RecordCatalogFetch(status string, duration float64) {
	m.CatalogFetchTotal.WithLabelValues(status).Inc()
	m.CatalogFetchDuration.Observe(duration)
}

// RecordSnapshotEvent records an index snapshot cache event
func (m *Metrics) RecordSnapshotEvent(event string) {
	m.IndexSnapshotTotal.WithLabelValues(event).Inc()
}

// RecordIndexBuild records the duration of a full index build
func (m *Metrics) RecordIndexBuild(duration float64) {
	m.IndexBuildDuration.Observe(duration)
}

// RecordSearch records a search request
func (m *Metrics) RecordSearch(intent, outcome string, duration float64) {
	m.SearchRequestsTotal.WithLabelValues(intent, outcome).Inc()
	m.SearchDurationSeconds.Observe(duration)
}

// RecordChatReply records a chat reply by source
func (m *Metrics) RecordChatReply(source string) {
	m.ChatRepliesTotal.WithLabelValues(source).Inc()
}

// RecordLLMRequest records an LLM completion attempt
func (m *Metrics) RecordLLMRequest(provider, status string, duration float64) {
	m.LLMRequestsTotal.WithLabelValues(provider, status).Inc()
	m.LLMDuration.WithLabelValues(provider).Observe(duration)
}

// RecordLLMFallback records a provider fallback
func (m *Metrics) RecordLLMFallback(from, to string) {
	m.LLMFallbackTotal.WithLabelValues(from, to).Inc()
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(errorType string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordRateLimiterDrop records a request dropped by the global rate limiter
func (m *Metrics) RecordRateLimiterDrop() {
	m.RateLimiterDropped.Inc()
}
