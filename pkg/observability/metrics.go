package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the authorization service
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Authorization decision metrics
	DecisionsTotal   *prometheus.CounterVec
	DecisionDuration *prometheus.HistogramVec

	// Identity resolution metrics
	ResolutionsTotal *prometheus.CounterVec

	// Auth context cache metrics
	ContextCacheHitsTotal   prometheus.Counter
	ContextCacheMissesTotal prometheus.Counter

	// Policy store metrics
	StoreQueriesTotal  *prometheus.CounterVec
	StoreQueryDuration *prometheus.HistogramVec
	StoreErrorsTotal   *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "warden_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		DecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_authz_decisions_total",
				Help: "Authorization decisions by action, outcome and denial reason",
			},
			[]string{"action", "outcome", "reason"},
		),
		DecisionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "warden_authz_decision_duration_seconds",
				Help:    "Authorization decision latency in seconds",
				Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"action"},
		),
		ResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_authn_resolutions_total",
				Help: "Credential resolutions by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		ContextCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "warden_context_cache_hits_total",
				Help: "Auth context cache hits",
			},
		),
		ContextCacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "warden_context_cache_misses_total",
				Help: "Auth context cache misses",
			},
		),
		StoreQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_store_queries_total",
				Help: "Policy store queries by name",
			},
			[]string{"query"},
		),
		StoreQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "warden_store_query_duration_seconds",
				Help:    "Policy store query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"query"},
		),
		StoreErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_store_errors_total",
				Help: "Policy store query errors by name",
			},
			[]string{"query"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DecisionsTotal,
		m.DecisionDuration,
		m.ResolutionsTotal,
		m.ContextCacheHitsTotal,
		m.ContextCacheMissesTotal,
		m.StoreQueriesTotal,
		m.StoreQueryDuration,
		m.StoreErrorsTotal,
	)

	return m
}

// Handler returns an HTTP handler serving the metrics registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordDecision records an authorization decision. All methods on Metrics
// are safe on a nil receiver so instrumentation stays optional.
func (m *Metrics) RecordDecision(action, outcome, reason string, duration time.Duration) {
	if m == nil {
		return
	}
	m.DecisionsTotal.WithLabelValues(action, outcome, reason).Inc()
	m.DecisionDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordResolution records a credential resolution attempt
func (m *Metrics) RecordResolution(method, outcome string) {
	if m == nil {
		return
	}
	m.ResolutionsTotal.WithLabelValues(method, outcome).Inc()
}

// RecordContextCacheHit records an auth context cache hit
func (m *Metrics) RecordContextCacheHit() {
	if m == nil {
		return
	}
	m.ContextCacheHitsTotal.Inc()
}

// RecordContextCacheMiss records an auth context cache miss
func (m *Metrics) RecordContextCacheMiss() {
	if m == nil {
		return
	}
	m.ContextCacheMissesTotal.Inc()
}

// RecordStoreQuery records a policy store query
func (m *Metrics) RecordStoreQuery(query string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.StoreQueriesTotal.WithLabelValues(query).Inc()
	m.StoreQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
	if err != nil {
		m.StoreErrorsTotal.WithLabelValues(query).Inc()
	}
}

// statusRecorder captures the response status code for metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// HTTPMiddleware instruments request count and duration per method/path
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		path := r.URL.Path
		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(recorder.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
