package observability

import (
	"time"

	"github.com/nivelo/crm-dashboard-bfa-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the dashboard BFF.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	fetchErrors     *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	fastPath        *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crmdash_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		fetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crmdash_fetch_errors_total",
				Help: "Total upstream fetch failures by record source.",
			},
			[]string{"source"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crmdash_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crmdash_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		fastPath: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crmdash_fastpath_total",
				Help: "Fast-path analytics outcomes (hit or fallback).",
			},
			[]string{"outcome"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crmdash_requests_total",
				Help: "Total dashboard requests processed.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrFetchError increments the fetch error counter for a record source.
func (m *Metrics) IncrFetchError(source string) {
	m.fetchErrors.WithLabelValues(source).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrFastPath records a fast-path outcome ("hit" or "fallback").
func (m *Metrics) IncrFastPath(outcome string) {
	m.fastPath.WithLabelValues(outcome).Inc()
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// GetDashboardSnapshot returns a snapshot of dashboard-related metrics
// suitable for the GET /v1/metrics/dashboard endpoint.
func (m *Metrics) GetDashboardSnapshot() *domain.DashboardMetrics {
	// Prometheus counters expose cumulative values; read them back directly.
	fastHits := getCounterValue(m.fastPath, "hit")
	fallbacks := getCounterValue(m.fastPath, "fallback")
	totalRequests := getCounterValue(m.requestsTotal, "success") +
		getCounterValue(m.requestsTotal, "error")
	errorCount := getCounterValue(m.requestsTotal, "error")
	cacheHits := getCounterValue(m.cacheHits, "dashboard")
	cacheMisses := getCounterValue(m.cacheMisses, "dashboard")

	errorRate := float64(0)
	fastPathRate := float64(0)
	cacheHitRate := float64(0)

	if totalRequests > 0 {
		errorRate = errorCount / totalRequests
	}
	if fastHits+fallbacks > 0 {
		fastPathRate = fastHits / (fastHits + fallbacks)
	}
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	return &domain.DashboardMetrics{
		TotalRequests:   int64(totalRequests),
		ErrorRate:       errorRate,
		FastPathHitRate: fastPathRate,
		CacheHitRate:    cacheHitRate,
		Period:          "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
