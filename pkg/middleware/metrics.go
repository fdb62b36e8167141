package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "nextgo").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "nextgo",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for nextgo.
type metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	renderDuration   *prometheus.HistogramVec
	matchDuration    prometheus.Histogram
	matchCacheHits   prometheus.Counter
	matchCacheMisses prometheus.Counter
	routeRebuilds    prometheus.Counter
	routesRegistered prometheus.Gauge
}

// globalMetrics is the singleton metrics instance, created on the
// first call to Prometheus(). The recording functions load it without
// the lock, so it is published through an atomic pointer.
var (
	globalMetrics   atomic.Pointer[metrics]
	globalMetricsMu sync.Mutex
)

// initMetrics initializes the Prometheus metrics.
func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of requests by route and status code",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Request handling duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Page render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		matchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "route_match_duration_seconds",
			Help:        "Route matching duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{.000001, .00001, .0001, .001, .01},
		}),

		matchCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "route_cache_hits_total",
			Help:        "Total exact-match cache hits",
			ConstLabels: config.ConstLabels,
		}),

		matchCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "route_cache_misses_total",
			Help:        "Total exact-match cache misses",
			ConstLabels: config.ConstLabels,
		}),

		routeRebuilds: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "route_table_rebuilds_total",
			Help:        "Total route table rebuilds (full scans and single-file reloads)",
			ConstLabels: config.ConstLabels,
		}),

		routesRegistered: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "routes_registered",
			Help:        "Number of routes in the current table",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus creates middleware that collects request metrics.
//
// Metrics collected:
//   - nextgo_requests_total: Counter of requests by route and status
//   - nextgo_request_duration_seconds: Histogram of request duration
//   - nextgo_render_duration_seconds: Histogram of page render duration
//   - nextgo_route_match_duration_seconds: Histogram of match time
//   - nextgo_route_cache_hits_total / _misses_total: exact-match cache
//   - nextgo_route_table_rebuilds_total: route table rebuilds
//   - nextgo_routes_registered: routes in the current table
//
// Example:
//
//	mux.Use(middleware.Prometheus(
//	    middleware.WithNamespace("mysite"),
//	))
//	mux.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) func(http.Handler) http.Handler {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	m := globalMetrics.Load()
	if m == nil {
		m = initMetrics(config)
		globalMetrics.Store(m)
	}
	globalMetricsMu.Unlock()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := r.URL.Path
			if route == "" {
				route = "/"
			}

			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			// Prefer the matched route pattern set by the app to keep
			// label cardinality bounded on dynamic routes.
			if matched := sw.Header().Get("X-Nextgo-Route"); matched != "" {
				route = matched
			}

			m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
			m.requestsTotal.WithLabelValues(route, strconv.Itoa(sw.status)).Inc()
		})
	}
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// =============================================================================
// Metrics Recording Functions
// =============================================================================

// RecordRender records a page render duration for a route pattern.
func RecordRender(route string, d time.Duration) {
	if m := globalMetrics.Load(); m != nil {
		m.renderDuration.WithLabelValues(route).Observe(d.Seconds())
	}
}

// RecordMatch records a route match attempt and whether the exact-match
// cache served it.
func RecordMatch(d time.Duration, cacheHit bool) {
	if m := globalMetrics.Load(); m != nil {
		m.matchDuration.Observe(d.Seconds())
		if cacheHit {
			m.matchCacheHits.Inc()
		} else {
			m.matchCacheMisses.Inc()
		}
	}
}

// RecordRebuild records a route table rebuild and the resulting table
// size.
func RecordRebuild(routeCount int) {
	if m := globalMetrics.Load(); m != nil {
		m.routeRebuilds.Inc()
		m.routesRegistered.Set(float64(routeCount))
	}
}
