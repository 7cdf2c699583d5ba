package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Research pipeline metrics
	ResearchRequestsTotal *prometheus.CounterVec
	ResearchDuration      *prometheus.HistogramVec
	ResearchErrorsTotal   *prometheus.CounterVec

	// External API metrics
	ExternalAPIRequestsTotal *prometheus.CounterVec
	ExternalAPIErrorsTotal   *prometheus.CounterVec
	ExternalAPIDuration      *prometheus.HistogramVec

	// Rate limiter metrics
	RateLimitWaitSeconds prometheus.Histogram

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Sentiment metrics
	SentimentPostsTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// waitBuckets cover rate-limiter waits, which run up to the full
// 12-second spacing window.
var waitBuckets = []float64{.1, .5, 1, 2, 4, 8, 12, 16, 24, 36}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		ResearchRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockscope",
				Subsystem: "research",
				Name:      "requests_total",
				Help:      "Total number of stock research requests",
			},
			[]string{"operation"},
		),
		ResearchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stockscope",
				Subsystem: "research",
				Name:      "duration_seconds",
				Help:      "Duration of stock research requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"operation", "status"},
		),
		ResearchErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockscope",
				Subsystem: "research",
				Name:      "errors_total",
				Help:      "Total number of research errors by classification",
			},
			[]string{"operation", "code"},
		),

		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockscope",
				Subsystem: "external_api",
				Name:      "requests_total",
				Help:      "Total number of external API requests",
			},
			[]string{"service", "operation"},
		),
		ExternalAPIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockscope",
				Subsystem: "external_api",
				Name:      "errors_total",
				Help:      "Total number of external API errors",
			},
			[]string{"service", "operation", "error_type"},
		),
		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stockscope",
				Subsystem: "external_api",
				Name:      "duration_seconds",
				Help:      "Duration of external API calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"service", "operation"},
		),

		RateLimitWaitSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "stockscope",
				Subsystem: "rate_limiter",
				Name:      "wait_seconds",
				Help:      "Time spent waiting out provider rate-limit spacing",
				Buckets:   waitBuckets,
			},
		),

		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockscope",
				Subsystem: "cache",
				Name:      "hits_total",
				Help:      "Total number of response cache hits",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockscope",
				Subsystem: "cache",
				Name:      "misses_total",
				Help:      "Total number of response cache misses",
			},
			[]string{"cache"},
		),

		SentimentPostsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockscope",
				Subsystem: "sentiment",
				Name:      "posts_total",
				Help:      "Total number of social posts scored",
			},
			[]string{"platform"},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockscope",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stockscope",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),

		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "stockscope",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockscope",
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance.
func InitMetrics() *Metrics {
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// GetMetrics returns the global metrics instance.
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		// A throwaway registry keeps tests from double-registering
		// against the default one.
		globalMetrics = NewMetrics(prometheus.NewRegistry())
	}
	return globalMetrics
}

// RecordResearchRequest records one research request.
func (m *Metrics) RecordResearchRequest(operation string) {
	m.ResearchRequestsTotal.WithLabelValues(operation).Inc()
}

// RecordResearchError records a classified research failure.
func (m *Metrics) RecordResearchError(operation, code string) {
	m.ResearchErrorsTotal.WithLabelValues(operation, code).Inc()
}

// RecordExternalAPIRequest records an external API request.
func (m *Metrics) RecordExternalAPIRequest(service, operation string) {
	m.ExternalAPIRequestsTotal.WithLabelValues(service, operation).Inc()
}

// RecordExternalAPIError records an external API error.
func (m *Metrics) RecordExternalAPIError(service, operation, errorType string) {
	m.ExternalAPIErrorsTotal.WithLabelValues(service, operation, errorType).Inc()
}

// ObserveRateLimitWait records time spent throttled.
func (m *Metrics) ObserveRateLimitWait(wait time.Duration) {
	m.RateLimitWaitSeconds.Observe(wait.Seconds())
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit(cache string) {
	m.CacheHitsTotal.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss(cache string) {
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// RecordSentimentPosts records scored social posts.
func (m *Metrics) RecordSentimentPosts(platform string, count int) {
	m.SentimentPostsTotal.WithLabelValues(platform).Add(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetCircuitBreakerState sets the current state of a circuit breaker.
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip.
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
}

// Timer is a helper for timing operations.
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer.
func (m *Metrics) NewTimer() *Timer {
	return &Timer{start: time.Now(), metrics: m}
}

// ObserveResearch records the research duration and status.
func (t *Timer) ObserveResearch(operation, status string) {
	t.metrics.ResearchDuration.WithLabelValues(operation, status).Observe(time.Since(t.start).Seconds())
}

// ObserveExternalAPI records the external API duration.
func (t *Timer) ObserveExternalAPI(service, operation string) {
	t.metrics.ExternalAPIDuration.WithLabelValues(service, operation).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
