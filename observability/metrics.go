package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stock_dashboard"

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Market data metrics
	DataRequestsTotal *prometheus.CounterVec
	DataLoadDuration  *prometheus.HistogramVec
	DataErrorsTotal   *prometheus.CounterVec
	InsightsTotal     *prometheus.CounterVec
	OverviewRequests  prometheus.Counter

	// Live refresh metrics
	RefreshTicksTotal *prometheus.CounterVec
	ActiveSessions    prometheus.Gauge

	// External API metrics
	ExternalAPIRequestsTotal *prometheus.CounterVec
	ExternalAPIErrorsTotal   *prometheus.CounterVec
	ExternalAPIDuration      *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		// Market data metrics
		DataRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "market_data",
				Name:      "requests_total",
				Help:      "Total number of quote and series loads",
			},
			[]string{"mode"},
		),
		DataLoadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "market_data",
				Name:      "load_duration_seconds",
				Help:      "Duration of quote and series loads in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"mode", "status"},
		),
		DataErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "market_data",
				Name:      "errors_total",
				Help:      "Total number of failed data retrievals",
			},
			[]string{"mode"},
		),
		InsightsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "insights",
				Name:      "emitted_total",
				Help:      "Total number of insights emitted by type and confidence",
			},
			[]string{"type", "confidence"},
		),
		OverviewRequests: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "market_data",
				Name:      "overview_requests_total",
				Help:      "Total number of overview grid loads",
			},
		),

		// Live refresh metrics
		RefreshTicksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "refresh",
				Name:      "ticks_total",
				Help:      "Total number of live quote refresh ticks by outcome",
			},
			[]string{"outcome"},
		),
		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "sessions",
				Name:      "active",
				Help:      "Number of open dashboard sessions",
			},
		),

		// External API metrics
		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "external_api",
				Name:      "requests_total",
				Help:      "Total number of external API requests",
			},
			[]string{"service", "operation"},
		),
		ExternalAPIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "external_api",
				Name:      "errors_total",
				Help:      "Total number of external API errors",
			},
			[]string{"service", "operation", "error_type"},
		),
		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "external_api",
				Name:      "duration_seconds",
				Help:      "Duration of external API calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"service", "operation"},
		),

		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),

		// Circuit breaker metrics
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() *Metrics {
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		return InitMetrics()
	}
	return globalMetrics
}

// SetMetrics replaces the global metrics instance (useful for testing)
func SetMetrics(m *Metrics) {
	globalMetrics = m
}

// RecordDataRequest records a quote and series load
func (m *Metrics) RecordDataRequest(mode string) {
	m.DataRequestsTotal.WithLabelValues(mode).Inc()
}

// RecordDataLoadDuration records how long a load took
func (m *Metrics) RecordDataLoadDuration(mode, status string, duration time.Duration) {
	m.DataLoadDuration.WithLabelValues(mode, status).Observe(duration.Seconds())
}

// RecordDataError records a failed data retrieval
func (m *Metrics) RecordDataError(mode string) {
	m.DataErrorsTotal.WithLabelValues(mode).Inc()
}

// RecordInsight records an emitted insight
func (m *Metrics) RecordInsight(insightType, confidence string) {
	m.InsightsTotal.WithLabelValues(insightType, confidence).Inc()
}

// RecordOverview records an overview grid load
func (m *Metrics) RecordOverview() {
	m.OverviewRequests.Inc()
}

// RecordRefreshTick records a refresh tick outcome (updated, failed, stale)
func (m *Metrics) RecordRefreshTick(outcome string) {
	m.RefreshTicksTotal.WithLabelValues(outcome).Inc()
}

// SetActiveSessions sets the open session gauge
func (m *Metrics) SetActiveSessions(n int) {
	m.ActiveSessions.Set(float64(n))
}

// RecordExternalAPIRequest records an external API request
func (m *Metrics) RecordExternalAPIRequest(service, operation string) {
	m.ExternalAPIRequestsTotal.WithLabelValues(service, operation).Inc()
}

// RecordExternalAPIError records an external API error
func (m *Metrics) RecordExternalAPIError(service, operation, errorType string) {
	m.ExternalAPIErrorsTotal.WithLabelValues(service, operation, errorType).Inc()
}

// RecordExternalAPIDuration records the duration of an external API call
func (m *Metrics) RecordExternalAPIDuration(service, operation string, duration time.Duration) {
	m.ExternalAPIDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
}

// Timer is a helper for timing operations
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// ObserveDataLoad records the load duration and status
func (t *Timer) ObserveDataLoad(mode, status string) {
	t.metrics.RecordDataLoadDuration(mode, status, time.Since(t.start))
}

// ObserveExternalAPI records the external API duration
func (t *Timer) ObserveExternalAPI(service, operation string) {
	t.metrics.RecordExternalAPIDuration(service, operation, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
