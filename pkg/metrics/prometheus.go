// Package metrics provides Prometheus metrics for the compensa service.
package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultSystemInterval = 10 * time.Second
)

// Calculation outcomes used as the "outcome" label.
const (
	OutcomeOK           = "ok"
	OutcomeMissingField = "missing_field"
	OutcomeInvalidValue = "invalid_value"
	OutcomeInternal     = "internal_error"
)

// batchSizeBuckets cover single requests up to large CSV uploads.
var batchSizeBuckets = prometheus.ExponentialBuckets(1, 4, 8) //nolint:gochecknoglobals // constant bucket layout

// Manager manages all Prometheus metrics for the compensa service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Calculation metrics
	calculations       *prometheus.CounterVec
	calculationLatency prometheus.Histogram
	bandLookupFailures prometheus.Counter
	flagsRaised        *prometheus.CounterVec

	// Batch metrics
	batches         *prometheus.CounterVec
	batchSize       prometheus.Histogram
	batchLatency    prometheus.Histogram
	batchItemErrors prometheus.Counter

	// Worker metrics
	workerLimit prometheus.Gauge
	workerBusy  prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// Error metrics
	errorRateByComponent *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "compensa",
		subsystem:        "engine",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000},
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.calculations = auto.NewCounterVec(
		m.counterOpts("calculations_total", "Employee calculations by outcome"),
		[]string{"outcome"},
	)
	m.calculationLatency = auto.NewHistogram(
		m.histogramOpts("calculation_latency_milliseconds", "Single employee calculation latency in milliseconds", m.histogramBuckets),
	)
	m.bandLookupFailures = auto.NewCounter(
		m.counterOpts("band_lookup_failures_total", "Calculations whose salary band check degraded to Lookup Error"),
	)
	m.flagsRaised = auto.NewCounterVec(
		m.counterOpts("flags_raised_total", "Diagnostic flags raised by calculations"),
		[]string{"flag"},
	)

	m.batches = auto.NewCounterVec(
		m.counterOpts("batches_total", "Batches processed by mode"),
		[]string{"mode"},
	)
	m.batchSize = auto.NewHistogram(
		m.histogramOpts("batch_size_employees", "Number of employees per batch", batchSizeBuckets),
	)
	m.batchLatency = auto.NewHistogram(
		m.histogramOpts("batch_latency_milliseconds", "Whole batch latency in milliseconds", m.histogramBuckets),
	)
	m.batchItemErrors = auto.NewCounter(
		m.counterOpts("batch_item_errors_total", "Batch items that failed validation"),
	)

	m.workerLimit = auto.NewGauge(m.gaugeOpts("worker_limit", "Maximum concurrent calculations per batch"))
	m.workerBusy = auto.NewGauge(m.gaugeOpts("worker_busy", "Calculations currently running"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// Calculation metrics.

// RecordCalculation counts one employee calculation with its outcome.
func RecordCalculation(outcome string) {
	globalManager.calculations.WithLabelValues(outcome).Inc()
}

// RecordCalculationLatency records a single calculation in milliseconds.
func RecordCalculationLatency(latencyMs float64) {
	globalManager.calculationLatency.Observe(latencyMs)
}

// RecordBandLookupFailure counts a degraded band check.
func RecordBandLookupFailure() {
	globalManager.bandLookupFailures.Inc()
}

// RecordFlag counts a raised diagnostic flag.
func RecordFlag(flag string) {
	globalManager.flagsRaised.WithLabelValues(flag).Inc()
}

// Batch metrics.

// RecordBatch records a processed batch: its mode, size and latency.
func RecordBatch(mode string, size int, latencyMs float64) {
	globalManager.batches.WithLabelValues(mode).Inc()
	globalManager.batchSize.Observe(float64(size))
	globalManager.batchLatency.Observe(latencyMs)
}

// RecordBatchItemError counts a batch item that produced an error.
func RecordBatchItemError() {
	globalManager.batchItemErrors.Inc()
}

// Worker metrics.

// UpdateWorkerLimit sets the configured concurrency limit.
func UpdateWorkerLimit(limit int) {
	globalManager.workerLimit.Set(float64(limit))
}

// WorkerStarted marks one calculation as running.
func WorkerStarted() {
	globalManager.workerBusy.Inc()
}

// WorkerFinished marks one calculation as done.
func WorkerFinished() {
	globalManager.workerBusy.Dec()
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// System metrics.

// UpdateSystemMetrics samples memory and goroutine counts.
func UpdateSystemMetrics() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.systemMemoryUsage.Set(float64(ms.HeapAlloc))
	globalManager.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
}

// RunSystemCollector samples system metrics every interval until ctx is done.
// A non-positive interval uses the default.
func RunSystemCollector(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSystemInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	UpdateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			UpdateSystemMetrics()
		}
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
