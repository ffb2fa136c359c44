// Package metrics provides Prometheus metrics for the vitals engine.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// anxietyBuckets cover the 0..100 score range in steps of ten.
var anxietyBuckets = prometheus.LinearBuckets(0, 10, 11) //nolint:gochecknoglobals // fixed bucket layout

// Manager manages all Prometheus metrics for the vitals engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          atomic.Bool
	refreshInterval  atomic.Int64 // nanoseconds
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Scan lifecycle
	scansStarted   prometheus.Counter
	scansCompleted *prometheus.CounterVec
	scanFallbacks  prometheus.Counter
	scansCancelled prometheus.Counter
	scanDuration   prometheus.Histogram

	// Readings
	anxietyScore    prometheus.Histogram
	currentAnxiety  prometheus.Gauge
	readingsByState *prometheus.CounterVec
	historySize     prometheus.Gauge

	// Agent bridge
	agentRequests        *prometheus.CounterVec
	agentRequestDuration prometheus.Histogram

	// Behavioral log pipeline
	logWrites               *prometheus.CounterVec
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueUtilization        prometheus.Gauge
	queueEnqueueRate        prometheus.Counter
	queueDequeueRate        prometheus.Counter
	queueEnqueueErrors      prometheus.Counter
	queueProcessingLatency  prometheus.Histogram
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Repository
	repositoryRecordsTotal  prometheus.Gauge
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "silentsignal",
		subsystem:        "vitals",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	m.enabled.Store(true)
	m.refreshInterval.Store(int64(defaultRefreshInterval))

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one block per metric
	m.scansStarted = m.counter("scans_started_total", "Total number of scan sessions started")
	m.scansCompleted = m.counterVec("scans_completed_total", "Total number of scans that produced a reading", "source")
	m.scanFallbacks = m.counter("scan_fallbacks_total", "Total number of scans that fell back to synthetic values")
	m.scansCancelled = m.counter("scans_cancelled_total", "Total number of scans cancelled before completion")
	m.scanDuration = m.histogram("scan_duration_milliseconds", "Wall-clock duration of the scanning phase", m.histogramBuckets)

	m.anxietyScore = m.histogram("anxiety_score", "Distribution of computed anxiety scores", anxietyBuckets)
	m.currentAnxiety = m.gauge("anxiety_score_current", "Most recently committed anxiety score")
	m.readingsByState = m.counterVec("readings_total", "Committed readings by status", "status")
	m.historySize = m.gauge("history_size", "Readings currently held in the history buffer")

	m.agentRequests = m.counterVec("agent_requests_total", "Agent bridge exchanges by outcome", "outcome")
	m.agentRequestDuration = m.histogram("agent_request_duration_milliseconds", "Agent bridge round-trip latency", m.histogramBuckets)

	m.logWrites = m.counterVec("log_writes_total", "Behavioral log writes by sink and result", "sink", "result")
	m.queueSize = m.gauge("queue_size", "Current size of the log queue (backlog indicator)")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum log queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of log entries enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of log entries dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of log entries dropped at enqueue")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Time entries spend in the log queue", m.histogramBuckets)
	m.workerCount = m.gauge("worker_count", "Configured number of log workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of log workers currently writing")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Log sink write latency", m.histogramBuckets)
	m.workerErrorRate = m.counter("worker_errors_total", "Total number of failed log writes")

	m.repositoryRecordsTotal = m.gauge("repository_records_total", "Number of behavioral log records held by the store")
	m.repositoryUpdateLatency = m.histogram("repository_update_latency_milliseconds", "Store append latency in milliseconds", m.histogramBuckets)
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds", "Store query latency in milliseconds", m.histogramBuckets)

	auto := promauto.With(m.registry)
	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component",
		"component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint",
		"endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// Scan metrics.

// RecordScanStarted increments the scans started counter.
func RecordScanStarted() {
	if !active() {
		return
	}
	globalManager.scansStarted.Inc()
}

// RecordScanCompleted counts a finished scan and observes its duration.
func RecordScanCompleted(synthetic bool, durationMs float64) {
	if !active() {
		return
	}
	source := "device"
	if synthetic {
		source = "synthetic"
	}
	globalManager.scansCompleted.WithLabelValues(source).Inc()
	globalManager.scanDuration.Observe(durationMs)
}

// RecordScanFallback increments the synthetic fallback counter.
func RecordScanFallback() {
	if !active() {
		return
	}
	globalManager.scanFallbacks.Inc()
}

// RecordScanCancelled increments the cancelled scans counter.
func RecordScanCancelled() {
	if !active() {
		return
	}
	globalManager.scansCancelled.Inc()
}

// Reading metrics.

// RecordAnxietyScore observes a committed score and sets the current gauge.
func RecordAnxietyScore(score float64) {
	if !active() {
		return
	}
	globalManager.anxietyScore.Observe(score)
	globalManager.currentAnxiety.Set(score)
}

// RecordReadingStatus counts a committed reading by status.
func RecordReadingStatus(status string) {
	if !active() {
		return
	}
	globalManager.readingsByState.WithLabelValues(status).Inc()
}

// UpdateHistorySize sets the number of readings held in history.
func UpdateHistorySize(size int) {
	if !active() {
		return
	}
	globalManager.historySize.Set(float64(size))
}

// Agent metrics.

// RecordAgentRequest counts an agent exchange by outcome and observes its latency.
func RecordAgentRequest(outcome string, latencyMs float64) {
	if !active() {
		return
	}
	globalManager.agentRequests.WithLabelValues(outcome).Inc()
	globalManager.agentRequestDuration.Observe(latencyMs)
}

// Log pipeline metrics.

// RecordLogWrite counts a sink write by result (ok or error).
func RecordLogWrite(sink, result string) {
	if !active() {
		return
	}
	globalManager.logWrites.WithLabelValues(sink, result).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if !active() {
		return
	}
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	if !active() {
		return
	}
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	if !active() {
		return
	}
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if !active() {
		return
	}
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if !active() {
		return
	}
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	if !active() {
		return
	}
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	if !active() {
		return
	}
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	if !active() {
		return
	}
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	if !active() {
		return
	}
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if !active() {
		return
	}
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	if !active() {
		return
	}
	globalManager.workerErrorRate.Inc()
}

// Repository metrics.

// UpdateRepositoryRecordsTotal sets the number of stored records.
func UpdateRepositoryRecordsTotal(count int) {
	if !active() {
		return
	}
	globalManager.repositoryRecordsTotal.Set(float64(count))
}

// RecordRepositoryUpdateLatency records repository update operation latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	if !active() {
		return
	}
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records repository query operation latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	if !active() {
		return
	}
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !active() {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !active() {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error metrics.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !active() {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !active() {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets the heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !active() {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if !active() {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// Collection control.

// active reports whether the global helpers record anything.
func active() bool {
	return globalManager.enabled.Load()
}

// SetEnabled turns recording through the global helpers on or off. Collectors
// stay registered, so /healthz keeps serving the last values.
func SetEnabled(enabled bool) {
	globalManager.enabled.Store(enabled)
}

// Enabled reports whether the global helpers are recording.
func Enabled() bool {
	return active()
}

// SetRefreshInterval sets how often polled gauges are refreshed. Non-positive
// values are ignored.
func SetRefreshInterval(interval time.Duration) {
	if interval > 0 {
		globalManager.refreshInterval.Store(int64(interval))
	}
}

// RefreshInterval returns how often polled gauges (memory, goroutines, queue
// depth) should be refreshed.
func RefreshInterval() time.Duration {
	return time.Duration(globalManager.refreshInterval.Load())
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
