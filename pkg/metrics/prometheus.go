package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ratingDeltaBuckets cover the default clamp of 48 in both directions.
var ratingDeltaBuckets = []float64{-48, -36, -24, -12, -6, 0, 6, 12, 24, 36, 48} //nolint:gochecknoglobals // bucket layout

// Manager manages all Prometheus metrics for the Meeplelytics service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Pairing
	roundsGenerated prometheus.Counter
	tablesGenerated prometheus.Counter
	repeatedPairs   prometheus.Histogram
	pairingLatency  prometheus.Histogram

	// Settlement
	resultsSubmitted  prometheus.Counter
	resultsDuplicate  prometheus.Counter
	tablesSettled     prometheus.Counter
	settlementErrors  prometheus.Counter
	settlementLatency prometheus.Histogram
	ratingDelta       prometheus.Histogram
	ratingClamped     prometheus.Counter
	bonusesApplied    *prometheus.CounterVec

	// Scale
	totalPlayers     prometheus.Gauge
	totalTournaments prometheus.Gauge

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "meeple",
		subsystem:        "tournament",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.roundsGenerated = auto.NewCounter(m.counter("rounds_generated_total", "Total number of rounds generated"))
	m.tablesGenerated = auto.NewCounter(m.counter("tables_generated_total", "Total number of tables generated"))
	m.repeatedPairs = auto.NewHistogram(m.histogram("round_repeated_pairs", "Repeated player pairs per generated round",
		[]float64{0, 1, 2, 4, 8, 16, 32, 64}))
	m.pairingLatency = auto.NewHistogram(m.histogram("pairing_latency_milliseconds", "Round generation latency in milliseconds", m.histogramBuckets))

	m.resultsSubmitted = auto.NewCounter(m.counter("results_submitted_total", "Total number of accepted table result submissions"))
	m.resultsDuplicate = auto.NewCounter(m.counter("results_duplicate_total", "Total number of rejected repeat submissions for a table"))
	m.tablesSettled = auto.NewCounter(m.counter("tables_settled_total", "Total number of tables settled"))
	m.settlementErrors = auto.NewCounter(m.counter("settlement_errors_total", "Total number of failed table settlements"))
	m.settlementLatency = auto.NewHistogram(m.histogram("settlement_latency_milliseconds", "Table settlement latency in milliseconds", m.histogramBuckets))
	m.ratingDelta = auto.NewHistogram(m.histogram("rating_delta", "Distribution of per-player rating deltas", ratingDeltaBuckets))
	m.ratingClamped = auto.NewCounter(m.counter("rating_clamped_total", "Total number of rating deltas that hit the clamp"))
	m.bonusesApplied = auto.NewCounterVec(m.counter("bonuses_applied_total", "Bonus rules applied by name"), []string{"bonus"})

	m.totalPlayers = auto.NewGauge(m.gauge("players", "Number of registered players"))
	m.totalTournaments = auto.NewGauge(m.gauge("tournaments", "Number of tournaments"))

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Current number of queued settlements"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Settlement queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gauge("queue_utilization_ratio", "Settlement queue fill ratio"))
	m.queueEnqueued = auto.NewCounter(m.counter("queue_enqueued_total", "Total number of settlements enqueued"))
	m.queueDequeued = auto.NewCounter(m.counter("queue_dequeued_total", "Total number of settlements dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counter("queue_enqueue_errors_total", "Total number of settlements rejected by backpressure"))

	m.workerCount = auto.NewGauge(m.gauge("worker_count", "Configured number of settlement workers"))
	m.workerActiveCount = auto.NewGauge(m.gauge("worker_active_count", "Workers currently settling a table"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogram("worker_processing_latency_milliseconds", "Per-message worker latency in milliseconds", m.histogramBuckets))
	m.workerErrors = auto.NewCounter(m.counter("worker_errors_total", "Total number of worker processing errors"))

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counter("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counter("errors_by_endpoint_total", "Errors by HTTP endpoint"),
		[]string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordRoundGenerated records a generated round.
func (m *Manager) RecordRoundGenerated(tables, repeatedPairs int, latencyMs float64) {
	m.roundsGenerated.Inc()
	m.tablesGenerated.Add(float64(tables))
	m.repeatedPairs.Observe(float64(repeatedPairs))
	m.pairingLatency.Observe(latencyMs)
}

// RecordTableSettled records a settled table and its rating deltas.
func (m *Manager) RecordTableSettled(latencyMs float64, deltas []int, clamp int, bonuses []string) {
	m.tablesSettled.Inc()
	m.settlementLatency.Observe(latencyMs)
	for _, d := range deltas {
		m.ratingDelta.Observe(float64(d))
		if d == clamp || d == -clamp {
			m.ratingClamped.Inc()
		}
	}
	for _, b := range bonuses {
		m.bonusesApplied.WithLabelValues(b).Inc()
	}
}

// RecordRoundGenerated records a generated round on the global manager.
func RecordRoundGenerated(tables, repeatedPairs int, latencyMs float64) {
	globalManager.RecordRoundGenerated(tables, repeatedPairs, latencyMs)
}

// RecordTableSettled records a settled table on the global manager.
func RecordTableSettled(latencyMs float64, deltas []int, clamp int, bonuses []string) {
	globalManager.RecordTableSettled(latencyMs, deltas, clamp, bonuses)
}

// RecordResultsSubmitted increments the accepted submissions counter.
func RecordResultsSubmitted() {
	globalManager.resultsSubmitted.Inc()
}

// RecordResultsDuplicate increments the repeat submissions counter.
func RecordResultsDuplicate() {
	globalManager.resultsDuplicate.Inc()
}

// RecordSettlementError increments the failed settlements counter.
func RecordSettlementError() {
	globalManager.settlementErrors.Inc()
}

// UpdateTotalPlayers sets the registered players gauge.
func UpdateTotalPlayers(count int) {
	globalManager.totalPlayers.Set(float64(count))
}

// UpdateTotalTournaments sets the tournaments gauge.
func UpdateTotalTournaments(count int) {
	globalManager.totalTournaments.Set(float64(count))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue fill ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueued counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeued counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the backpressure counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records per-message latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker errors counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error raised by a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error returned by an HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records a GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
