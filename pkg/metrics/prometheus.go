// Package metrics provides Prometheus metrics for the contest service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus metric the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Contest metrics
	picksSubmitted prometheus.Counter
	pickCount      prometheus.Gauge
	oddsUpdates    prometheus.Counter

	// Sync metrics
	syncRuns        prometheus.Counter
	syncFailures    prometheus.Counter
	syncApplied     prometheus.Counter
	syncDuration    prometheus.Histogram
	syncLastUnix    prometheus.Gauge
	syncLastApplied prometheus.Gauge

	// Live-sync metrics
	notificationsDelivered *prometheus.CounterVec
	notificationsCoalesced *prometheus.CounterVec
	subscriberCount        prometheus.Gauge
	websocketClients       prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
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
		namespace:        "envelope",
		subsystem:        "contest",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.picksSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "picks_submitted_total",
		Help:      "Total number of picks accepted into the ledger",
	})
	m.pickCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "picks",
		Help:      "Current number of live picks",
	})
	m.oddsUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "odds_updates_total",
		Help:      "Total number of accepted odds upserts",
	})

	m.syncRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_runs_total",
		Help:      "Total number of completed market sync runs",
	})
	m.syncFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_failures_total",
		Help:      "Total number of sync runs that failed before applying anything",
	})
	m.syncApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_markets_applied_total",
		Help:      "Total number of market matches applied to the odds store",
	})
	m.syncDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_duration_seconds",
		Help:      "Histogram of market sync run duration",
		Buckets:   m.histogramBuckets,
	})
	m.syncLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_last_timestamp_seconds",
		Help:      "Unix time of the last completed sync run",
	})
	m.syncLastApplied = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_last_applied",
		Help:      "Markets applied by the last completed sync run",
	})

	m.notificationsDelivered = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notifications_delivered_total",
		Help:      "Change notifications delivered to subscribers",
	}, []string{"topic"})
	m.notificationsCoalesced = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notifications_coalesced_total",
		Help:      "Change notifications merged into an already pending signal",
	}, []string{"topic"})
	m.subscriberCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "subscribers",
		Help:      "Current number of bus subscribers",
	})
	m.websocketClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "websocket_clients",
		Help:      "Current number of connected live-feed clients",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_bytes",
		Help:      "Current allocated heap bytes",
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutines",
		Help:      "Current number of goroutines",
	})
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers against the global manager.

// RecordPickSubmitted counts one accepted pick.
func RecordPickSubmitted() { globalManager.picksSubmitted.Inc() }

// UpdatePickCount sets the live pick gauge.
func UpdatePickCount(n int) { globalManager.pickCount.Set(float64(n)) }

// RecordOddsUpdate counts one accepted odds upsert.
func RecordOddsUpdate() { globalManager.oddsUpdates.Inc() }

// RecordSyncRun records one completed sync run.
func RecordSyncRun(applied int, d time.Duration) {
	globalManager.syncRuns.Inc()
	globalManager.syncApplied.Add(float64(applied))
	globalManager.syncDuration.Observe(d.Seconds())
	globalManager.syncLastUnix.SetToCurrentTime()
	globalManager.syncLastApplied.Set(float64(applied))
}

// RecordSyncFailure counts one failed sync run.
func RecordSyncFailure() { globalManager.syncFailures.Inc() }

// RecordNotificationDelivered counts one delivered change signal.
func RecordNotificationDelivered(topic string) {
	globalManager.notificationsDelivered.WithLabelValues(topic).Inc()
}

// RecordNotificationCoalesced counts one merged change signal.
func RecordNotificationCoalesced(topic string) {
	globalManager.notificationsCoalesced.WithLabelValues(topic).Inc()
}

// UpdateSubscriberCount sets the bus subscriber gauge.
func UpdateSubscriberCount(n int) { globalManager.subscriberCount.Set(float64(n)) }

// UpdateWebsocketClients sets the live-feed client gauge.
func UpdateWebsocketClients(n int) { globalManager.websocketClients.Set(float64(n)) }

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes one HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

// UpdateSystemMemoryUsage sets the heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(n int) { globalManager.systemGoroutineCount.Set(float64(n)) }
