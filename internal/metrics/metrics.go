package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	globalMetrics *Metrics
	globalMu      sync.RWMutex
)

// Metrics holds all Prometheus metrics for the console
type Metrics struct {
	// API client
	APIRequestsTotal          *prometheus.CounterVec
	APIRequestDurationSeconds *prometheus.HistogramVec
	APIErrorsTotal            *prometheus.CounterVec

	// Entity stores
	StoreFetchesTotal   *prometheus.CounterVec
	StoreMutationsTotal *prometheus.CounterVec

	// CSV ingestion
	CSVRowsTotal    *prometheus.CounterVec
	CSVImportsTotal *prometheus.CounterVec

	// Session
	LoginsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_api_requests_total",
				Help: "Total number of backend API requests",
			},
			[]string{"method", "route", "status"},
		),
		APIRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "console_api_request_duration_seconds",
				Help:    "Backend API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		APIErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_api_errors_total",
				Help: "Total number of failed API requests by error kind",
			},
			[]string{"kind"},
		),

		StoreFetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_store_fetches_total",
				Help: "Total number of page fetches by store and result",
			},
			[]string{"store", "result"},
		),
		StoreMutationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_store_mutations_total",
				Help: "Total number of mutations by store, operation and result",
			},
			[]string{"store", "op", "result"},
		),

		CSVRowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_csv_rows_total",
				Help: "Total number of parsed CSV rows by classification",
			},
			[]string{"status"},
		),
		CSVImportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_csv_imports_total",
				Help: "Total number of CSV imports by outcome",
			},
			[]string{"result"},
		),

		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_logins_total",
				Help: "Total number of login attempts by result",
			},
			[]string{"result"},
		),

		registry: reg,
	}

	reg.MustRegister(
		m.APIRequestsTotal,
		m.APIRequestDurationSeconds,
		m.APIErrorsTotal,
		m.StoreFetchesTotal,
		m.StoreMutationsTotal,
		m.CSVRowsTotal,
		m.CSVImportsTotal,
		m.LoginsTotal,
	)

	return m
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps the registry in the text exposition format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// SetGlobal sets the global metrics instance
func SetGlobal(m *Metrics) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalMetrics = m
}

// Global returns the global metrics instance
func Global() *Metrics {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalMetrics
}

// ObserveAPIRequest records one completed round trip. status is "error"
// when no response was received.
func ObserveAPIRequest(method, path, status string, d time.Duration) {
	m := Global()
	if m != nil {
		route := NormalizeRoute(path)
		m.APIRequestsTotal.WithLabelValues(method, route, status).Inc()
		m.APIRequestDurationSeconds.WithLabelValues(method, route).Observe(d.Seconds())
	}
}

// IncAPIErrors increments the API error counter
func IncAPIErrors(kind string) {
	m := Global()
	if m != nil {
		m.APIErrorsTotal.WithLabelValues(kind).Inc()
	}
}

// IncStoreFetch counts a fetch outcome: success, error or superseded
func IncStoreFetch(store, result string) {
	m := Global()
	if m != nil {
		m.StoreFetchesTotal.WithLabelValues(store, result).Inc()
	}
}

// IncStoreMutation counts a mutation outcome
func IncStoreMutation(store, op, result string) {
	m := Global()
	if m != nil {
		m.StoreMutationsTotal.WithLabelValues(store, op, result).Inc()
	}
}

// AddCSVRows adds n rows with the given classification
func AddCSVRows(status string, n int) {
	m := Global()
	if m != nil && n > 0 {
		m.CSVRowsTotal.WithLabelValues(status).Add(float64(n))
	}
}

// IncCSVImport counts an import outcome
func IncCSVImport(result string) {
	m := Global()
	if m != nil {
		m.CSVImportsTotal.WithLabelValues(result).Inc()
	}
}

// IncLogin counts a login attempt
func IncLogin(result string) {
	m := Global()
	if m != nil {
		m.LoginsTotal.WithLabelValues(result).Inc()
	}
}
