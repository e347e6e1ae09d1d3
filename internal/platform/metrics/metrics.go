// Package metrics exposes the service's Prometheus instruments.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels for ledger operations.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds every instrument, registered on its own registry so tests
// can build independent instances.
type Metrics struct {
	registry *prometheus.Registry

	ledgerOps      *prometheus.CounterVec
	ledgerDuration *prometheus.HistogramVec
	toggles        *prometheus.CounterVec
	statsDrift     *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New creates the instruments on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ledgerOps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "habit_ledger_operations_total",
			Help: "Ledger operations by operation and result",
		}, []string{"operation", "result"}),
		ledgerDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "habit_ledger_operation_duration_seconds",
			Help:    "Ledger operation duration in seconds, including the snapshot reload",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"operation"}),
		toggles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "habit_completion_toggles_total",
			Help: "Committed completion toggles by direction",
		}, []string{"direction"}),
		statsDrift: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "habit_stats_drift_total",
			Help: "Stats fields found inconsistent with the ledger during a recompute",
		}, []string{"field"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "habit_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "habit_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveOperation records the outcome and duration of a ledger operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.ledgerOps.WithLabelValues(operation, result).Inc()
	m.ledgerDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveToggle counts a committed toggle.
func (m *Metrics) ObserveToggle(completed bool) {
	direction := "undo"
	if completed {
		direction = "complete"
	}
	m.toggles.WithLabelValues(direction).Inc()
}

// ObserveDrift counts each drifted stats field.
func (m *Metrics) ObserveDrift(fields []string) {
	for _, f := range fields {
		m.statsDrift.WithLabelValues(f).Inc()
	}
}

// ObserveHTTP records a finished HTTP request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
