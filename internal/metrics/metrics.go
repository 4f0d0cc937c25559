// Package metrics exposes engine counters in the Prometheus exposition format.
//
// All collectors live on a private registry so that tests can create as many
// independent instances as they need and the daemon never exports collectors
// registered by third-party packages on the default registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric names.
const (
	MetricRecordsTotal        = "orderpace_records_total"
	MetricTasksTotal          = "orderpace_tasks_total"
	MetricTasksRunning        = "orderpace_tasks_running"
	MetricRemoteCallSeconds   = "orderpace_remote_call_duration_seconds"
	MetricSubmissionsRejected = "orderpace_submissions_rejected_total"
)

// Metrics holds every collector of the daemon.
type Metrics struct {
	registry *prometheus.Registry

	recordsTotal        *prometheus.CounterVec
	tasksTotal          *prometheus.CounterVec
	tasksRunning        prometheus.Gauge
	remoteCallSeconds   *prometheus.HistogramVec
	submissionsRejected *prometheus.CounterVec
}

// New creates a Metrics instance on a fresh registry. Go runtime and process
// collectors are included.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRecordsTotal,
				Help: "Records processed, by outcome.",
			},
			[]string{"outcome"},
		),
		tasksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricTasksTotal,
				Help: "Tasks that reached a terminal status.",
			},
			[]string{"status"},
		),
		tasksRunning: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: MetricTasksRunning,
				Help: "Tasks currently being processed.",
			},
		),
		remoteCallSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricRemoteCallSeconds,
				Help:    "Latency of calls to the store API.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"call", "result"},
		),
		submissionsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricSubmissionsRejected,
				Help: "Batch submissions refused before a task was created.",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(
		m.recordsTotal,
		m.tasksTotal,
		m.tasksRunning,
		m.remoteCallSeconds,
		m.submissionsRejected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler serving the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordOutcome counts one processed record.
func (m *Metrics) RecordOutcome(outcome string) {
	m.recordsTotal.WithLabelValues(outcome).Inc()
}

// TaskStarted marks a task as running.
func (m *Metrics) TaskStarted() {
	m.tasksRunning.Inc()
}

// TaskFinished marks a task as no longer running and counts its final status.
func (m *Metrics) TaskFinished(status string) {
	m.tasksRunning.Dec()
	m.tasksTotal.WithLabelValues(status).Inc()
}

// ObserveRemoteCall records the latency of a store API call.
func (m *Metrics) ObserveRemoteCall(call string, ok bool, d time.Duration) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.remoteCallSeconds.WithLabelValues(call, result).Observe(d.Seconds())
}

// SubmissionRejected counts a batch refused at submission time.
func (m *Metrics) SubmissionRejected(reason string) {
	m.submissionsRejected.WithLabelValues(reason).Inc()
}
