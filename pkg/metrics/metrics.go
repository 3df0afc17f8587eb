// Package metrics exposes the service's prometheus collectors. Each Metrics
// owns its registry so tests and multiple instances never collide on the
// default registerer. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "raiox"

// Metrics groups every collector the service updates.
type Metrics struct {
	registry *prometheus.Registry

	refreshes       *prometheus.CounterVec
	droppedRows     prometheus.Counter
	snapshotRecords prometheus.Gauge
	snapshotAge     prometheus.Gauge
	intents         *prometheus.CounterVec
	completions     *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_refresh_total",
			Help:      "Sheet refresh attempts by result.",
		}, []string{"result"}),
		droppedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheet_rows_dropped_total",
			Help:      "Sheet rows discarded for lacking a store code.",
		}),
		snapshotRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_records",
			Help:      "Records in the current snapshot.",
		}),
		snapshotAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_fetched_timestamp_seconds",
			Help:      "Unix time the current snapshot was fetched.",
		}),
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_intent_total",
			Help:      "Chat messages by classified intent.",
		}, []string{"intent"}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_requests_total",
			Help:      "Completion service calls by result.",
		}, []string{"result"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.refreshes,
		m.droppedRows,
		m.snapshotRecords,
		m.snapshotAge,
		m.intents,
		m.completions,
		m.httpDuration,
	)
	return m
}

// Registry returns the underlying registry, for tests and custom gatherers.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RefreshSucceeded records a successful refresh and the new snapshot shape.
func (m *Metrics) RefreshSucceeded(records, dropped int, fetchedAt time.Time) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues("success").Inc()
	m.droppedRows.Add(float64(dropped))
	m.snapshotRecords.Set(float64(records))
	m.snapshotAge.Set(float64(fetchedAt.Unix()))
}

// RefreshFailed records a failed refresh.
func (m *Metrics) RefreshFailed() {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues("failure").Inc()
}

// IntentClassified counts one routed chat message.
func (m *Metrics) IntentClassified(intent string) {
	if m == nil {
		return
	}
	m.intents.WithLabelValues(intent).Inc()
}

// CompletionFinished counts one completion call; result is "success", "error" or "timeout".
func (m *Metrics) CompletionFinished(result string) {
	if m == nil {
		return
	}
	m.completions.WithLabelValues(result).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(route, status).Observe(elapsed.Seconds())
}
