package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/matzehuels/biotree/pkg/errors"
	"github.com/matzehuels/biotree/pkg/observability"
)

const namespace = "biotree"

// Metrics exports observability events as Prometheus metrics. It implements
// [observability.EditorHooks], [observability.StoreHooks] and
// [observability.HTTPHooks].
type Metrics struct {
	mutations        *prometheus.CounterVec
	mutationDuration *prometheus.HistogramVec
	persists         *prometheus.CounterVec
	snapshotBytes    prometheus.Gauge
	restores         *prometheus.CounterVec

	storeOps     *prometheus.CounterVec
	storeWritten *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        *prometheus.GaugeVec
}

// NewMetrics creates the metric collectors and registers them, along with
// the Go runtime and process collectors, with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "editor", Name: "mutations_total",
			Help: "Editor operations by name and result.",
		}, []string{"op", "result"}),
		mutationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "editor", Name: "mutation_duration_seconds",
			Help:    "Time spent applying editor operations, including persistence.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"op"}),
		persists: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "editor", Name: "persists_total",
			Help: "Snapshot writes by result.",
		}, []string{"result"}),
		snapshotBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "editor", Name: "snapshot_bytes",
			Help: "Size of the last persisted snapshot.",
		}),
		restores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "editor", Name: "restores_total",
			Help: "Snapshot restores by source.",
		}, []string{"source"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "store", Name: "operations_total",
			Help: "Snapshot store lookups and writes by driver.",
		}, []string{"driver", "op"}),
		storeWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "store", Name: "written_bytes_total",
			Help: "Bytes written to the snapshot store by driver.",
		}, []string{"driver"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "API requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "API request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_in_flight",
			Help: "API requests currently being served.",
		}, []string{"method"}),
	}

	reg.MustRegister(
		m.mutations, m.mutationDuration, m.persists, m.snapshotBytes, m.restores,
		m.storeOps, m.storeWritten,
		m.requests, m.requestDuration, m.inFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Install registers m as the global editor, store and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetEditorHooks(m)
	observability.SetStoreHooks(m)
	observability.SetHTTPHooks(m)
}

func (m *Metrics) OnMutation(_ context.Context, op string, d time.Duration, err error) {
	m.mutations.WithLabelValues(op, result(err)).Inc()
	m.mutationDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) OnPersist(_ context.Context, size int, err error) {
	m.persists.WithLabelValues(result(err)).Inc()
	if err == nil {
		m.snapshotBytes.Set(float64(size))
	}
}

func (m *Metrics) OnRestore(_ context.Context, source string) {
	m.restores.WithLabelValues(source).Inc()
}

func (m *Metrics) OnStoreHit(_ context.Context, driver string) {
	m.storeOps.WithLabelValues(driver, "hit").Inc()
}

func (m *Metrics) OnStoreMiss(_ context.Context, driver string) {
	m.storeOps.WithLabelValues(driver, "miss").Inc()
}

func (m *Metrics) OnStoreSet(_ context.Context, driver string, size int) {
	m.storeOps.WithLabelValues(driver, "set").Inc()
	m.storeWritten.WithLabelValues(driver).Add(float64(size))
}

func (m *Metrics) OnRequest(_ context.Context, method, _ string) {
	m.inFlight.WithLabelValues(method).Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.inFlight.WithLabelValues(method).Dec()
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// result labels an outcome by its error code.
func result(err error) string {
	if err == nil {
		return "ok"
	}
	if code := errors.GetCode(err); code != "" {
		return string(code)
	}
	return "error"
}
