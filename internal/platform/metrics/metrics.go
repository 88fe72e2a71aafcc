// Package metrics agrupa los collectors Prometheus del servicio.
// Cada instancia usa su propio Registry para que los tests no choquen con el global.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	DosesLogged         prometheus.Counter
	InteractionWarnings *prometheus.CounterVec
	CatalogRequests     *prometheus.CounterVec
	StoreWrites         *prometheus.CounterVec
	ActiveDoses         prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		DosesLogged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "doses_logged_total",
			Help: "Dose log entries created.",
		}),
		InteractionWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interaction_warnings_total",
			Help: "Interaction findings reported to callers, by severity.",
		}, []string{"severity"}),
		CatalogRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Substance catalog calls by operation and result.",
		}, []string{"op", "result"}),
		StoreWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "store_writes_total",
			Help: "Durable key-value writes by namespace and result.",
		}, []string{"namespace", "result"}),
		ActiveDoses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "active_doses",
			Help: "Doses inside their active window at the last recompute.",
		}),
	}

	reg.MustRegister(
		m.DosesLogged,
		m.InteractionWarnings,
		m.CatalogRequests,
		m.StoreWrites,
		m.ActiveDoses,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry expone el registry (tests con testutil).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler sirve /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveCatalog(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.CatalogRequests.WithLabelValues(op, result).Inc()
}

func (m *Metrics) ObserveStoreWrite(namespace string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.StoreWrites.WithLabelValues(namespace, result).Inc()
}

func (m *Metrics) ObserveWarning(severity string) {
	if m == nil {
		return
	}
	m.InteractionWarnings.WithLabelValues(severity).Inc()
}

func (m *Metrics) ObserveDoseLogged() {
	if m == nil {
		return
	}
	m.DosesLogged.Inc()
}

func (m *Metrics) SetActiveDoses(n int) {
	if m == nil {
		return
	}
	m.ActiveDoses.Set(float64(n))
}
