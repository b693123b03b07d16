// Package metrics exposes the Prometheus registry and the counters the server
// and the audit pipeline report into.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process-wide collectors. Constructed once at startup.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal     *prometheus.CounterVec
	AuditDroppedTotal *prometheus.CounterVec
}

// New returns a Metrics with a fresh registry and all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "horizon_http_requests_total",
			Help: "HTTP requests handled, by method and status class.",
		}, []string{"method", "status"}),
		AuditDroppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "horizon_audit_events_dropped_total",
			Help: "Events dropped because a pipeline queue was full.",
		}, []string{"queue"}),
	}
	reg.MustRegister(m.RequestsTotal, m.AuditDroppedTotal)
	return m
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
