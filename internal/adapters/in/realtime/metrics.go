package realtime

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	TransportWebSocket = "websocket"
	TransportSSE       = "sse"
)

// Metrics owns the service collectors and the registry they live in.
type Metrics struct {
	registry    *prometheus.Registry
	connections *prometheus.GaugeVec
	dropped     *prometheus.CounterVec
	transitions *prometheus.CounterVec
	etaEMA      *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		connections: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "realtime_connections",
				Help: "Open realtime connections",
			},
			[]string{"transport"},
		),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "realtime_dropped_connections_total",
				Help: "Connections dropped because the client read too slowly",
			},
			[]string{"transport"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_transitions_total",
				Help: "Published order and item status changes",
			},
			[]string{"scope", "status"},
		),
		etaEMA: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "order_eta_ema_seconds",
				Help: "Preparation time estimate of a tenant as of its last placed order",
			},
			[]string{"tenant"},
		),
	}

	m.registry.MustRegister(m.connections, m.dropped, m.transitions, m.etaEMA)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Connected(transport string)    { m.connections.WithLabelValues(transport).Inc() }
func (m *Metrics) Disconnected(transport string) { m.connections.WithLabelValues(transport).Dec() }
func (m *Metrics) Dropped(transport string)      { m.dropped.WithLabelValues(transport).Inc() }

func (m *Metrics) Transition(scope, status string) {
	m.transitions.WithLabelValues(scope, status).Inc()
}

func (m *Metrics) ETA(tenant string, seconds float64) {
	m.etaEMA.WithLabelValues(tenant).Set(seconds)
}
