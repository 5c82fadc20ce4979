package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fitplan"

// Registry holds all client metrics.
//
// A nil *Registry is valid and records nothing, so components can take an
// optional registry without guarding every call.
type Registry struct {
	registry *prometheus.Registry

	SessionTransitions   *prometheus.CounterVec
	SessionAuthenticated prometheus.Gauge

	GatewayRequests *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with all client metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	r := &Registry{
		registry: reg,
		SessionTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session state transitions by source and target state.",
		}, []string{"from", "to"}),
		SessionAuthenticated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "authenticated",
			Help:      "1 while a user is logged in, 0 otherwise.",
		}),
		GatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Requests sent to the fitplan service by operation and outcome.",
		}, []string{"op", "outcome"}),
		GatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Latency of requests sent to the fitplan service.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"op"}),
	}

	reg.MustRegister(
		r.SessionTransitions,
		r.SessionAuthenticated,
		r.GatewayRequests,
		r.GatewayDuration,
	)
	return r
}

// ObserveTransition records a session state change.
func (r *Registry) ObserveTransition(from, to string, authenticated bool) {
	if r == nil {
		return
	}
	if from != to {
		r.SessionTransitions.WithLabelValues(from, to).Inc()
	}
	if authenticated {
		r.SessionAuthenticated.Set(1)
	} else {
		r.SessionAuthenticated.Set(0)
	}
}

// ObserveRequest records one gateway request.
// outcome is a short label such as "ok", "2xx", "4xx", "5xx" or "transport".
func (r *Registry) ObserveRequest(op, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.GatewayRequests.WithLabelValues(op, outcome).Inc()
	r.GatewayDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// Handler returns an HTTP handler serving the registry in Prometheus format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
