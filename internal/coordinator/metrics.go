package coordinator

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics instruments the router loop the way ghjramos-aistore instruments
// its data-movement paths: a handful of counters and a gauge, served on an
// independent registry so a coordinator can run without ever touching the
// global default one.
type Metrics struct {
	registry *prometheus.Registry

	FramesSent    prometheus.Counter
	SendAttempts  prometheus.Counter
	Unreachable   prometheus.Counter
	Handovers     prometheus.Counter
	WorkersActive prometheus.Gauge
}

// NewMetrics builds a fresh, independently-registered Metrics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "turtlemesh", Subsystem: "coordinator",
			Name: "frames_sent_total", Help: "Reliable requests issued to workers.",
		}),
		SendAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "turtlemesh", Subsystem: "coordinator",
			Name: "send_attempts_total", Help: "Transmission attempts across all reliable sends, including retries.",
		}),
		Unreachable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "turtlemesh", Subsystem: "coordinator",
			Name: "unreachable_total", Help: "Reliable sends that exhausted retries without a matching reply.",
		}),
		Handovers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "turtlemesh", Subsystem: "coordinator",
			Name: "handovers_total", Help: "HANDOVER replies processed during streaming.",
		}),
		WorkersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "turtlemesh", Subsystem: "coordinator",
			Name: "workers_active", Help: "Workers still marked active in the node table.",
		}),
	}

	reg.MustRegister(m.FramesSent, m.SendAttempts, m.Unreachable, m.Handovers, m.WorkersActive)
	return m
}

// Handler exposes the registry for an optional -metrics-addr HTTP listener.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
