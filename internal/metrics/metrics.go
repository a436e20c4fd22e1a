// Package metrics exposes Prometheus instrumentation for downstream probes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "backend_integration"

const (
	resultOK      = "ok"
	resultFailure = "failure"
	resultSkipped = "not_attempted"
)

// Metrics holds the probe collectors and the registry they are registered with.
// A dedicated registry is used so that multiple instances can coexist (e.g. in tests).
type Metrics struct {
	registry *prometheus.Registry

	probeDuration *prometheus.HistogramVec
	probeUp       *prometheus.GaugeVec
	probeTotal    *prometheus.CounterVec
}

// New creates a Metrics instance backed by a fresh registry, including Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		probeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Round-trip time of downstream connectivity probes",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"service"}),
		probeUp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "probe_up",
			Help:      "Whether the last probe of a downstream service succeeded (1) or not (0)",
		}, []string{"service"}),
		probeTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probe_total",
			Help:      "Total downstream probes by outcome",
		}, []string{"service", "result"}),
	}
}

// ObserveProbe implements contracts.ProbeRecorder.
func (m *Metrics) ObserveProbe(service string, ok bool, elapsed *time.Duration) {
	up := 0.0
	result := resultFailure
	if ok {
		up = 1
		result = resultOK
	}
	if elapsed == nil {
		result = resultSkipped
	} else {
		m.probeDuration.WithLabelValues(service).Observe(elapsed.Seconds())
	}

	m.probeUp.WithLabelValues(service).Set(up)
	m.probeTotal.WithLabelValues(service, result).Inc()
}

// Handler returns the HTTP handler serving this instance's registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
