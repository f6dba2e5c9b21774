package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records stage call outcomes on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Calls    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewMetrics creates and registers the pipeline collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	calls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_calls_total",
			Help:      "Stage requests by outcome",
		},
		[]string{"stage", "outcome"},
	)

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_call_duration_seconds",
			Help:      "Stage request duration in seconds",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 180, 240, 300},
		},
		[]string{"stage"},
	)

	inFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_calls_in_flight",
			Help:      "Stage requests currently waiting on a response",
		},
	)

	registry.MustRegister(calls, duration, inFlight)

	return &Metrics{
		registry: registry,
		Calls:    calls,
		Duration: duration,
		InFlight: inFlight,
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) start() {
	if m == nil {
		return
	}
	m.InFlight.Inc()
}

func (m *Metrics) done(stage Stage, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.InFlight.Dec()
	m.Calls.WithLabelValues(string(stage), outcome).Inc()
	m.Duration.WithLabelValues(string(stage)).Observe(d.Seconds())
}
