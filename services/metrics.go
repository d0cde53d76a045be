// ABOUTME: Prometheus instrumentation for service calls
// ABOUTME: Counts operations by outcome and records their duration
package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records service calls. A nil *Metrics records nothing.
type Metrics struct {
	ops     *prometheus.CounterVec
	seconds *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg when it is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crmdash",
			Subsystem: "service",
			Name:      "operations_total",
			Help:      "Service operations by entity, operation and outcome.",
		}, []string{"entity", "op", "outcome"}),
		seconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crmdash",
			Subsystem: "service",
			Name:      "operation_seconds",
			Help:      "Wall time of service operations including simulated latency.",
			Buckets:   []float64{.001, .01, .05, .1, .2, .3, .4, .5, 1, 2},
		}, []string{"entity", "op"}),
	}
	if reg != nil {
		reg.MustRegister(m.ops, m.seconds)
	}
	return m
}

func (m *Metrics) observe(entity string, op Op, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ops.WithLabelValues(entity, string(op), result).Inc()
	m.seconds.WithLabelValues(entity, string(op)).Observe(elapsed.Seconds())
}
