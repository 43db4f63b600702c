// Package telemetry holds the Prometheus metrics for example operations.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric exported by the service.
const Namespace = "example_api"

// Operation outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Metrics tracks example service operations.
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	SlowOperations    *prometheus.CounterVec
}

// NewMetrics registers the operation metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OperationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "examples_operations_total",
			Help:      "Example operations by operation and outcome",
		}, []string{"operation", "outcome"}),

		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "examples_operation_duration_seconds",
			Help:      "Example operation latency including the transaction",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"operation"}),

		SlowOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "examples_slow_operations_total",
			Help:      "Example operations slower than the configured threshold",
		}, []string{"operation"}),
	}
}

// Observe records one finished operation. Safe on a nil receiver.
func (m *Metrics) Observe(operation, outcome string, elapsed time.Duration, slow bool) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if slow {
		m.SlowOperations.WithLabelValues(operation).Inc()
	}
}
