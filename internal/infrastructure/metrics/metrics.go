package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"assistant/internal/domain/record"
)

const namespace = "assistant"

// Result label values.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// Metrics collects record store operation counters in a private registry.
// The CLI has no HTTP endpoint; the registry is written in the node_exporter
// textfile format instead.
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Record store operations by collection, operation and result.",
		}, []string{"collection", "op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Duration of record store load-mutate-save cycles.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"collection", "op"}),
	}
	m.registry.MustRegister(m.operations, m.duration)
	return m
}

// ObserveOperation implements record.Observer.
func (m *Metrics) ObserveOperation(collection, op string, err error, elapsed time.Duration) {
	m.operations.WithLabelValues(collection, op, result(err)).Inc()
	m.duration.WithLabelValues(collection, op).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteFile writes the current values to path in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, record.ErrNotFound):
		return ResultNotFound
	default:
		return ResultError
	}
}
