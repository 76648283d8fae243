package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// CallMetrics counts and times calls partitioned by a single label, for
// example the instruction name of a program or the outcome of a transaction.
type CallMetrics struct {
	label     string
	counts    *prometheus.CounterVec
	latencies *prometheus.HistogramVec
}

// NewCallMetrics registers <subsystem>_total and
// <subsystem>_latency_seconds. Registering the same subsystem twice returns
// collectors backed by the already registered ones.
func NewCallMetrics(subsystem, label, help string) *CallMetrics {
	counts := registerOnce(prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: subsystem + "_total",
			Help: help,
		},
		[]string{label, "result"},
	)).(*prometheus.CounterVec)

	latencies := registerOnce(prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    subsystem + "_latency_seconds",
			Help:    help + " (latency)",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{label},
	)).(*prometheus.HistogramVec)

	return &CallMetrics{
		label:     label,
		counts:    counts,
		latencies: latencies,
	}
}

// Observe records one call of name that took elapsed and ended with err.
func (m *CallMetrics) Observe(name string, elapsed time.Duration, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}

	m.counts.WithLabelValues(name, result).Inc()
	m.latencies.WithLabelValues(name).Observe(elapsed.Seconds())
}

func registerOnce(c prometheus.Collector) prometheus.Collector {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}
