package graph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains store-level metrics for graph statement execution.
type Metrics struct {
	QueriesTotal  *prometheus.CounterVec
	QueryDuration prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with all store metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "twigslot",
				Subsystem: "graph",
				Name:      "queries_total",
				Help:      "Total number of graph statements executed",
			},
			[]string{"status"},
		),

		QueryDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "twigslot",
				Subsystem: "graph",
				Name:      "query_duration_seconds",
				Help:      "Graph statement round-trip duration",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.QueriesTotal, m.QueryDuration} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveQuery records one statement execution.
func (m *Metrics) ObserveQuery(elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.QueriesTotal.WithLabelValues(status).Inc()
	m.QueryDuration.Observe(elapsed.Seconds())
}
