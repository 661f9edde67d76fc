package discovery

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names exported by the discovery engine.
const (
	MetricQueriesTotal  = "discovery_queries_total"
	MetricResultCount   = "discovery_result_count"
	MetricQueryDuration = "discovery_query_duration_seconds"
)

// Metrics instruments coordinator queries. All operations are
// thread-safe; a nil *Metrics is a no-op so the pure core can run
// uninstrumented in tests.
type Metrics struct {
	queriesTotal  *prometheus.CounterVec
	resultCount   prometheus.Histogram
	queryDuration prometheus.Histogram
}

// NewMetrics creates the collectors without registering them; call
// Register to attach them to a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		queriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricQueriesTotal,
				Help: "Total discovery queries by ordering mode",
			},
			[]string{"mode"},
		),
		resultCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricResultCount,
				Help:    "Result list size after filtering and truncation",
				Buckets: []float64{0, 1, 3, 10, 25, 50, 100, 250, 1000},
			},
		),
		queryDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricQueryDuration,
				Help:    "Discovery query duration in seconds",
				Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0},
			},
		),
	}
}

// Register registers all collectors with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.queriesTotal, m.resultCount, m.queryDuration} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observe(mode string, results int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.queriesTotal.WithLabelValues(mode).Inc()
	m.resultCount.Observe(float64(results))
	m.queryDuration.Observe(elapsed.Seconds())
}
