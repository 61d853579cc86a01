package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// prometheusCollector keeps per-search counts like collector and mirrors
// them into process-wide Prometheus series.
type prometheusCollector struct {
	collector

	iterations   *prometheus.CounterVec
	rollouts     *prometheus.CounterVec
	rolloutSteps prometheus.Histogram
	searches     *prometheus.HistogramVec
	treeReuse    *prometheus.CounterVec
}

// NewPrometheusCollector registers the search series with reg.
func NewPrometheusCollector(reg prometheus.Registerer) Collector {
	factory := promauto.With(reg)
	c := &prometheusCollector{
		iterations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uct_search_iterations_total",
			Help: "Completed select/expand/simulate/backpropagate iterations.",
		}, []string{"strategy"}),
		rollouts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uct_rollouts_total",
			Help: "Rollouts by how they ended.",
		}, []string{"outcome"}),
		rolloutSteps: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "uct_rollout_steps",
			Help:    "Decision process steps taken per rollout.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512 steps
		}),
		searches: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "uct_search_duration_seconds",
			Help:    "Wall time of a complete search.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}, []string{"strategy"}),
		treeReuse: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uct_search_tree_total",
			Help: "Searches by whether they started from a reused subtree.",
		}, []string{"tree"}),
	}
	c.isTreeReset.Store(true)
	return c
}

func (m *prometheusCollector) AddEpisode() {
	m.collector.AddEpisode()
	m.iterations.WithLabelValues(m.strategy).Inc()
}

func (m *prometheusCollector) AddRollout(steps int, full bool) {
	m.collector.AddRollout(steps, full)
	outcome := "cutoff"
	if full {
		outcome = "terminal"
	}
	m.rollouts.WithLabelValues(outcome).Inc()
	m.rolloutSteps.Observe(float64(steps))
}

func (m *prometheusCollector) Complete() SearchMetric {
	metric := m.collector.Complete()
	m.searches.WithLabelValues(metric.Strategy).Observe(metric.Duration.Seconds())
	tree := "reused"
	if metric.IsTreeReset {
		tree = "reset"
	}
	m.treeReuse.WithLabelValues(tree).Inc()
	return metric
}
