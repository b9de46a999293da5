// Package obsmetrics implements server.Observer with Prometheus
// counters/histograms, the per-query and per-customization diagnostics
// spec.md §4.5 calls out as observable.
package obsmetrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"roadrouter/internal/server"
)

var (
	once     sync.Once
	instance *Metrics
)

// Metrics holds the router's Prometheus collectors.
type Metrics struct {
	QueriesTotal       *prometheus.CounterVec
	QueryDuration      prometheus.Histogram
	PotentialDuration  prometheus.Histogram
	UpdateDuration     prometheus.Histogram
	QueuePops          prometheus.Histogram
	QueuePushes        prometheus.Histogram
	RelaxedArcs        prometheus.Histogram
	PotentialStaleHits *prometheus.CounterVec

	CustomizationsTotal   *prometheus.CounterVec
	CustomizationDuration prometheus.Histogram
}

// Init builds the collector set, registering it with the default registry
// exactly once per process.
func Init() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			QueriesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "roadrouter",
					Name:      "queries_total",
					Help:      "Total server queries, partitioned by whether a path was found.",
				},
				[]string{"found"},
			),
			QueryDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "roadrouter",
					Name:      "query_duration_seconds",
					Help:      "End-to-end Server.Query wall time.",
					Buckets:   prometheus.DefBuckets,
				},
			),
			PotentialDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "roadrouter",
					Name:      "potential_init_duration_seconds",
					Help:      "Potential.Init wall time per query.",
					Buckets:   prometheus.DefBuckets,
				},
			),
			UpdateDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "roadrouter",
					Name:      "update_duration_seconds",
					Help:      "IncreaseWeights wall time per query that requested an update.",
					Buckets:   prometheus.DefBuckets,
				},
			),
			QueuePops: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "roadrouter",
					Name:      "dijkstra_queue_pops",
					Help:      "Priority queue pops per query.",
					Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
				},
			),
			QueuePushes: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "roadrouter",
					Name:      "dijkstra_queue_pushes",
					Help:      "Priority queue pushes per query.",
					Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
				},
			),
			RelaxedArcs: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "roadrouter",
					Name:      "dijkstra_relaxed_arcs",
					Help:      "Arcs relaxed per query.",
					Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
				},
			),
			PotentialStaleHits: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "roadrouter",
					Name:      "potential_stale_total",
					Help:      "Potential staleness events, partitioned by whether a recustomization callback was configured.",
				},
				[]string{"recovered"},
			),
			CustomizationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "roadrouter",
					Name:      "customizations_total",
					Help:      "Completed customization runs, partitioned by metric count.",
				},
				[]string{"metrics"},
			),
			CustomizationDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "roadrouter",
					Name:      "customization_duration_seconds",
					Help:      "Wall time of one customization run.",
					Buckets:   prometheus.DefBuckets,
				},
			),
		}
	})
	return instance
}

// Get returns the process-wide Metrics instance, initializing it on first use.
func Get() *Metrics {
	if instance == nil {
		return Init()
	}
	return instance
}

var _ server.Observer = (*Metrics)(nil)

// QueryFinished implements server.Observer.
func (m *Metrics) QueryFinished(queryID string, diag server.Diagnostics, found bool) {
	foundLabel := "false"
	if found {
		foundLabel = "true"
	}
	m.QueriesTotal.WithLabelValues(foundLabel).Inc()
	m.QueryDuration.Observe(diag.QueryTime.Seconds())
	m.PotentialDuration.Observe(diag.PotentialTime.Seconds())
	if diag.UpdateTime > 0 {
		m.UpdateDuration.Observe(diag.UpdateTime.Seconds())
	}
	m.QueuePops.Observe(float64(diag.QueuePops))
	m.QueuePushes.Observe(float64(diag.QueuePushes))
	m.RelaxedArcs.Observe(float64(diag.RelaxedArcs))
}

// PotentialStale implements server.Observer.
func (m *Metrics) PotentialStale(queryID string, recovered bool) {
	recoveredLabel := "false"
	if recovered {
		recoveredLabel = "true"
	}
	m.PotentialStaleHits.WithLabelValues(recoveredLabel).Inc()
}

// CustomizationFinished records one completed customization run. The
// customization package does not call it (it has no Observer-shaped
// dependency of its own per spec.md §9's no-dynamic-dispatch design), and
// cmd/router does not call it either: it hands its metrics to the server
// only as a server.Observer.
func (m *Metrics) CustomizationFinished(numMetrics int, durationSeconds float64) {
	m.CustomizationsTotal.WithLabelValues(metricsLabel(numMetrics)).Inc()
	m.CustomizationDuration.Observe(durationSeconds)
}

func metricsLabel(n int) string {
	switch {
	case n <= 1:
		return "1"
	case n <= 4:
		return "2-4"
	case n <= 16:
		return "5-16"
	default:
		return "17+"
	}
}
