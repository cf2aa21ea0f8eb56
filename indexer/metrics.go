package indexer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rebuild scopes reported by Metrics.Rebuilds.
const (
	ScopeLeaf     = "leaf"
	ScopeAncestor = "ancestor"
)

// Metrics holds the Prometheus collectors updated by trees and ensembles.
// Several trees may share one Metrics.
type Metrics struct {
	Builds         prometheus.Counter
	BuildDuration  prometheus.Histogram
	Inserts        prometheus.Counter
	Rebuilds       *prometheus.CounterVec
	RebuildSize    prometheus.Histogram
	Queries        prometheus.Counter
	SearchDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Builds: f.NewCounter(prometheus.CounterOpts{
			Name: "sparnn_tree_builds_total",
			Help: "Number of full tree constructions",
		}),
		BuildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sparnn_tree_build_duration_seconds",
			Help:    "Duration of full tree constructions",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		Inserts: f.NewCounter(prometheus.CounterOpts{
			Name: "sparnn_tree_inserts_total",
			Help: "Number of records inserted after construction",
		}),
		Rebuilds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sparnn_tree_rebuilds_total",
			Help: "Subtree rebuilds triggered by inserts, by whether the leaf or an ancestor was rebuilt",
		}, []string{"scope"}),
		RebuildSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sparnn_tree_rebuild_records",
			Help:    "Records in each rebuilt subtree",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		Queries: f.NewCounter(prometheus.CounterOpts{
			Name: "sparnn_tree_queries_total",
			Help: "Query rows searched",
		}),
		SearchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sparnn_tree_search_duration_seconds",
			Help:    "Duration of tree searches",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}
}

func (m *Metrics) observeBuild(d time.Duration) {
	if m == nil {
		return
	}
	m.Builds.Inc()
	m.BuildDuration.Observe(d.Seconds())
}

func (m *Metrics) observeInsert(scope string, size int) {
	if m == nil {
		return
	}
	m.Inserts.Inc()
	m.Rebuilds.WithLabelValues(scope).Inc()
	m.RebuildSize.Observe(float64(size))
}

func (m *Metrics) observeSearch(rows int, d time.Duration) {
	if m == nil {
		return
	}
	m.Queries.Add(float64(rows))
	m.SearchDuration.Observe(d.Seconds())
}
