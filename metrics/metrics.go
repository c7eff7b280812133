// Package metrics exposes the node's Prometheus instrumentation: how
// many transactions have been checked, attached, or rejected, the
// indexer's current chain height, and how many transactions are
// waiting on ancestors in the attacher's graph.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the node's counters and gauges. Callers register it
// once with a prometheus.Registerer and pass it to the components
// that report against it.
type Metrics struct {
	TxsChecked  prometheus.Counter
	TxsAttached prometheus.Counter
	TxsRejected *prometheus.CounterVec

	IndexerHeight prometheus.Gauge
	AttacherQueue prometheus.Gauge

	ReorgsHandled prometheus.Counter
}

// New builds a Metrics set with the "yuvnode" namespace.
func New() *Metrics {
	return &Metrics{
		TxsChecked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "yuvnode",
			Name:      "txs_checked_total",
			Help:      "Total number of transactions that ran through the isolated checker.",
		}),
		TxsAttached: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "yuvnode",
			Name:      "txs_attached_total",
			Help:      "Total number of transactions committed to the DAG by the attacher.",
		}),
		TxsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "yuvnode",
			Name:      "txs_rejected_total",
			Help:      "Total number of transactions rejected, labeled by rejection kind.",
		}, []string{"kind"}),
		IndexerHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "yuvnode",
			Name:      "indexer_height",
			Help:      "Height of the last block the indexer has fully scanned.",
		}),
		AttacherQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "yuvnode",
			Name:      "attacher_pending_count",
			Help:      "Number of transactions currently awaiting ancestors in the attacher.",
		}),
		ReorgsHandled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "yuvnode",
			Name:      "reorgs_handled_total",
			Help:      "Total number of chain reorganizations the indexer has resolved.",
		}),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.TxsChecked, m.TxsAttached, m.TxsRejected,
		m.IndexerHeight, m.AttacherQueue, m.ReorgsHandled,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
