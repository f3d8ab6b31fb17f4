// Package metrics exposes the node's Prometheus gauges backing the
// explorer's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gauges this node reports.
type Metrics struct {
	ChainHeight prometheus.Gauge
	MempoolSize prometheus.Gauge

	// PeerCount is registered for /metrics, but no component of this
	// node sets it, so it stays at zero.
	PeerCount prometheus.Gauge
}

// New registers and returns the node's gauges against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ChainHeight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gambit_chain_height",
			Help: "Current block height of the chain.",
		}),
		MempoolSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gambit_mempool_size",
			Help: "Number of pending transactions in the mempool.",
		}),
		PeerCount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gambit_peer_count",
			Help: "Number of connected P2P peers.",
		}),
	}
}
