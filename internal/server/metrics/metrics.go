// Package metrics declares the Prometheus instruments the server exposes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the counters the service layer records into.
type Metrics struct {
	// BidsTotal counts bid attempts by outcome ("accepted" / "rejected").
	BidsTotal *prometheus.CounterVec

	// BidConflictsTotal counts version conflicts detected while committing
	// a bid, including those resolved by the retry.
	BidConflictsTotal prometheus.Counter

	// SessionsSweptTotal counts sessions removed by the recurring sweep.
	SessionsSweptTotal prometheus.Counter

	// SweepRunsTotal counts sweep ticks across all sites.
	SweepRunsTotal prometheus.Counter
}

// New registers the instruments with reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BidsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "auctionsite_bids_total",
			Help: "Bid attempts by outcome.",
		}, []string{"outcome"}),
		BidConflictsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "auctionsite_bid_conflicts_total",
			Help: "Optimistic-concurrency conflicts detected while placing bids.",
		}),
		SessionsSweptTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "auctionsite_sessions_swept_total",
			Help: "Expired sessions removed by the recurring sweep.",
		}),
		SweepRunsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "auctionsite_sweep_runs_total",
			Help: "Session sweep ticks executed.",
		}),
	}
}
