package engine

import "expvar"

var (
	metricSpinTotal         = expvar.NewInt("spin_total")
	metricSpinSettledTotal  = expvar.NewInt("spin_settled_total")
	metricSpinRejectedTotal = expvar.NewInt("spin_rejected_total")
	metricSpinPartialTotal  = expvar.NewInt("spin_partial_failed_total")
	metricSpinUnknownTotal  = expvar.NewInt("spin_unknown_total")
	metricSpinReplayedTotal = expvar.NewInt("spin_replayed_total")
)
