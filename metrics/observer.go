package metrics

import "webmgen/probe"

// probeObserver implements probe.Observer using the collectors in this package.
type probeObserver struct{}

// NewProbeObserver creates an observer that records probe outcomes and latency.
func NewProbeObserver() probe.Observer {
	return probeObserver{}
}

func (probeObserver) ObserveProbe(outcome string, durationSeconds float64) {
	ProbesTotal.WithLabelValues(outcome).Inc()
	ProbeDuration.Observe(durationSeconds)
}
