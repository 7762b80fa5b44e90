package schnorr

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SessionsStarted counts sessions that got past their first move, by role.
	SessionsStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schnorr",
		Name:      "sessions_started_total",
		Help:      "Number of proof sessions started",
	}, []string{"role"})

	// SessionOutcomes counts sessions reaching a terminal state, by role and outcome.
	SessionOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schnorr",
		Name:      "session_outcomes_total",
		Help:      "Number of proof sessions ending in each terminal state",
	}, []string{"role", "outcome"})

	// ReplayDetections counts commitments refused because they were seen before.
	ReplayDetections = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "schnorr",
		Name:      "replay_detections_total",
		Help:      "Number of replayed commitments refused by verifiers",
	})
)

const (
	roleProver         = "prover"
	roleVerifier       = "verifier"
	roleNonInteractive = "noninteractive"
)

// RegisterMetrics registers the collectors of this package with r.
func RegisterMetrics(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{SessionsStarted, SessionOutcomes, ReplayDetections} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}
