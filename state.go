package schnorr

import "fmt"

// ProverState is the state of a Prover session.
type ProverState int

const (
	ProverIdle ProverState = iota
	ProverCommitmentSent
	ProverResponseSent
	ProverAborted
)

// VerifierState is the state of a Verifier session.
type VerifierState int

const (
	VerifierAwaitingCommitment VerifierState = iota
	VerifierAwaitingResponse
	VerifierAccepted
	VerifierRejected
	VerifierAborted
)

// Result is the outcome of a completed proof. A rejected proof is not an error: it means the
// prover failed to demonstrate knowledge of the secret.
type Result int

const (
	Rejected Result = iota
	Accepted
)

var proverTransitions = map[ProverState][]ProverState{
	ProverIdle:           {ProverCommitmentSent, ProverAborted},
	ProverCommitmentSent: {ProverResponseSent, ProverAborted},
}

var verifierTransitions = map[VerifierState][]VerifierState{
	VerifierAwaitingCommitment: {VerifierAwaitingResponse, VerifierAborted},
	VerifierAwaitingResponse:   {VerifierAccepted, VerifierRejected, VerifierAborted},
}

func (s ProverState) canTransition(to ProverState) bool {
	for _, t := range proverTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s ProverState) Terminal() bool {
	return len(proverTransitions[s]) == 0
}

func (s ProverState) String() string {
	switch s {
	case ProverIdle:
		return "idle"
	case ProverCommitmentSent:
		return "commitment sent"
	case ProverResponseSent:
		return "response sent"
	case ProverAborted:
		return "aborted"
	default:
		return fmt.Sprintf("ProverState(%d)", int(s))
	}
}

func (s VerifierState) canTransition(to VerifierState) bool {
	for _, t := range verifierTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s VerifierState) Terminal() bool {
	return len(verifierTransitions[s]) == 0
}

func (s VerifierState) String() string {
	switch s {
	case VerifierAwaitingCommitment:
		return "awaiting commitment"
	case VerifierAwaitingResponse:
		return "awaiting response"
	case VerifierAccepted:
		return "accepted"
	case VerifierRejected:
		return "rejected"
	case VerifierAborted:
		return "aborted"
	default:
		return fmt.Sprintf("VerifierState(%d)", int(s))
	}
}

func (r Result) String() string {
	if r == Accepted {
		return "accepted"
	}
	return "rejected"
}

func resultState(r Result) VerifierState {
	if r == Accepted {
		return VerifierAccepted
	}
	return VerifierRejected
}
