package schnorr

import (
	"context"
	"crypto/rand"
	"io"
	"sync"

	"github.com/go-errors/errors"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/privacybydesign/schnorr/big"
	"github.com/privacybydesign/schnorr/group"
)

// PublicKeyLookup maps a prover identity to its registered public key.
type PublicKeyLookup interface {
	Lookup(ctx context.Context, identity string) (*big.Int, error)
}

// ReplayGuard records commitments and refuses ones it has seen before. Observe must check and
// record atomically, as it is shared by concurrently running verifiers.
type ReplayGuard interface {
	Observe(r *big.Int) error
}

// AuditSink retains the transcripts of completed sessions.
type AuditSink interface {
	Record(t *Transcript) error
}

// Verifier runs the verifier side of a single proof session against the public key y.
type Verifier struct {
	params        *group.Params
	y             *big.Int
	guard         ReplayGuard
	rand          io.Reader
	clock         clockwork.Clock
	challengeBits uint
	audit         AuditSink

	mu         sync.Mutex
	state      VerifierState
	wire       uuid.UUID // session id carried by the messages, uuid.Nil if none
	transcript Transcript
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithChallengeBits draws challenges from [0, 2^bits-1] instead of [0, q-1]. 2^bits must not
// exceed q.
func WithChallengeBits(bits uint) VerifierOption {
	return func(v *Verifier) { v.challengeBits = bits }
}

// WithVerifierRand sets the source from which challenges are drawn. The default is
// crypto/rand.Reader.
func WithVerifierRand(r io.Reader) VerifierOption {
	return func(v *Verifier) { v.rand = r }
}

// WithVerifierClock sets the clock used for transcript timestamps.
func WithVerifierClock(c clockwork.Clock) VerifierOption {
	return func(v *Verifier) { v.clock = c }
}

// WithAuditSink hands the transcript of every completed session to sink.
func WithAuditSink(sink AuditSink) VerifierOption {
	return func(v *Verifier) { v.audit = sink }
}

// NewVerifier returns a Verifier in state VerifierAwaitingCommitment. The guard is required and
// should be shared by all verifiers of the same deployment.
func NewVerifier(params *group.Params, y *big.Int, guard ReplayGuard, opts ...VerifierOption) (*Verifier, error) {
	if err := ValidatePublicKey(params, y); err != nil {
		return nil, err
	}
	if guard == nil {
		return nil, errors.New("verifier requires a replay guard")
	}
	v := &Verifier{
		params: params,
		y:      new(big.Int).Set(y),
		guard:  guard,
		rand:   rand.Reader,
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if err := params.CheckChallengeBits(v.challengeBits); err != nil {
		return nil, err
	}
	v.transcript = Transcript{
		Fingerprint: params.Multihash(),
		PublicKey:   v.y,
		CreatedAt:   v.clock.Now(),
	}
	return v, nil
}

// NewVerifierForIdentity looks up the public key of identity and returns a Verifier for it.
func NewVerifierForIdentity(ctx context.Context, params *group.Params, lookup PublicKeyLookup, identity string,
	guard ReplayGuard, opts ...VerifierOption) (*Verifier, error) {
	y, err := lookup.Lookup(ctx, identity)
	if err != nil {
		return nil, err
	}
	v, err := NewVerifier(params, y, guard, opts...)
	if err != nil {
		return nil, err
	}
	v.transcript.Identity = identity
	return v, nil
}

// ReceiveCommitment checks that 1 <= r <= p-1, records r with the replay guard, and returns a
// fresh challenge. The challenge echoes the session id of the commitment. A commitment without
// one gets an id assigned for the transcript only, and the response is then not checked against
// it. Any error aborts the session.
func (v *Verifier) ReceiveCommitment(m *Commitment) (*Challenge, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != VerifierAwaitingCommitment {
		return nil, v.fail(errors.WrapPrefix(ErrInvalidState, "ReceiveCommitment called in state "+v.state.String(), 0))
	}
	if m == nil || !v.params.InRange(m.R) {
		return nil, v.fail(errors.WrapPrefix(ErrInvalidCommitment, "commitment not in [1, p-1]", 0))
	}

	v.wire = m.Session
	v.transcript.Session = m.Session
	if v.transcript.Session == uuid.Nil {
		v.transcript.Session = uuid.New()
	}
	if err := v.guard.Observe(m.R); err != nil {
		if errors.Is(err, ErrReplayDetected) {
			ReplayDetections.Inc()
			v.log().Warn("Replayed commitment")
		}
		return nil, v.fail(err)
	}
	c, err := v.params.RandomChallenge(v.rand, v.challengeBits)
	if err != nil {
		return nil, v.fail(err)
	}

	v.transcript.R = new(big.Int).Set(m.R)
	v.transcript.C = c
	v.transition(VerifierAwaitingResponse)
	SessionsStarted.WithLabelValues(roleVerifier).Inc()
	return &Challenge{Session: v.wire, C: new(big.Int).Set(c)}, nil
}

// Verify checks g^s = r*y^c mod p. A response that fails the check, or whose s lies outside
// [0, q-1], yields Rejected without error. Errors are returned for out-of-order calls and
// malformed messages, which abort the session, and for audit failures, which occur after the
// result is final.
func (v *Verifier) Verify(m *Response) (Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != VerifierAwaitingResponse {
		return Rejected, v.fail(errors.WrapPrefix(ErrInvalidState, "Verify called in state "+v.state.String(), 0))
	}
	if m == nil || m.S == nil {
		return Rejected, v.fail(errors.WrapPrefix(ErrInvalidResponse, "response without s", 0))
	}
	if v.wire != uuid.Nil && m.Session != v.wire {
		return Rejected, v.fail(errors.WrapPrefix(ErrSessionMismatch, "response for session "+m.Session.String(), 0))
	}

	result := Rejected
	if !v.params.InScalarRange(m.S) {
		v.log().Info("Response out of range")
	} else if check(v.params, v.y, v.transcript.R, v.transcript.C, m.S) {
		result = Accepted
	}

	v.transcript.S = new(big.Int).Set(m.S)
	v.transcript.Result = result
	v.transcript.CompletedAt = v.clock.Now()
	v.transition(resultState(result))
	SessionOutcomes.WithLabelValues(roleVerifier, result.String()).Inc()
	v.log().WithField("result", result).Info("Proof session completed")

	if v.audit != nil {
		if err := v.audit.Record(v.transcript.clone()); err != nil {
			return result, errors.WrapPrefix(err, "failed to record transcript", 0)
		}
	}
	return result, nil
}

// Abort moves the session to VerifierAborted. It does nothing on a finished session.
func (v *Verifier) Abort() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.abort()
}

// State returns the current state of the session.
func (v *Verifier) State() VerifierState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Session returns the session id recorded in the transcript, or uuid.Nil before a commitment
// was received.
func (v *Verifier) Session() uuid.UUID {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.transcript.Session
}

// Transcript returns a copy of the session transcript so far.
func (v *Verifier) Transcript() Transcript {
	v.mu.Lock()
	defer v.mu.Unlock()
	return *v.transcript.clone()
}

// The methods below expect v.mu to be held.

func (v *Verifier) transition(to VerifierState) {
	if !v.state.canTransition(to) {
		panic("schnorr: illegal verifier transition from " + v.state.String() + " to " + to.String())
	}
	v.log().Debugf("Verifier session %s -> %s", v.state, to)
	v.state = to
}

func (v *Verifier) fail(err error) error {
	v.log().WithError(err).Debug("Verifier session failed")
	v.abort()
	return err
}

func (v *Verifier) abort() {
	if v.state.Terminal() {
		return
	}
	v.transition(VerifierAborted)
	SessionOutcomes.WithLabelValues(roleVerifier, "aborted").Inc()
}

func (v *Verifier) log() *logrus.Entry {
	return Logger.WithField("session", v.transcript.Session)
}

// check reports whether g^s = r*y^c mod p. All values are public.
func check(params *group.Params, y, r, c, s *big.Int) bool {
	lhs := params.GExp(s)
	rhs := params.Mul(r, params.Exp(y, c))
	return lhs.Cmp(rhs) == 0
}
