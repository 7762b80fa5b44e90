package schnorr

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/go-errors/errors"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/privacybydesign/schnorr/big"
	"github.com/privacybydesign/schnorr/group"
)

// Prover runs the prover side of a single proof session. The ephemeral secret k lives only
// inside the Prover and is wiped as soon as the response is computed or the session aborts.
// All methods are safe for concurrent use; in particular Abort may be called from a timeout
// handler while another goroutine is in a move.
type Prover struct {
	params *group.Params
	key    *KeyPair
	rand   io.Reader
	clock  clockwork.Clock

	mu       sync.Mutex
	state    ProverState
	session  uuid.UUID
	k        *big.Int
	lastMove time.Time
}

// ProverOption configures a Prover.
type ProverOption func(*Prover)

// WithProverRand sets the source from which k is drawn. The default is crypto/rand.Reader.
func WithProverRand(r io.Reader) ProverOption {
	return func(p *Prover) { p.rand = r }
}

// WithProverClock sets the clock used for idle tracking.
func WithProverClock(c clockwork.Clock) ProverOption {
	return func(p *Prover) { p.clock = c }
}

// NewProver returns a Prover in state ProverIdle. The key must belong to params.
func NewProver(params *group.Params, key *KeyPair, opts ...ProverOption) (*Prover, error) {
	if !params.Equal(key.Params()) {
		return nil, errors.WrapPrefix(ErrInvalidParameters, "key pair belongs to another group", 0)
	}
	p := &Prover{
		params: params,
		key:    key,
		rand:   rand.Reader,
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.lastMove = p.clock.Now()
	return p, nil
}

// BeginSession samples a fresh k from [1, q-1] and returns the commitment r = g^k mod p.
func (p *Prover) BeginSession() (*Commitment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != ProverIdle {
		return nil, p.fail(errors.WrapPrefix(ErrInvalidState, "BeginSession called in state "+p.state.String(), 0))
	}
	k, err := p.params.RandomExponent(p.rand)
	if err != nil {
		return nil, p.fail(err)
	}

	p.k = k
	p.session = uuid.New()
	r := p.params.GExpSecret(k)
	p.transition(ProverCommitmentSent)
	SessionsStarted.WithLabelValues(roleProver).Inc()
	return &Commitment{Session: p.session, R: r}, nil
}

// Respond computes s = k + c*x mod q for the challenge and wipes k. A challenge carrying a
// session id must carry this session's; one without is accepted. Any error aborts the session.
func (p *Prover) Respond(ch *Challenge) (*Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != ProverCommitmentSent {
		return nil, p.fail(errors.WrapPrefix(ErrInvalidState, "Respond called in state "+p.state.String(), 0))
	}
	if ch == nil || !p.params.InScalarRange(ch.C) {
		return nil, p.fail(errors.WrapPrefix(ErrInvalidChallenge, "challenge not in [0, q-1]", 0))
	}
	if ch.Session != uuid.Nil && ch.Session != p.session {
		return nil, p.fail(errors.WrapPrefix(ErrSessionMismatch, "challenge for session "+ch.Session.String(), 0))
	}

	s, err := p.key.response(p.k, ch.C)
	if err != nil {
		return nil, p.fail(err)
	}
	p.wipe()
	p.transition(ProverResponseSent)
	SessionOutcomes.WithLabelValues(roleProver, "responded").Inc()
	return &Response{Session: p.session, S: s}, nil
}

// Abort wipes k and moves the session to ProverAborted. It does nothing on a finished session.
func (p *Prover) Abort() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.abort()
}

// AbortIfIdle aborts the session if no move happened during the last timeout, and reports
// whether it did so.
func (p *Prover) AbortIfIdle(timeout time.Duration) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Terminal() || p.clock.Since(p.lastMove) < timeout {
		return false
	}
	p.log().WithField("idle", p.clock.Since(p.lastMove)).Info("Aborting idle proof session")
	p.abort()
	return true
}

// IdleFor returns the time since the last move.
func (p *Prover) IdleFor() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clock.Since(p.lastMove)
}

// State returns the current state of the session.
func (p *Prover) State() ProverState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Session returns the session id, or uuid.Nil before BeginSession.
func (p *Prover) Session() uuid.UUID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// The methods below expect p.mu to be held.

func (p *Prover) transition(to ProverState) {
	if !p.state.canTransition(to) {
		panic("schnorr: illegal prover transition from " + p.state.String() + " to " + to.String())
	}
	p.log().Debugf("Prover session %s -> %s", p.state, to)
	p.state = to
	p.lastMove = p.clock.Now()
}

func (p *Prover) fail(err error) error {
	p.log().WithError(err).Debug("Prover session failed")
	p.abort()
	return err
}

func (p *Prover) abort() {
	if p.state.Terminal() {
		return
	}
	p.wipe()
	p.transition(ProverAborted)
	SessionOutcomes.WithLabelValues(roleProver, "aborted").Inc()
}

func (p *Prover) wipe() {
	p.k.Wipe()
	p.k = nil
}

func (p *Prover) log() *logrus.Entry {
	return Logger.WithField("session", p.session)
}
