// Package replay keeps track of recently seen proof commitments, so that a verifier never issues
// a challenge twice for the same commitment.
package replay

import (
	"sync"
	"time"

	"github.com/go-errors/errors"
	"github.com/hashicorp/golang-lru/simplelru"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/privacybydesign/schnorr/big"
	"github.com/privacybydesign/schnorr/internal/common"
)

const ErrReplayDetected common.ErrorKind = "commitment was seen before"

var Logger = logrus.StandardLogger()

// Window is a set of commitments seen during the last window duration, holding at most
// capacity entries. Observe checks and inserts in one critical section, so a given commitment
// passes Observe at most once per window no matter how many goroutines present it.
//
// When the set is full of unexpired entries, the oldest entry is dropped to make room and a
// warning is logged; a window that is too small for the verification rate thus weakens replay
// protection for the oldest commitments instead of refusing service.
type Window struct {
	mu     sync.Mutex
	window time.Duration
	clock  clockwork.Clock
	seen   *simplelru.LRU // canonical encoding of r -> time first seen
}

// NewWindow returns an empty Window. A nil clock means the real clock.
func NewWindow(window time.Duration, capacity int, clock clockwork.Clock) (*Window, error) {
	if window <= 0 {
		return nil, errors.Errorf("replay window must be positive, got %s", window)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	seen, err := simplelru.NewLRU(capacity, nil)
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to create replay window", 0)
	}
	return &Window{window: window, clock: clock, seen: seen}, nil
}

// Observe records r, or returns ErrReplayDetected if r was already recorded within the window.
func (w *Window) Observe(r *big.Int) error {
	if r == nil {
		return errors.New("cannot observe nil commitment")
	}
	key, err := r.AppendCanonical(nil)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.clock.Now()
	w.expire(now)
	if _, ok := w.seen.Peek(string(key)); ok {
		return errors.WrapPrefix(ErrReplayDetected, "commitment already observed", 0)
	}
	if evicted := w.seen.Add(string(key), now); evicted {
		Logger.WithField("capacity", w.seen.Len()).Warn("Replay window full, oldest commitment evicted before expiry")
	}
	return nil
}

// Len returns the number of unexpired commitments in the window.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.expire(w.clock.Now())
	return w.seen.Len()
}

// expire drops entries older than the window. Entries are never touched after insertion, so
// the LRU order is insertion order and the scan stops at the first unexpired entry.
func (w *Window) expire(now time.Time) {
	for {
		_, v, ok := w.seen.GetOldest()
		if !ok || now.Sub(v.(time.Time)) < w.window {
			return
		}
		w.seen.RemoveOldest()
	}
}
