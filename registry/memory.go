package registry

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/privacybydesign/schnorr"
	"github.com/privacybydesign/schnorr/big"
	"github.com/privacybydesign/schnorr/group"
)

// Memory is a registry held in memory, for tests and short-lived verifiers.
type Memory struct {
	params *group.Params
	clock  clockwork.Clock

	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemory returns an empty registry for keys in params. A nil clock means the real clock.
func NewMemory(params *group.Params, clock clockwork.Clock) *Memory {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Memory{params: params, clock: clock, records: map[string]*Record{}}
}

// Register stores y as the public key of identity, replacing any earlier key.
func (m *Memory) Register(ctx context.Context, identity string, y *big.Int) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	record, err := newRecord(m.params, identity, y, m.clock.Now())
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[identity]; ok {
		schnorr.Logger.WithField("identity", identity).Info("Replacing registered public key")
	}
	m.records[identity] = record
	return nil
}

// Delete removes identity.
func (m *Memory) Delete(ctx context.Context, identity string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[identity]; !ok {
		return unknown(identity)
	}
	delete(m.records, identity)
	return nil
}

// Lookup returns the public key of identity.
func (m *Memory) Lookup(ctx context.Context, identity string) (*big.Int, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[identity]
	if !ok {
		return nil, unknown(identity)
	}
	return record.publicKey(m.params, identity)
}

func (m *Memory) Close() error {
	return nil
}
