// Package registry maps prover identities to their registered public keys. Verifiers consume
// it through schnorr.PublicKeyLookup.
package registry

import (
	"context"
	"time"

	"github.com/go-errors/errors"

	"github.com/privacybydesign/schnorr"
	"github.com/privacybydesign/schnorr/big"
	"github.com/privacybydesign/schnorr/group"
	"github.com/privacybydesign/schnorr/internal/common"
)

const ErrUnknownIdentity common.ErrorKind = "unknown identity"

// Record is what the registry stores per identity.
type Record struct {
	PublicKey   *big.Int  `json:"y"`
	Fingerprint []byte    `json:"fingerprint"` // multihash of the group parameters
	Registered  time.Time `json:"registered"`
}

var (
	_ schnorr.PublicKeyLookup = (*Memory)(nil)
	_ schnorr.PublicKeyLookup = (*Bolt)(nil)
)

func newRecord(params *group.Params, identity string, y *big.Int, now time.Time) (*Record, error) {
	if identity == "" {
		return nil, errors.New("identity must not be empty")
	}
	if err := schnorr.ValidatePublicKey(params, y); err != nil {
		return nil, err
	}
	return &Record{
		PublicKey:   new(big.Int).Set(y),
		Fingerprint: params.Multihash(),
		Registered:  now,
	}, nil
}

// publicKey returns the key of a stored record, refusing records made under other parameters.
func (r *Record) publicKey(params *group.Params, identity string) (*big.Int, error) {
	if r.PublicKey == nil {
		return nil, errors.Errorf("record of %s has no public key", identity)
	}
	if !params.Matches(r.Fingerprint) {
		return nil, errors.WrapPrefix(schnorr.ErrInvalidParameters, "key of "+identity+" was registered in another group", 0)
	}
	return new(big.Int).Set(r.PublicKey), nil
}

func unknown(identity string) error {
	return errors.WrapPrefix(ErrUnknownIdentity, identity, 0)
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
