package schnorr

import (
	"time"

	"github.com/go-errors/errors"
	"github.com/google/uuid"

	"github.com/privacybydesign/schnorr/big"
	"github.com/privacybydesign/schnorr/group"
)

// Transcript is the record of one verifier session, kept for audit. It contains public values
// only.
type Transcript struct {
	Session     uuid.UUID `json:"session"`
	Identity    string    `json:"identity,omitempty"`
	Fingerprint []byte    `json:"fingerprint"` // multihash of the group parameters
	PublicKey   *big.Int  `json:"y"`
	R           *big.Int  `json:"r"`
	C           *big.Int  `json:"c"`
	S           *big.Int  `json:"s"`
	Result      Result    `json:"result"`
	CreatedAt   time.Time `json:"created"`
	CompletedAt time.Time `json:"completed"`
}

// clone returns a copy of t that shares no integers or slices with it.
func (t *Transcript) clone() *Transcript {
	c := *t
	c.Fingerprint = append([]byte(nil), t.Fingerprint...)
	c.PublicKey = copyInt(t.PublicKey)
	c.R = copyInt(t.R)
	c.C = copyInt(t.C)
	c.S = copyInt(t.S)
	return &c
}

func copyInt(i *big.Int) *big.Int {
	if i == nil {
		return nil
	}
	return new(big.Int).Set(i)
}

// Check recomputes the verification equation of a completed transcript and returns whether it
// holds, which for an untampered transcript equals its recorded Result.
func (t *Transcript) Check(params *group.Params) (Result, error) {
	if !params.Matches(t.Fingerprint) {
		return Rejected, errors.WrapPrefix(ErrInvalidParameters, "transcript was made in another group", 0)
	}
	if t.PublicKey == nil || t.R == nil || t.C == nil || t.S == nil {
		return Rejected, errors.WrapPrefix(ErrInvalidResponse, "incomplete transcript", 0)
	}
	if err := ValidatePublicKey(params, t.PublicKey); err != nil {
		return Rejected, err
	}
	if !params.InRange(t.R) || !params.InScalarRange(t.C) || !params.InScalarRange(t.S) {
		return Rejected, nil
	}
	if check(params, t.PublicKey, t.R, t.C, t.S) {
		return Accepted, nil
	}
	return Rejected, nil
}
