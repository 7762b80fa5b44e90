package schnorr

import (
	"github.com/go-errors/errors"
	"github.com/google/uuid"

	"github.com/privacybydesign/schnorr/big"
	"github.com/privacybydesign/schnorr/cbor"
)

// Commitment is the first move, from prover to verifier. Session is uuid.Nil when the transport
// does not carry session ids; the verifier then assigns one for its transcript, and neither side
// checks the ids of later messages.
type Commitment struct {
	Session uuid.UUID `json:"session"`
	R       *big.Int  `json:"r"`
}

// Challenge is the second move, from verifier to prover.
type Challenge struct {
	Session uuid.UUID `json:"session"`
	C       *big.Int  `json:"c"`
}

// Response is the third move, from prover to verifier.
type Response struct {
	Session uuid.UUID `json:"session"`
	S       *big.Int  `json:"s"`
}

func (m *Commitment) Encode() ([]byte, error) { return cbor.Marshal(m) }
func (m *Challenge) Encode() ([]byte, error)  { return cbor.Marshal(m) }
func (m *Response) Encode() ([]byte, error)   { return cbor.Marshal(m) }

// DecodeCommitment parses a Commitment. Range checks are left to the Verifier.
func DecodeCommitment(data []byte) (*Commitment, error) {
	m := &Commitment{}
	if err := cbor.UnmarshalStrict(data, m); err != nil {
		return nil, errors.WrapPrefix(ErrInvalidCommitment, "malformed commitment: "+err.Error(), 0)
	}
	if m.R == nil {
		return nil, errors.WrapPrefix(ErrInvalidCommitment, "commitment without r", 0)
	}
	return m, nil
}

// DecodeChallenge parses a Challenge. Range checks are left to the Prover.
func DecodeChallenge(data []byte) (*Challenge, error) {
	m := &Challenge{}
	if err := cbor.UnmarshalStrict(data, m); err != nil {
		return nil, errors.WrapPrefix(ErrInvalidChallenge, "malformed challenge: "+err.Error(), 0)
	}
	if m.C == nil {
		return nil, errors.WrapPrefix(ErrInvalidChallenge, "challenge without c", 0)
	}
	return m, nil
}

// DecodeResponse parses a Response. Range checks are left to the Verifier.
func DecodeResponse(data []byte) (*Response, error) {
	m := &Response{}
	if err := cbor.UnmarshalStrict(data, m); err != nil {
		return nil, errors.WrapPrefix(ErrInvalidResponse, "malformed response: "+err.Error(), 0)
	}
	if m.S == nil {
		return nil, errors.WrapPrefix(ErrInvalidResponse, "response without s", 0)
	}
	return m, nil
}
