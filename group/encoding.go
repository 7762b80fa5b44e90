package group

import (
	"github.com/go-errors/errors"

	"github.com/privacybydesign/schnorr/big"
)

// The canonical encoding of Params is the canonical encoding (4-byte big-endian length, then
// big-endian magnitude) of p, q and g, in that order.

func encode(ints ...*big.Int) ([]byte, error) {
	var (
		buf []byte
		err error
	)
	for _, i := range ints {
		if buf, err = i.AppendCanonical(buf); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// MarshalBinary implements encoding.BinaryMarshaler using the canonical encoding.
func (p *Params) MarshalBinary() ([]byte, error) {
	return append([]byte(nil), p.canonical...), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The decoded parameters are validated.
func (p *Params) UnmarshalBinary(data []byte) error {
	params, err := Decode(data)
	if err != nil {
		return err
	}
	*p = *params
	return nil
}

// Decode parses and validates canonically encoded parameters.
func Decode(data []byte) (*Params, error) {
	var ints [3]*big.Int
	rest := data
	for i := range ints {
		var err error
		if ints[i], rest, err = big.ReadCanonical(rest); err != nil {
			return nil, errors.WrapPrefix(ErrInvalidParameters, "malformed encoding: "+err.Error(), 0)
		}
	}
	if len(rest) != 0 {
		return nil, errors.WrapPrefix(ErrInvalidParameters, "trailing bytes after encoding", 0)
	}
	return New(ints[0], ints[1], ints[2])
}
