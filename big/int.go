// Package big contains a mostly API-compatible "math/big".Int that marshals to and from Base64
// in JSON and text, to raw big-endian bytes in binary (and thus CBOR), and to a length-prefixed
// canonical form used for hashing and storage.
package big

import (
	cryptorand "crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"runtime"

	"github.com/go-errors/errors"
)

// Int is an API-compatible "math/big".Int with extra encodings.
// Only non-negative integers can be marshaled.
type Int big.Int

// canonicalLengthSize is the size of the big-endian length prefix of the canonical encoding.
const canonicalLengthSize = 4

var (
	ErrNegative  = errors.New("marshaling negative integers is not supported")
	ErrTruncated = errors.New("canonical integer encoding is truncated")
)

// MarshalText implements encoding.TextMarshaler, returning the base64-encoding
// of i.Bytes().
func (i *Int) MarshalText() ([]byte, error) {
	if i.Sign() == -1 {
		return nil, ErrNegative
	}
	bts := i.Bytes()
	enc := make([]byte, base64.StdEncoding.EncodedLen(len(bts)))
	base64.StdEncoding.Encode(enc, bts)
	return enc, nil
}

// UnmarshalText implements encoding.TextUnmarshaler as the inverse of MarshalText.
func (i *Int) UnmarshalText(text []byte) error {
	bts := make([]byte, base64.StdEncoding.DecodedLen(len(text)))
	n, err := base64.StdEncoding.Decode(bts, text)
	if err != nil {
		return errors.WrapPrefix(err, "integer is not valid base64", 0)
	}
	i.SetBytes(bts[:n])
	return nil
}

// UnmarshalJSON implements json.Unmarshaler. If the input is quoted it is decoded as base64,
// otherwise as an ordinary base 10 JSON number.
func (i *Int) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty JSON integer")
	}
	if b[0] != '"' {
		return json.Unmarshal(b, i.Go())
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return i.UnmarshalText([]byte(s))
}

// MarshalBinary implements encoding.BinaryMarshaler, returning the big-endian magnitude.
// CBOR encoders serialize it as a byte string, which carries its own length.
func (i *Int) MarshalBinary() ([]byte, error) {
	if i.Sign() == -1 {
		return nil, ErrNegative
	}
	return i.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (i *Int) UnmarshalBinary(data []byte) error {
	i.SetBytes(data)
	return nil
}

// AppendCanonical appends the canonical encoding of i to buf: a 4-byte big-endian length
// followed by the big-endian magnitude. Zero encodes as a zero length.
func (i *Int) AppendCanonical(buf []byte) ([]byte, error) {
	if i.Sign() == -1 {
		return nil, ErrNegative
	}
	bts := i.Bytes()
	var l [canonicalLengthSize]byte
	binary.BigEndian.PutUint32(l[:], uint32(len(bts)))
	buf = append(buf, l[:]...)
	return append(buf, bts...), nil
}

// ReadCanonical parses one canonically encoded integer from the start of buf and returns it
// together with the unconsumed remainder of buf.
func ReadCanonical(buf []byte) (*Int, []byte, error) {
	if len(buf) < canonicalLengthSize {
		return nil, nil, ErrTruncated
	}
	l := binary.BigEndian.Uint32(buf[:canonicalLengthSize])
	buf = buf[canonicalLengthSize:]
	if uint64(len(buf)) < uint64(l) {
		return nil, nil, ErrTruncated
	}
	if l > 0 && buf[0] == 0 {
		return nil, nil, errors.New("canonical integer encoding has leading zeros")
	}
	return new(Int).SetBytes(buf[:l]), buf[l:], nil
}

// Wipe overwrites the words backing i and sets i to zero. It is meant for secret values that
// must not outlive their use; copies made earlier by arithmetic are not reached.
func (i *Int) Wipe() {
	if i == nil {
		return
	}
	words := i.Go().Bits()
	for j := range words {
		words[j] = 0
	}
	runtime.KeepAlive(words)
	i.Go().SetInt64(0)
}

// RandInt wraps "crypto/rand".Int:
// returns a uniform random value in [0, max). It panics if max <= 0.
func RandInt(rnd io.Reader, max *Int) (*Int, error) {
	i, err := cryptorand.Int(rnd, max.Go())
	return Convert(i), err
}

// Convert from a "math/big".Int
func Convert(x *big.Int) *Int {
	return (*Int)(x)
}

// Go converts to a "math/big".Int
func (i *Int) Go() *big.Int {
	return (*big.Int)(i)
}

// "math/big".Int API, restricted to what the protocol code needs.

func NewInt(x int64) *Int { return Convert(big.NewInt(x)) }

func (i *Int) Format(s fmt.State, ch rune)       { i.Go().Format(s, ch) }
func (i *Int) Bit(j int) uint                    { return i.Go().Bit(j) }
func (i *Int) Bits() []big.Word                  { return i.Go().Bits() }
func (i *Int) Bytes() []byte                     { return i.Go().Bytes() }
func (i *Int) FillBytes(buf []byte) []byte       { return i.Go().FillBytes(buf) }
func (i *Int) BitLen() int                       { return i.Go().BitLen() }
func (i *Int) Int64() int64                      { return i.Go().Int64() }
func (i *Int) Uint64() uint64                    { return i.Go().Uint64() }
func (i *Int) IsInt64() bool                     { return i.Go().IsInt64() }
func (i *Int) Sign() int                         { return i.Go().Sign() }
func (i *Int) Cmp(y *Int) int                    { return i.Go().Cmp(y.Go()) }
func (i *Int) ProbablyPrime(n int) bool          { return i.Go().ProbablyPrime(n) }
func (i *Int) String() string                    { return i.Go().String() }
func (i *Int) Text(base int) string              { return i.Go().Text(base) }
func (i *Int) SetInt64(x int64) *Int             { return Convert(i.Go().SetInt64(x)) }
func (i *Int) SetUint64(x uint64) *Int           { return Convert(i.Go().SetUint64(x)) }
func (i *Int) Set(x *Int) *Int                   { return Convert(i.Go().Set(x.Go())) }
func (i *Int) SetBytes(buf []byte) *Int          { return Convert(i.Go().SetBytes(buf)) }
func (i *Int) Neg(x *Int) *Int                   { return Convert(i.Go().Neg(x.Go())) }
func (i *Int) Add(x, y *Int) *Int                { return Convert(i.Go().Add(x.Go(), y.Go())) }
func (i *Int) Sub(x, y *Int) *Int                { return Convert(i.Go().Sub(x.Go(), y.Go())) }
func (i *Int) Mul(x, y *Int) *Int                { return Convert(i.Go().Mul(x.Go(), y.Go())) }
func (i *Int) Quo(x, y *Int) *Int                { return Convert(i.Go().Quo(x.Go(), y.Go())) }
func (i *Int) Rem(x, y *Int) *Int                { return Convert(i.Go().Rem(x.Go(), y.Go())) }
func (i *Int) Div(x, y *Int) *Int                { return Convert(i.Go().Div(x.Go(), y.Go())) }
func (i *Int) Mod(x, y *Int) *Int                { return Convert(i.Go().Mod(x.Go(), y.Go())) }
func (i *Int) Lsh(x *Int, n uint) *Int           { return Convert(i.Go().Lsh(x.Go(), n)) }
func (i *Int) Rsh(x *Int, n uint) *Int           { return Convert(i.Go().Rsh(x.Go(), n)) }
func (i *Int) Exp(x, y, m *Int) *Int             { return Convert(i.Go().Exp(x.Go(), y.Go(), m.Go())) }
func (i *Int) ModInverse(g, n *Int) *Int         { return Convert(i.Go().ModInverse(g.Go(), n.Go())) }
func (i *Int) SetBit(x *Int, j int, b uint) *Int { return Convert(i.Go().SetBit(x.Go(), j, b)) }

func (i *Int) GCD(x, y, a, b *Int) *Int {
	return Convert(i.Go().GCD(x.Go(), y.Go(), a.Go(), b.Go()))
}

func (i *Int) SetString(s string, base int) (*Int, bool) {
	r, ok := i.Go().SetString(s, base)
	return Convert(r), ok
}
