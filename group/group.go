// Package group describes the prime-order subgroup of the multiplicative group modulo a prime p
// in which Schnorr proofs are carried out. Parameters are immutable once constructed and may be
// shared by value between any number of concurrent provers and verifiers.
package group

import (
	"bytes"
	"fmt"
	"io"

	"github.com/bwesterb/go-exptable"
	"github.com/cronokirby/saferith"
	"github.com/go-errors/errors"
	"github.com/multiformats/go-multihash"

	"github.com/privacybydesign/schnorr/big"
	"github.com/privacybydesign/schnorr/internal/common"
)

const (
	ErrParameterGeneration common.ErrorKind = "no suitable group parameters found"
	ErrInvalidParameters   common.ErrorKind = "invalid group parameters"
)

// primalityRounds is the number of Miller-Rabin rounds used when validating parameters.
const primalityRounds = 40

// tableWindow is the window size of the fixed-base exponentiation table for g.
const tableWindow = 7

var (
	bigONE = big.NewInt(1)
	bigTWO = big.NewInt(2)
)

// Params holds a prime modulus P, the prime order Q of the subgroup, and a generator G of that
// subgroup. Use New, Generate or UnmarshalBinary to obtain one; the zero value is not usable.
type Params struct {
	P *big.Int
	Q *big.Int
	G *big.Int

	gTable      exptable.Table
	pMod        *saferith.Modulus
	qMod        *saferith.Modulus
	canonical   []byte
	fingerprint [32]byte
	multihash   multihash.Multihash
}

// New validates p, q and g and returns the corresponding Params. A nil q stands for the
// safe-prime order (p-1)/2.
func New(p, q, g *big.Int) (*Params, error) {
	if p == nil || g == nil {
		return nil, errors.WrapPrefix(ErrInvalidParameters, "p and g are required", 0)
	}
	if q == nil {
		q = new(big.Int).Rsh(p, 1)
	}
	if err := Validate(p, q, g); err != nil {
		return nil, err
	}

	params := &Params{
		P: new(big.Int).Set(p),
		Q: new(big.Int).Set(q),
		G: new(big.Int).Set(g),
	}
	params.gTable.Compute(params.G.Go(), params.P.Go(), tableWindow)
	params.pMod = saferith.ModulusFromBytes(params.P.Bytes())
	params.qMod = saferith.ModulusFromBytes(params.Q.Bytes())

	var err error
	if params.canonical, err = encode(params.P, params.Q, params.G); err != nil {
		return nil, err
	}
	params.fingerprint = common.Fingerprint(params.canonical)
	if params.multihash, err = multihash.Encode(params.fingerprint[:], multihash.SHA3_256); err != nil {
		return nil, err
	}
	return params, nil
}

// Validate checks that p and q are prime, that q divides p-1, that 2 <= g <= p-2, and that g
// has order q, so that g generates the subgroup of prime order q. A nil q stands for (p-1)/2.
// Any failure is reported as ErrInvalidParameters.
func Validate(p, q, g *big.Int) error {
	if p == nil || g == nil {
		return errors.WrapPrefix(ErrInvalidParameters, "p and g are required", 0)
	}
	if q == nil {
		q = new(big.Int).Rsh(p, 1)
	}
	if p.Cmp(big.NewInt(5)) < 0 || !p.ProbablyPrime(primalityRounds) {
		return errors.WrapPrefix(ErrInvalidParameters, "p is not an odd prime of at least 5", 0)
	}
	if q.Cmp(big.NewInt(3)) < 0 || !q.ProbablyPrime(primalityRounds) {
		return errors.WrapPrefix(ErrInvalidParameters, "q is not an odd prime", 0)
	}
	pMinusOne := new(big.Int).Sub(p, bigONE)
	if new(big.Int).Mod(pMinusOne, q).Sign() != 0 {
		return errors.WrapPrefix(ErrInvalidParameters, "q does not divide p-1", 0)
	}
	if g.Cmp(bigTWO) < 0 || g.Cmp(new(big.Int).Sub(p, bigTWO)) > 0 {
		return errors.WrapPrefix(ErrInvalidParameters, "g is not in [2, p-2]", 0)
	}
	// q is prime and g != 1, so g^q == 1 means the order of g is exactly q.
	if new(big.Int).Exp(g, q, p).Cmp(bigONE) != 0 {
		return errors.WrapPrefix(ErrInvalidParameters, "g does not generate the subgroup of order q", 0)
	}
	return nil
}

// Equal reports whether both parameter sets are bit-for-bit identical.
func (p *Params) Equal(other *Params) bool {
	if p == nil || other == nil {
		return p == other
	}
	return bytes.Equal(p.canonical, other.canonical)
}

// Fingerprint returns the SHA3-256 hash of the canonical encoding.
func (p *Params) Fingerprint() [32]byte {
	return p.fingerprint
}

// Multihash returns the fingerprint as a self-describing SHA3-256 multihash, the form in which
// records made under these parameters refer to them.
func (p *Params) Multihash() multihash.Multihash {
	return append(multihash.Multihash(nil), p.multihash...)
}

// Matches reports whether mh is the multihash of these parameters.
func (p *Params) Matches(mh []byte) bool {
	return bytes.Equal(p.multihash, mh)
}

func (p *Params) String() string {
	return fmt.Sprintf("group{p: %d bits, q: %d bits, fingerprint: %x}", p.P.BitLen(), p.Q.BitLen(), p.fingerprint[:8])
}

// InSubgroup reports whether 1 <= y <= p-1 and y^q == 1 (mod p).
func (p *Params) InSubgroup(y *big.Int) bool {
	if !p.InRange(y) {
		return false
	}
	return new(big.Int).Exp(y, p.Q, p.P).Cmp(bigONE) == 0
}

// InRange reports whether 1 <= y <= p-1.
func (p *Params) InRange(y *big.Int) bool {
	return y != nil && y.Sign() > 0 && y.Cmp(p.P) < 0
}

// InScalarRange reports whether 0 <= x <= q-1.
func (p *Params) InScalarRange(x *big.Int) bool {
	return x != nil && x.Sign() >= 0 && x.Cmp(p.Q) < 0
}

// RandomExponent samples uniformly from [1, q-1].
func (p *Params) RandomExponent(rand io.Reader) (*big.Int, error) {
	return common.RandomInRange(rand, bigONE, new(big.Int).Sub(p.Q, bigONE))
}

// RandomScalar samples uniformly from [0, q-1].
func (p *Params) RandomScalar(rand io.Reader) (*big.Int, error) {
	return common.RandomInRange(rand, big.NewInt(0), new(big.Int).Sub(p.Q, bigONE))
}

// RandomChallenge samples a challenge uniformly from [0, 2^bits-1], or from [0, q-1] when bits is 0.
func (p *Params) RandomChallenge(rand io.Reader, bits uint) (*big.Int, error) {
	if bits == 0 {
		return p.RandomScalar(rand)
	}
	if err := p.CheckChallengeBits(bits); err != nil {
		return nil, err
	}
	return common.RandomBits(rand, bits)
}

// CheckChallengeBits verifies that the challenge space [0, 2^bits-1] lies within [0, q-1].
func (p *Params) CheckChallengeBits(bits uint) error {
	if bits != 0 && int(bits) >= p.Q.BitLen() {
		return errors.WrapPrefix(ErrInvalidParameters,
			fmt.Sprintf("%d-bit challenges do not fit in a %d-bit order", bits, p.Q.BitLen()), 0)
	}
	return nil
}
