package group

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/go-errors/errors"

	"github.com/privacybydesign/schnorr/big"
	"github.com/privacybydesign/schnorr/internal/common"
	"github.com/privacybydesign/schnorr/safeprime"
)

// DefaultOrderBits is the size of the subgroup order q chosen by Generate for moduli of at least
// 2*DefaultOrderBits bits. Smaller moduli get an order of half their size.
const DefaultOrderBits = 256

type options struct {
	safePrime bool
	orderBits int
	maxTrials int
	rand      io.Reader
	follower  ProgressFollower
}

// Option configures Generate.
type Option func(*options)

// WithSafePrime makes Generate produce a safe prime p = 2q+1, so that the subgroup of quadratic
// residues has order q = (p-1)/2.
func WithSafePrime() Option {
	return func(o *options) { o.safePrime = true }
}

// WithOrderBits sets the size of q in Schnorr-group mode. It is ignored when WithSafePrime is
// given.
func WithOrderBits(bits int) Option {
	return func(o *options) { o.orderBits = bits }
}

// WithMaxTrials bounds the number of candidates tried in each search performed by Generate.
// The default is 4*bits^2.
func WithMaxTrials(n int) Option {
	return func(o *options) { o.maxTrials = n }
}

// WithRand sets the random source. The default is crypto/rand.Reader.
func WithRand(r io.Reader) Option {
	return func(o *options) { o.rand = r }
}

// Generate produces fresh parameters with a modulus p of exactly bits bits. By default it
// produces a Schnorr group: a prime q of DefaultOrderBits bits and a prime p = j*q+1. If any
// search exhausts its trial bound, ErrParameterGeneration is returned; if ctx is cancelled, the
// context error is.
func Generate(ctx context.Context, bits int, opts ...Option) (*Params, error) {
	o := options{rand: rand.Reader, maxTrials: 4 * bits * bits, follower: &EmptyFollower{}}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		p, q *big.Int
		err  error
	)
	if o.safePrime {
		o.follower.StepStart("Generating safe prime", 0)
		p, err = safeprime.Generate(ctx, o.rand, bits, o.maxTrials)
		o.follower.StepDone()
		if err != nil {
			return nil, generationError(err)
		}
		q = new(big.Int).Rsh(p, 1)
	} else {
		if o.orderBits == 0 {
			o.orderBits = DefaultOrderBits
			if bits < 2*DefaultOrderBits {
				o.orderBits = bits / 2
			}
		}
		if o.orderBits < 2 || o.orderBits > bits-2 {
			return nil, errors.WrapPrefix(ErrParameterGeneration,
				fmt.Sprintf("cannot fit a %d-bit order in a %d-bit modulus", o.orderBits, bits), 0)
		}
		o.follower.StepStart("Generating subgroup order", 0)
		q, err = common.RandomPrime(ctx, o.rand, uint(o.orderBits), o.maxTrials)
		o.follower.StepDone()
		if err != nil {
			return nil, generationError(err)
		}
		if p, err = schnorrModulus(ctx, &o, q, bits); err != nil {
			return nil, generationError(err)
		}
	}

	g, err := generator(ctx, &o, p, q)
	if err != nil {
		return nil, generationError(err)
	}
	return New(p, q, g)
}

// schnorrModulus searches for a prime p = j*q+1 of exactly bits bits, with j even.
func schnorrModulus(ctx context.Context, o *options, q *big.Int, bits int) (*big.Int, error) {
	o.follower.StepStart("Generating modulus", 0)
	defer o.follower.StepDone()

	lo := new(big.Int).Lsh(bigONE, uint(bits-1))
	lo.Div(lo, q)
	hi := new(big.Int).Lsh(bigONE, uint(bits))
	hi.Sub(hi, bigTWO)
	hi.Div(hi, q)

	p := new(big.Int)
	for trial := 1; o.maxTrials == 0 || trial <= o.maxTrials; trial++ {
		o.follower.Tick()
		if trial%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		j, err := common.RandomInRange(o.rand, lo, hi)
		if err != nil {
			return nil, err
		}
		j.SetBit(j, 0, 0) // p-1 must be even
		p.Mul(j, q).Add(p, bigONE)
		if p.BitLen() != bits || common.HasSmallFactor(p) {
			continue
		}
		if p.ProbablyPrime(primalityRounds) {
			return p, nil
		}
	}
	return nil, common.ErrTrialsExhausted
}

// generator returns h^((p-1)/q) mod p for a random h in [2, p-2], retrying while the result is 1.
func generator(ctx context.Context, o *options, p, q *big.Int) (*big.Int, error) {
	o.follower.StepStart("Finding generator", 0)
	defer o.follower.StepDone()

	cofactor := new(big.Int).Sub(p, bigONE)
	cofactor.Div(cofactor, q)
	top := new(big.Int).Sub(p, bigTWO)

	for trial := 1; o.maxTrials == 0 || trial <= o.maxTrials; trial++ {
		o.follower.Tick()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h, err := common.RandomInRange(o.rand, bigTWO, top)
		if err != nil {
			return nil, err
		}
		if g := new(big.Int).Exp(h, cofactor, p); g.Cmp(bigONE) != 0 {
			return g, nil
		}
	}
	return nil, common.ErrTrialsExhausted
}

func generationError(err error) error {
	if errors.Is(err, common.ErrTrialsExhausted) || errors.Is(err, safeprime.ErrTrialsExhausted) {
		return errors.WrapPrefix(ErrParameterGeneration, err.Error(), 0)
	}
	return err
}
