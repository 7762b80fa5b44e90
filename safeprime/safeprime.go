// Package safeprime computes safe primes, i.e. primes of the form 2q+1 where q is also prime.
package safeprime

import (
	"context"
	"io"
	"runtime"

	"github.com/go-errors/errors"
	"github.com/privacybydesign/schnorr/big"
	"github.com/privacybydesign/schnorr/internal/common"
)

// ErrTrialsExhausted is returned by Generate when no safe prime was found within the trial bound.
var ErrTrialsExhausted = errors.New("no safe prime found within the trial bound")

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// GenerateConcurrent concurrently and continuously generates safe primes on all CPU cores
// until ctx is done. If an error is encountered generation stops in all goroutines, and the
// error is sent on the second return parameter.
func GenerateConcurrent(ctx context.Context, rand io.Reader, bitsize int) (<-chan *big.Int, <-chan error) {
	count := runtime.GOMAXPROCS(0)
	ints := make(chan *big.Int, count)
	errs := make(chan error, count)

	ctx, cancel := context.WithCancel(ctx)
	for i := 0; i < count; i++ {
		go func() {
			for {
				x, err := Generate(ctx, rand, bitsize, 0)
				if ctx.Err() != nil {
					return
				}
				if err != nil {
					errs <- err
					cancel()
					return
				}
				select {
				case <-ctx.Done():
					return
				case ints <- x:
				}
			}
		}()
	}

	return ints, errs
}

// Generate a safe prime of the given size, using the fact that:
//
//	If q is prime and 2^(2q) = 1 mod (2q+1), then 2q+1 is a safe prime.
//
// We take a random bigint q; if the above formula holds and q is prime, then we return 2q+1.
// (See https://www.ijipbangalore.org/abstracts_2(1)/p5.pdf and
// https://groups.google.com/group/sci.crypt/msg/34c4abf63568a8eb)
//
// At most maxTrials candidates q are drawn (0 means unbounded) before ErrTrialsExhausted is
// returned. Cancelling ctx makes Generate return ctx.Err().
func Generate(ctx context.Context, rand io.Reader, bitsize int, maxTrials int) (*big.Int, error) {
	if bitsize < 3 {
		return nil, errors.Errorf("safe prime size must be at least 3 bits, got %d", bitsize)
	}
	var (
		max        = new(big.Int).Lsh(one, uint(bitsize)) // 2^bitsize, len bitsize+1
		twoqone    = new(big.Int)
		twoexptwoq = new(big.Int)
		q          *big.Int
		bitlen     int
		err        error
	)

	for trial := 1; maxTrials == 0 || trial <= maxTrials; trial++ {
		if trial%1000 == 0 {
			if err = ctx.Err(); err != nil {
				return nil, err
			}
		}

		if q, err = big.RandInt(rand, max); err != nil {
			return nil, errors.WrapPrefix(err, "random source failed", 0)
		}

		bitlen = q.BitLen() // q < max = 2^bitsize, so bitlen <= bitsize

		if q.Bit(0) != uint(1) || // q is not odd
			bitlen < bitsize-1 { // q is too small
			continue
		}

		// bitlen now equals either bitsize or bitsize - 1. We want the latter.
		// If bitlen == bitsize we use (q-1)/2 instead of q in the remainder of the algorithm.
		// This way the acceptable bit length range of big.RandInt's output is 2 bits.
		if bitlen == bitsize {
			q.Rsh(q, 1)
			if q.Bit(0) != uint(1) {
				continue
			}
		}

		twoqone.Lsh(q, 1).Add(twoqone, one)
		if common.HasSmallFactor(q) || common.HasSmallFactor(twoqone) {
			continue
		}

		twoexptwoq.Exp(two, new(big.Int).Lsh(q, 1), twoqone) // 2^(2q) mod (2q+1)
		if twoexptwoq.Cmp(one) == 0 && q.ProbablyPrime(40) {
			if !ProbablySafePrime(twoqone, 40) {
				return nil, errors.New("safeprime generation returned non-safeprime")
			}
			return new(big.Int).Set(twoqone), nil
		}
	}

	return nil, ErrTrialsExhausted
}

// ProbablySafePrime reports whether x is probably safe prime, by calling big.Int.ProbablyPrime(n)
// on x as well as on (x-1)/2.
//
// If x is safe prime, ProbablySafePrime returns true.
// If x is chosen randomly and not safe prime, ProbablyPrime probably returns false.
func ProbablySafePrime(x *big.Int, n int) bool {
	if x.Cmp(two) <= 0 {
		return false
	}
	if !x.ProbablyPrime(n) {
		return false
	}
	y := new(big.Int).Rsh(x, 1)
	return y.ProbablyPrime(n)
}
