// Copyright 2016 Maarten Everts. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package common

import (
	"context"
	"io"

	"github.com/go-errors/errors"

	"github.com/privacybydesign/schnorr/big"
)

// smallPrimes lets us cheaply discard most composite candidates before running
// ProbablyPrime. Their product fits in a uint64. Two is absent because candidates
// are odd by construction.
var smallPrimes = []uint8{
	3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53,
}

var smallPrimesProduct = new(big.Int).SetUint64(16294579238595022365)

// ErrTrialsExhausted is returned when a bounded prime search gives up.
var ErrTrialsExhausted = errors.New("no prime found within the trial bound")

// HasSmallFactor reports whether x is divisible by one of the small odd primes,
// x itself excluded.
func HasSmallFactor(x *big.Int) bool {
	mod := new(big.Int).Mod(x, smallPrimesProduct).Uint64()
	for _, prime := range smallPrimes {
		if mod%uint64(prime) == 0 && !(x.IsInt64() && x.Int64() == int64(prime)) {
			return true
		}
	}
	return false
}

// RandomPrime returns a random probable prime of exactly bits bits, trying at most
// maxTrials candidates (0 means unbounded). It returns ErrTrialsExhausted when the bound
// is hit and ctx.Err() when ctx is cancelled.
func RandomPrime(ctx context.Context, rand io.Reader, bits uint, maxTrials int) (*big.Int, error) {
	if bits < 2 {
		return nil, errors.New("RandomPrime: prime size must be at least 2-bit")
	}

	b := bits % 8
	if b == 0 {
		b = 8
	}
	bytes := make([]byte, (bits+7)/8)
	p := new(big.Int)

	for trial := 1; maxTrials == 0 || trial <= maxTrials; trial++ {
		if trial%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if _, err := io.ReadFull(rand, bytes); err != nil {
			return nil, errors.WrapPrefix(err, "random source failed", 0)
		}

		// Clear bits above the requested size, then force the top bit so the
		// candidate has exactly the requested length, and force it odd.
		bytes[0] &= uint8(int(1<<b) - 1)
		bytes[0] |= 1 << (b - 1)
		bytes[len(bytes)-1] |= 1

		p.SetBytes(bytes)
		if p.BitLen() != int(bits) {
			continue
		}
		if HasSmallFactor(p) {
			continue
		}
		if p.ProbablyPrime(20) {
			return p, nil
		}
	}
	return nil, ErrTrialsExhausted
}
