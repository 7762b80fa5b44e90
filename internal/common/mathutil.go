// Copyright 2016 Maarten Everts. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package common

import (
	"io"

	"github.com/go-errors/errors"
	"github.com/privacybydesign/schnorr/big"
)

// Often we need to refer to the same small constant big numbers, no point in
// creating them again and again.
var (
	bigZERO = big.NewInt(0)
	bigONE  = big.NewInt(1)
)

var ErrNoModInverse = errors.New("modular inverse does not exist")

// ModInverse returns ia, the inverse of a modulo n. It requires that a be coprime to n.
func ModInverse(a, n *big.Int) (ia *big.Int, ok bool) {
	g := new(big.Int)
	x := new(big.Int)
	g.GCD(x, nil, new(big.Int).Mod(a, n), n)
	if g.Cmp(bigONE) != 0 {
		return
	}
	if x.Sign() < 0 {
		x.Add(x, n)
	}
	return x, true
}

// ModPow computes x^y mod m. The exponent (y) can be negative, in which case it
// uses the modular inverse to compute the result (in contrast to Go's Exp
// function). It is variable time and must only see public exponents.
func ModPow(x, y, m *big.Int) (*big.Int, error) {
	if y.Sign() == -1 {
		t, ok := ModInverse(x, m)
		if !ok {
			return nil, ErrNoModInverse
		}
		return t.Exp(t, new(big.Int).Neg(y), m), nil
	}
	return new(big.Int).Exp(x, y, m), nil
}

// RandomInRange returns a uniformly random integer in [lo, hi], inclusive.
func RandomInRange(rand io.Reader, lo, hi *big.Int) (*big.Int, error) {
	if hi.Cmp(lo) < 0 {
		return nil, errors.Errorf("empty range [%v, %v]", lo, hi)
	}
	width := new(big.Int).Sub(hi, lo)
	width.Add(width, bigONE)
	r, err := big.RandInt(rand, width)
	if err != nil {
		return nil, errors.WrapPrefix(err, "random source failed", 0)
	}
	return r.Add(r, lo), nil
}

// RandomBits returns a uniformly random integer in [0, 2^numBits - 1].
func RandomBits(rand io.Reader, numBits uint) (*big.Int, error) {
	if numBits == 0 {
		return big.NewInt(0), nil
	}
	hi := new(big.Int).Lsh(bigONE, numBits)
	return RandomInRange(rand, bigZERO, hi.Sub(hi, bigONE))
}
