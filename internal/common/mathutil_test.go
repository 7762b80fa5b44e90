package common

import (
	"crypto/rand"
	"testing"

	"github.com/privacybydesign/schnorr/big"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModInverse(t *testing.T) {
	inv, ok := ModInverse(big.NewInt(2), big.NewInt(23))
	require.True(t, ok)
	assert.Equal(t, int64(12), inv.Int64())

	_, ok = ModInverse(big.NewInt(6), big.NewInt(9))
	assert.False(t, ok, "6 has no inverse mod 9")

	inv, ok = ModInverse(big.NewInt(-5), big.NewInt(11))
	require.True(t, ok)
	check := new(big.Int).Mul(inv, big.NewInt(-5))
	assert.Equal(t, int64(1), check.Mod(check, big.NewInt(11)).Int64())
}

func TestModPow(t *testing.T) {
	p := big.NewInt(23)
	r, err := ModPow(big.NewInt(4), big.NewInt(3), p)
	require.NoError(t, err)
	assert.Equal(t, int64(18), r.Int64())

	// 2^-5 * 2^5 == 1
	inv, err := ModPow(big.NewInt(2), big.NewInt(-5), p)
	require.NoError(t, err)
	fwd, err := ModPow(big.NewInt(2), big.NewInt(5), p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inv.Mul(inv, fwd).Mod(inv, p).Int64())

	_, err = ModPow(big.NewInt(0), big.NewInt(-1), p)
	assert.ErrorIs(t, err, ErrNoModInverse)
}

func TestRandomInRange(t *testing.T) {
	lo, hi := big.NewInt(1), big.NewInt(10)
	seen := map[int64]bool{}
	for i := 0; i < 1000; i++ {
		r, err := RandomInRange(rand.Reader, lo, hi)
		require.NoError(t, err)
		require.True(t, r.Cmp(lo) >= 0 && r.Cmp(hi) <= 0)
		seen[r.Int64()] = true
	}
	assert.Len(t, seen, 10)

	_, err := RandomInRange(rand.Reader, hi, lo)
	assert.Error(t, err)
}

func TestRandomBits(t *testing.T) {
	for i := 0; i < 100; i++ {
		r, err := RandomBits(rand.Reader, 7)
		require.NoError(t, err)
		require.LessOrEqual(t, r.BitLen(), 7)
	}
	zero, err := RandomBits(rand.Reader, 0)
	require.NoError(t, err)
	assert.Zero(t, zero.Sign())
}
