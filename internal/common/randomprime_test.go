package common

import (
	"bytes"
	"context"
	"crypto/rand"
	"testing"

	"github.com/privacybydesign/schnorr/big"
	"github.com/stretchr/testify/require"
)

func TestRandomPrime(t *testing.T) {
	for _, bits := range []uint{2, 3, 8, 9, 64, 257} {
		p, err := RandomPrime(context.Background(), rand.Reader, bits, 0)
		require.NoError(t, err)
		require.Equal(t, int(bits), p.BitLen(), "wrong size for %d bits", bits)
		require.True(t, p.ProbablyPrime(40), "%v is not prime", p)
	}
}

func TestRandomPrimeTooSmall(t *testing.T) {
	_, err := RandomPrime(context.Background(), rand.Reader, 1, 0)
	require.Error(t, err)
}

func TestRandomPrimeBounded(t *testing.T) {
	// 0xFF..FF with bit 0 set: 2^64 - 1 = 3 * 5 * 17 * 257 * ... is composite
	ones := bytes.NewReader(bytes.Repeat([]byte{0xff}, 8*10))
	_, err := RandomPrime(context.Background(), ones, 64, 10)
	require.ErrorIs(t, err, ErrTrialsExhausted)
}

func TestRandomPrimeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ones := bytes.NewReader(bytes.Repeat([]byte{0xff}, 8*1000))
	_, err := RandomPrime(ctx, ones, 64, 1000)
	require.ErrorIs(t, err, context.Canceled)
}

func TestHasSmallFactor(t *testing.T) {
	require.True(t, HasSmallFactor(big.NewInt(15)))
	require.False(t, HasSmallFactor(big.NewInt(13)))
	require.False(t, HasSmallFactor(big.NewInt(59)))
	require.True(t, HasSmallFactor(big.NewInt(53*59)))
}

func TestZeroizeBytes(t *testing.T) {
	buf := []byte{1, 2, 3}
	ZeroizeBytes(buf)
	require.Equal(t, []byte{0, 0, 0}, buf)
}
