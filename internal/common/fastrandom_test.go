package common

import (
	"bytes"
	"sync"
	"testing"

	"github.com/privacybydesign/schnorr/big"
	"github.com/stretchr/testify/require"
)

func testSeed() *[32]byte {
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(i)
	}
	return &seed
}

func TestCPRNGChunking(t *testing.T) {
	rng, err := NewCPRNG(testSeed())
	require.NoError(t, err)
	var expected [256]byte
	_, err = rng.Read(expected[:])
	require.NoError(t, err)
	require.NotEqual(t, make([]byte, 256), expected[:])

	for _, chunk := range []int{1, 7, 16, 17, 31, 64, 100} {
		rng, err = NewCPRNG(testSeed())
		require.NoError(t, err)
		var got []byte
		for len(got) < len(expected) {
			n := chunk
			if rem := len(expected) - len(got); rem < n {
				n = rem
			}
			buf := make([]byte, n)
			_, err = rng.Read(buf)
			require.NoError(t, err)
			got = append(got, buf...)
		}
		require.Equal(t, expected[:], got, "chunk size %d", chunk)
	}
}

func TestCPRNGConcurrent(t *testing.T) {
	rng, err := NewCPRNG(testSeed())
	require.NoError(t, err)

	const workers, size = 8, 64
	out := make([][]byte, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i] = make([]byte, size)
			_, _ = rng.Read(out[i])
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		for j := i + 1; j < workers; j++ {
			require.False(t, bytes.Equal(out[i], out[j]), "readers %d and %d got the same bytes", i, j)
		}
	}
}

func TestFastRandomBigInt(t *testing.T) {
	limit := big.NewInt(11)
	for i := 0; i < 200; i++ {
		r := FastRandomBigInt(limit)
		require.True(t, r.Sign() >= 0 && r.Cmp(limit) < 0)
	}
}
