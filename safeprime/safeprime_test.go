package safeprime

import (
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/privacybydesign/schnorr/big"

	"github.com/stretchr/testify/require"
)

type zeroReader struct{}

func (zeroReader) Read(buf []byte) (int, error) {
	for i := range buf {
		buf[i] = 0
	}
	return len(buf), nil
}

func TestGenerate(t *testing.T) {
	x, err := Generate(context.Background(), rand.Reader, 256, 0)

	require.NoError(t, err)
	require.NotNil(t, x)
	require.Equal(t, 256, x.BitLen())
	require.True(t, x.ProbablyPrime(100), "Generated number was not prime")

	y := new(big.Int).Sub(x, big.NewInt(1))
	y.Div(y, big.NewInt(2))

	require.True(t, y.ProbablyPrime(100), "Generated number was not a safe prime")
}

func TestGenerateTiny(t *testing.T) {
	x, err := Generate(context.Background(), rand.Reader, 3, 0)
	require.NoError(t, err)
	require.Equal(t, int64(7), x.Int64())
}

func TestGenerateBounded(t *testing.T) {
	_, err := Generate(context.Background(), zeroReader{}, 64, 50)
	require.ErrorIs(t, err, ErrTrialsExhausted)
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Generate(ctx, zeroReader{}, 64, 0)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGenerateConcurrent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	ints, errs := GenerateConcurrent(ctx, rand.Reader, 128)
	select {
	case x := <-ints:
		require.True(t, ProbablySafePrime(x, 40))
	case err := <-errs:
		t.Fatal(err)
	case <-ctx.Done():
		t.Fatal("no safe prime generated in time")
	}
}

func TestProbablySafePrime(t *testing.T) {
	require.True(t, ProbablySafePrime(big.NewInt(23), 40))
	require.True(t, ProbablySafePrime(big.NewInt(26903), 40))
	require.False(t, ProbablySafePrime(big.NewInt(10009), 40), "10009 is prime but not safe")
	require.False(t, ProbablySafePrime(big.NewInt(20015), 40))
	require.False(t, ProbablySafePrime(big.NewInt(2), 40))
}
