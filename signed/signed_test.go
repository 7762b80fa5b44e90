package signed

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/privacybydesign/schnorr/big"
)

// test struct for signing, verifying and (un)marshaling
type test struct {
	X string
	Y *big.Int
	Z int
	T *test // allow recursion
}

func TestSigned(t *testing.T) {
	sk, err := GenerateKey()
	require.NoError(t, err)

	i, err := big.RandInt(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	require.NoError(t, err)

	var (
		before = test{X: "hello", Y: i, Z: 12, T: &test{X: "world"}}
		after  test
	)

	signedmsg, err := MarshalSign(sk, before)
	require.NoError(t, err)

	require.NoError(t, UnmarshalVerify(&sk.PublicKey, signedmsg, &after))
	require.Equal(t, before.X, after.X)
	require.Zero(t, before.Y.Cmp(after.Y))
	require.Equal(t, before.Z, after.Z)
	require.Equal(t, "world", after.T.X)
}

func TestWrongKey(t *testing.T) {
	sk, err := GenerateKey()
	require.NoError(t, err)
	other, err := GenerateKey()
	require.NoError(t, err)

	signedmsg, err := MarshalSign(sk, test{X: "hello"})
	require.NoError(t, err)

	var after test
	require.ErrorIs(t, UnmarshalVerify(&other.PublicKey, signedmsg, &after), ErrInvalidSignature)
	require.Empty(t, after.X)
}

func TestTampered(t *testing.T) {
	sk, err := GenerateKey()
	require.NoError(t, err)

	msg := []byte("transcript")
	sig, err := Sign(sk, msg)
	require.NoError(t, err)
	require.NoError(t, Verify(&sk.PublicKey, msg, sig))
	require.ErrorIs(t, Verify(&sk.PublicKey, []byte("transcripT"), sig), ErrInvalidSignature)
}

func TestPemRoundtrip(t *testing.T) {
	sk, err := GenerateKey()
	require.NoError(t, err)

	skPem, err := MarshalPemPrivateKey(sk)
	require.NoError(t, err)
	sk2, err := UnmarshalPemPrivateKey(skPem)
	require.NoError(t, err)
	require.True(t, sk.Equal(sk2))

	pkPem, err := MarshalPemPublicKey(&sk.PublicKey)
	require.NoError(t, err)
	pk, err := UnmarshalPemPublicKey(pkPem)
	require.NoError(t, err)
	require.True(t, sk.PublicKey.Equal(pk))

	_, err = UnmarshalPemPrivateKey(pkPem)
	require.Error(t, err)
	_, err = UnmarshalPemPublicKey([]byte("not pem"))
	require.Error(t, err)
}
