package big

import (
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func testBase64(t *testing.T, bigint *Int) *Int {
	bts, err := json.Marshal(bigint)
	require.NoError(t, err)
	unmarshaled := new(Int)
	err = json.Unmarshal(bts, unmarshaled)
	require.NoError(t, err)
	require.Zero(t, bigint.Cmp(unmarshaled))
	return unmarshaled
}

func TestInt(t *testing.T) {
	var i int64 = 42
	unmarshaled := testBase64(t, NewInt(i))
	require.Equal(t, i, unmarshaled.Int64())
}

func TestZero(t *testing.T) {
	unmarshaled := testBase64(t, NewInt(0))
	require.Equal(t, int64(0), unmarshaled.Int64())
}

func TestBigInt(t *testing.T) {
	s := "8931748931759284679376938475395713602744853768923750102"
	bigint, ok := new(Int).SetString(s, 10)
	require.True(t, ok)
	unmarshaled := testBase64(t, bigint)
	require.Equal(t, s, unmarshaled.String())
}

func TestDecimalJSON(t *testing.T) {
	var i Int
	require.NoError(t, json.Unmarshal([]byte("12345678901234567890"), &i))
	require.Equal(t, "12345678901234567890", i.String())
}

func TestRandom(t *testing.T) {
	max := new(Int).Lsh(NewInt(1), 100)
	bigint, err := RandInt(rand.Reader, max)
	require.NoError(t, err)
	testBase64(t, bigint)
}

func TestNegative(t *testing.T) {
	_, err := json.Marshal(NewInt(-42))
	require.Error(t, err)
	_, err = NewInt(-1).MarshalBinary()
	require.Error(t, err)
	_, err = NewInt(-1).AppendCanonical(nil)
	require.Error(t, err)
}

func TestCanonical(t *testing.T) {
	buf, err := NewInt(23).AppendCanonical(nil)
	require.NoError(t, err)
	buf, err = NewInt(0).AppendCanonical(buf)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 1, 23, 0, 0, 0, 0}, buf)

	first, rest, err := ReadCanonical(buf)
	require.NoError(t, err)
	require.Equal(t, int64(23), first.Int64())
	second, rest, err := ReadCanonical(rest)
	require.NoError(t, err)
	require.Zero(t, second.Sign())
	require.Empty(t, rest)
}

func TestCanonicalMalformed(t *testing.T) {
	_, _, err := ReadCanonical([]byte{0, 0})
	require.ErrorIs(t, err, ErrTruncated)

	_, _, err = ReadCanonical([]byte{0, 0, 0, 2, 1})
	require.ErrorIs(t, err, ErrTruncated)

	_, _, err = ReadCanonical([]byte{0, 0, 0, 2, 0, 1})
	require.Error(t, err)
}

func TestBinary(t *testing.T) {
	x, ok := new(Int).SetString("0x0102030405060708090a", 0)
	require.True(t, ok)
	bts, err := x.MarshalBinary()
	require.NoError(t, err)
	y := new(Int)
	require.NoError(t, y.UnmarshalBinary(bts))
	require.Zero(t, x.Cmp(y))
}

func TestWipe(t *testing.T) {
	x, ok := new(Int).SetString("98765432109876543210987654321", 10)
	require.True(t, ok)
	words := x.Bits()
	x.Wipe()
	require.Zero(t, x.Sign())
	for _, w := range words {
		require.Zero(t, w)
	}

	var nilInt *Int
	require.NotPanics(t, nilInt.Wipe)
}
