package audit

import (
	"crypto/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/privacybydesign/schnorr"
	"github.com/privacybydesign/schnorr/big"
	"github.com/privacybydesign/schnorr/group"
	"github.com/privacybydesign/schnorr/replay"
	"github.com/privacybydesign/schnorr/signed"
)

func toyParams(t *testing.T) *group.Params {
	params, err := group.New(big.NewInt(23), big.NewInt(11), big.NewInt(4))
	require.NoError(t, err)
	return params
}

// session runs one honest session with the log as audit sink and returns its id. Each session
// gets its own replay window, since the toy group has only ten commitments.
func session(t *testing.T, params *group.Params, key *schnorr.KeyPair, log *BoltLog) uuid.UUID {
	window, err := replay.NewWindow(time.Minute, 16, nil)
	require.NoError(t, err)
	prover, err := schnorr.NewProver(params, key)
	require.NoError(t, err)
	verifier, err := schnorr.NewVerifier(params, key.PublicKey(), window, schnorr.WithAuditSink(log))
	require.NoError(t, err)

	commitment, err := prover.BeginSession()
	require.NoError(t, err)
	challenge, err := verifier.ReceiveCommitment(commitment)
	require.NoError(t, err)
	response, err := prover.Respond(challenge)
	require.NoError(t, err)
	result, err := verifier.Verify(response)
	require.NoError(t, err)
	require.Equal(t, schnorr.Accepted, result)
	return verifier.Session()
}

func TestRecordAndLoad(t *testing.T) {
	params := toyParams(t)
	sk, err := signed.GenerateKey()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "audit.db")

	log, err := Open(path, sk, nil)
	require.NoError(t, err)

	key, err := schnorr.GenerateKey(params, rand.Reader)
	require.NoError(t, err)
	ids := []uuid.UUID{
		session(t, params, key, log),
		session(t, params, key, log),
	}

	transcript, err := log.Load(ids[0])
	require.NoError(t, err)
	require.Equal(t, ids[0], transcript.Session)
	require.Equal(t, schnorr.Accepted, transcript.Result)
	result, err := transcript.Check(params)
	require.NoError(t, err)
	require.Equal(t, schnorr.Accepted, result)

	require.Error(t, log.Record(transcript), "sessions are recorded once")
	require.Error(t, log.Record(&schnorr.Transcript{}))

	_, err = log.Load(uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, log.Close())

	reader, err := OpenReader(path, &sk.PublicKey)
	require.NoError(t, err)
	count := 0
	require.NoError(t, reader.ForEach(func(t *schnorr.Transcript) error {
		count++
		return nil
	}))
	require.Equal(t, 2, count)
	require.Error(t, reader.Record(transcript))
	require.NoError(t, reader.Close())

	other, err := signed.GenerateKey()
	require.NoError(t, err)
	reader, err = OpenReader(path, &other.PublicKey)
	require.NoError(t, err)
	_, err = reader.Load(ids[1])
	require.ErrorIs(t, err, signed.ErrInvalidSignature)
	require.Error(t, reader.ForEach(func(*schnorr.Transcript) error { return nil }))
	require.NoError(t, reader.Close())
}

func TestTampering(t *testing.T) {
	params := toyParams(t)
	sk, err := signed.GenerateKey()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "audit.db")

	log, err := Open(path, sk, nil)
	require.NoError(t, err)
	key, err := schnorr.GenerateKey(params, rand.Reader)
	require.NoError(t, err)
	id := session(t, params, key, log)

	// flip the last byte of the stored record, which belongs to the signature
	require.NoError(t, log.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(transcriptBucket)
		v := append([]byte(nil), bucket.Get(id[:])...)
		v[len(v)-1] ^= 1
		return bucket.Put(id[:], v)
	}))

	_, err = log.Load(id)
	require.Error(t, err)
	require.NoError(t, log.Close())
}
