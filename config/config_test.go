package config

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/privacybydesign/schnorr"
	"github.com/privacybydesign/schnorr/big"
	"github.com/privacybydesign/schnorr/group"
	"github.com/privacybydesign/schnorr/signed"
)

func testParams(t *testing.T) *group.Params {
	params, err := group.Generate(context.Background(), 512)
	require.NoError(t, err)
	return params
}

func groupSection(params *group.Params) string {
	return fmt.Sprintf("[group]\np = \"0x%s\"\nq = \"%s\"\ng = \"%s\"\n",
		params.P.Text(16), params.Q.String(), params.G.String())
}

func TestDecode(t *testing.T) {
	params := testParams(t)
	conf, err := Decode(groupSection(params) + `
[verifier]
challenge_bits = 128
replay_window = "1m"
replay_capacity = 100

[prover]
idle_timeout = "5s"
`)
	require.NoError(t, err)

	decoded, err := conf.Params()
	require.NoError(t, err)
	require.True(t, params.Equal(decoded))
	require.Equal(t, uint(128), conf.Verifier.ChallengeBits)
	require.Equal(t, DefaultMinOrderBits, conf.Verifier.MinOrderBits)

	timeout, err := conf.IdleTimeout()
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, timeout)

	clock := clockwork.NewFakeClock()
	window, err := conf.ReplayWindow(clock)
	require.NoError(t, err)
	require.NoError(t, window.Observe(big.NewInt(5)))
	clock.Advance(time.Minute)
	require.NoError(t, window.Observe(big.NewInt(5)), "window must be one minute")
}

func TestDefaults(t *testing.T) {
	params := testParams(t)
	conf, err := Decode(groupSection(params))
	require.NoError(t, err)
	require.Equal(t, uint(0), conf.Verifier.ChallengeBits)
	require.Equal(t, DefaultReplayCapacity, conf.Verifier.ReplayCapacity)
	timeout, err := conf.IdleTimeout()
	require.NoError(t, err)
	require.Equal(t, DefaultIdleTimeout, timeout)
}

func TestPolicy(t *testing.T) {
	params := testParams(t)
	section := groupSection(params)

	tests := map[string]string{
		"no group":            "[verifier]\nchallenge_bits = 128\n",
		"small challenges":    section + "[verifier]\nchallenge_bits = 64\n",
		"oversized challenge": section + "[verifier]\nchallenge_bits = 256\n",
		"weak policy":         section + "[verifier]\nmin_order_bits = 128\n",
		"order below policy":  section + "[verifier]\nmin_order_bits = 512\n",
		"bad window":          section + "[verifier]\nreplay_window = \"forever\"\n",
		"negative window":     section + "[verifier]\nreplay_window = \"-1m\"\n",
		"no capacity":         section + "[verifier]\nreplay_capacity = 0\n",
		"bad timeout":         section + "[prover]\nidle_timeout = \"0s\"\n",
		"unknown key":         section + "[verifier]\nchallenge_size = 128\n",
		"audit without key":   section + "[storage]\naudit_path = \"audit.db\"\n",
		"malformed":           "[group\n",
		"bad integer":         "[group]\np = \"0xzz\"\ng = \"4\"\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(data)
			require.Error(t, err)
		})
	}

	_, err := Decode("[group]\np = \"23\"\nq = \"11\"\ng = \"4\"\n")
	require.ErrorIs(t, err, schnorr.ErrInvalidParameters, "toy groups are below the minimum order")
	_, err = Decode("[group]\np = \"23\"\nq = \"11\"\ng = \"5\"\n")
	require.ErrorIs(t, err, schnorr.ErrInvalidParameters)
}

func TestEncodeLoad(t *testing.T) {
	params := testParams(t)
	conf := Default()
	conf.SetParams(params)
	conf.Verifier.ChallengeBits = 160

	var buf bytes.Buffer
	require.NoError(t, conf.Encode(&buf))
	path := filepath.Join(t.TempDir(), "schnorr.toml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, conf, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestStorage(t *testing.T) {
	params := testParams(t)
	dir := t.TempDir()

	sk, err := signed.GenerateKey()
	require.NoError(t, err)
	pemKey, err := signed.MarshalPemPrivateKey(sk)
	require.NoError(t, err)
	keyPath := filepath.Join(dir, "audit.pem")
	require.NoError(t, os.WriteFile(keyPath, pemKey, 0600))

	conf := Default()
	conf.SetParams(params)
	conf.Storage = Storage{
		RegistryPath: filepath.Join(dir, "registry.db"),
		AuditPath:    filepath.Join(dir, "audit.db"),
		AuditKeyPath: keyPath,
	}
	require.NoError(t, conf.Validate())

	reg, err := conf.OpenRegistry(params)
	require.NoError(t, err)
	log, err := conf.OpenAudit()
	require.NoError(t, err)
	window, err := conf.ReplayWindow(nil)
	require.NoError(t, err)

	ctx := context.Background()
	key, err := schnorr.GenerateKey(params, rand.Reader)
	require.NoError(t, err)
	require.NoError(t, reg.Register(ctx, "alice", key.PublicKey()))

	opts := append(conf.VerifierOptions(), schnorr.WithAuditSink(log))
	verifier, err := schnorr.NewVerifierForIdentity(ctx, params, reg, "alice", window, opts...)
	require.NoError(t, err)
	prover, err := schnorr.NewProver(params, key)
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

	transcript, err := log.Load(verifier.Session())
	require.NoError(t, err)
	require.Equal(t, "alice", transcript.Identity)

	require.NoError(t, reg.Close())
	require.NoError(t, log.Close())

	conf.Storage = Storage{}
	_, err = conf.OpenRegistry(params)
	require.Error(t, err)
	_, err = conf.OpenAudit()
	require.Error(t, err)
}
