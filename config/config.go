// Package config reads the deployment configuration of provers and verifiers from TOML: the
// group parameters, the verifier security policy, the replay window and storage locations.
//
//	[group]
//	p = "0x..."
//	q = "0x..."
//	g = "0x..."
//
//	[verifier]
//	challenge_bits = 0        # 0: challenges from [0, q-1]
//	min_order_bits = 256
//	replay_window = "10m"
//	replay_capacity = 65536
//
//	[prover]
//	idle_timeout = "30s"
//
//	[storage]
//	registry_path = "registry.db"
//	audit_path = "audit.db"
//	audit_key_path = "audit.pem"
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-errors/errors"
	"github.com/jonboulle/clockwork"
	bolt "go.etcd.io/bbolt"

	"github.com/privacybydesign/schnorr"
	"github.com/privacybydesign/schnorr/audit"
	"github.com/privacybydesign/schnorr/big"
	"github.com/privacybydesign/schnorr/group"
	"github.com/privacybydesign/schnorr/registry"
	"github.com/privacybydesign/schnorr/replay"
	"github.com/privacybydesign/schnorr/signed"
)

// Defaults and lower bounds of the security policy.
const (
	DefaultMinOrderBits   = 256
	DefaultReplayWindow   = 10 * time.Minute
	DefaultReplayCapacity = 1 << 16
	DefaultIdleTimeout    = 30 * time.Second

	// MinChallengeBits is the smallest challenge size accepted, other than 0 which means the
	// whole of [0, q-1].
	MinChallengeBits = 128
)

// boltOptions makes opening a database that another process holds fail instead of blocking.
var boltOptions = &bolt.Options{Timeout: time.Second}

type Config struct {
	Group    Group    `toml:"group"`
	Verifier Verifier `toml:"verifier"`
	Prover   Prover   `toml:"prover"`
	Storage  Storage  `toml:"storage"`
}

// Group holds the group parameters as decimal or 0x-prefixed hexadecimal strings. An empty Q
// stands for the safe-prime order (p-1)/2.
type Group struct {
	P string `toml:"p"`
	Q string `toml:"q,omitempty"`
	G string `toml:"g"`
}

type Verifier struct {
	ChallengeBits  uint   `toml:"challenge_bits"`
	MinOrderBits   int    `toml:"min_order_bits"`
	ReplayWindow   string `toml:"replay_window"`
	ReplayCapacity int    `toml:"replay_capacity"`
}

type Prover struct {
	IdleTimeout string `toml:"idle_timeout"`
}

type Storage struct {
	RegistryPath string `toml:"registry_path,omitempty"`
	AuditPath    string `toml:"audit_path,omitempty"`
	AuditKeyPath string `toml:"audit_key_path,omitempty"`
}

// Default returns a configuration with the default policy and no group.
func Default() *Config {
	return &Config{
		Verifier: Verifier{
			MinOrderBits:   DefaultMinOrderBits,
			ReplayWindow:   DefaultReplayWindow.String(),
			ReplayCapacity: DefaultReplayCapacity,
		},
		Prover: Prover{IdleTimeout: DefaultIdleTimeout.String()},
	}
}

// Load reads and validates the configuration file at path. Settings missing from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	bts, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to read configuration", 0)
	}
	return Decode(string(bts))
}

// Decode parses and validates a TOML configuration. Unknown keys are an error.
func Decode(data string) (*Config, error) {
	conf := Default()
	md, err := toml.Decode(data, conf)
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to parse configuration", 0)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Errorf("unknown configuration keys: %s", strings.Join(keys, ", "))
	}
	if err = conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// SetParams stores params in the [group] section in hexadecimal.
func (c *Config) SetParams(params *group.Params) {
	c.Group = Group{
		P: "0x" + params.P.Text(16),
		Q: "0x" + params.Q.Text(16),
		G: "0x" + params.G.Text(16),
	}
}

// Validate checks the group parameters against the policy, and the remaining settings.
func (c *Config) Validate() error {
	params, err := c.Params()
	if err != nil {
		return err
	}
	if c.Verifier.MinOrderBits < DefaultMinOrderBits {
		return errors.Errorf("min_order_bits must be at least %d, got %d", DefaultMinOrderBits, c.Verifier.MinOrderBits)
	}
	if params.Q.BitLen() < c.Verifier.MinOrderBits {
		return errors.WrapPrefix(schnorr.ErrInvalidParameters,
			fmt.Sprintf("%d-bit group order is below the minimum of %d bits", params.Q.BitLen(), c.Verifier.MinOrderBits), 0)
	}
	if bits := c.Verifier.ChallengeBits; bits != 0 && bits < MinChallengeBits {
		return errors.Errorf("challenge_bits must be 0 or at least %d, got %d", MinChallengeBits, bits)
	}
	if err = params.CheckChallengeBits(c.Verifier.ChallengeBits); err != nil {
		return err
	}
	if c.Verifier.ReplayCapacity <= 0 {
		return errors.Errorf("replay_capacity must be positive, got %d", c.Verifier.ReplayCapacity)
	}
	if _, err = c.replayWindow(); err != nil {
		return err
	}
	if _, err = c.IdleTimeout(); err != nil {
		return err
	}
	if (c.Storage.AuditPath == "") != (c.Storage.AuditKeyPath == "") {
		return errors.New("audit_path and audit_key_path must be set together")
	}
	return nil
}

// Params parses and validates the [group] section.
func (c *Config) Params() (*group.Params, error) {
	if c.Group.P == "" || c.Group.G == "" {
		return nil, errors.WrapPrefix(schnorr.ErrInvalidParameters, "[group] requires p and g", 0)
	}
	p, err := parseInt("p", c.Group.P)
	if err != nil {
		return nil, err
	}
	g, err := parseInt("g", c.Group.G)
	if err != nil {
		return nil, err
	}
	var q *big.Int
	if c.Group.Q != "" {
		if q, err = parseInt("q", c.Group.Q); err != nil {
			return nil, err
		}
	}
	return group.New(p, q, g)
}

// VerifierOptions returns the verifier options implied by the [verifier] section.
func (c *Config) VerifierOptions() []schnorr.VerifierOption {
	return []schnorr.VerifierOption{schnorr.WithChallengeBits(c.Verifier.ChallengeBits)}
}

// ReplayWindow returns an empty replay window as configured. A nil clock means the real clock.
func (c *Config) ReplayWindow(clock clockwork.Clock) (*replay.Window, error) {
	window, err := c.replayWindow()
	if err != nil {
		return nil, err
	}
	return replay.NewWindow(window, c.Verifier.ReplayCapacity, clock)
}

// IdleTimeout returns the deadline after which idle prover sessions should be aborted.
func (c *Config) IdleTimeout() (time.Duration, error) {
	return parseDuration("idle_timeout", c.Prover.IdleTimeout)
}

// OpenRegistry opens the public key registry at registry_path.
func (c *Config) OpenRegistry(params *group.Params) (*registry.Bolt, error) {
	if c.Storage.RegistryPath == "" {
		return nil, errors.New("no registry_path configured")
	}
	return registry.OpenBolt(c.Storage.RegistryPath, params, nil, boltOptions)
}

// OpenAudit opens the audit log at audit_path, sealing with the PEM-encoded ECDSA key at
// audit_key_path.
func (c *Config) OpenAudit() (*audit.BoltLog, error) {
	if c.Storage.AuditPath == "" {
		return nil, errors.New("no audit_path configured")
	}
	bts, err := os.ReadFile(c.Storage.AuditKeyPath)
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to read audit key", 0)
	}
	sk, err := signed.UnmarshalPemPrivateKey(bts)
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to parse audit key", 0)
	}
	return audit.Open(c.Storage.AuditPath, sk, boltOptions)
}

func (c *Config) replayWindow() (time.Duration, error) {
	return parseDuration("replay_window", c.Verifier.ReplayWindow)
}

func parseDuration(name, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.WrapPrefix(err, name, 0)
	}
	if d <= 0 {
		return 0, errors.Errorf("%s must be positive, got %s", name, s)
	}
	return d, nil
}

func parseInt(name, s string) (*big.Int, error) {
	i, ok := new(big.Int).SetString(strings.TrimSpace(s), 0)
	if !ok || i.Sign() < 0 {
		return nil, errors.WrapPrefix(schnorr.ErrInvalidParameters, name+" is not a non-negative integer", 0)
	}
	return i, nil
}
