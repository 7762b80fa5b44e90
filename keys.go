package schnorr

import (
	"fmt"
	"io"
	"sync"

	"github.com/go-errors/errors"

	"github.com/privacybydesign/schnorr/big"
	"github.com/privacybydesign/schnorr/group"
)

const redacted = "[redacted]"

var errSecretMarshal = errors.New("secret exponents cannot be serialized")

// Secret holds a secret exponent. It can be neither printed nor serialized: formatting yields
// "[redacted]" and every marshaling method fails.
type Secret struct {
	x *big.Int
}

func (s *Secret) String() string             { return redacted }
func (s *Secret) GoString() string           { return redacted }
func (s *Secret) Format(f fmt.State, _ rune) { _, _ = io.WriteString(f, redacted) }

func (s *Secret) MarshalJSON() ([]byte, error)   { return nil, errSecretMarshal }
func (s *Secret) MarshalText() ([]byte, error)   { return nil, errSecretMarshal }
func (s *Secret) MarshalBinary() ([]byte, error) { return nil, errSecretMarshal }
func (s *Secret) MarshalCBOR() ([]byte, error)   { return nil, errSecretMarshal }
func (s *Secret) GobEncode() ([]byte, error)     { return nil, errSecretMarshal }

func (s *Secret) wipe() {
	s.x.Wipe()
	s.x = nil
}

// KeyPair is a prover's long-term key: a secret x in [1, q-1] and the public key y = g^x mod p.
// It is safe for concurrent use by any number of provers.
type KeyPair struct {
	params *group.Params
	public *big.Int

	mu     sync.RWMutex
	secret *Secret
}

// GenerateKey samples a fresh key pair from rand.
func GenerateKey(params *group.Params, rand io.Reader) (*KeyPair, error) {
	x, err := params.RandomExponent(rand)
	if err != nil {
		return nil, err
	}
	return newKeyPair(params, x), nil
}

// NewKeyPair imports an existing secret exponent, which must lie in [1, q-1]. x is copied.
func NewKeyPair(params *group.Params, x *big.Int) (*KeyPair, error) {
	if x == nil || x.Sign() <= 0 || !params.InScalarRange(x) {
		return nil, errors.WrapPrefix(ErrInvalidParameters, "secret exponent not in [1, q-1]", 0)
	}
	return newKeyPair(params, new(big.Int).Set(x)), nil
}

func newKeyPair(params *group.Params, x *big.Int) *KeyPair {
	return &KeyPair{
		params: params,
		public: params.GExpSecret(x),
		secret: &Secret{x: x},
	}
}

// PublicKey returns a copy of y.
func (kp *KeyPair) PublicKey() *big.Int {
	return new(big.Int).Set(kp.public)
}

// Params returns the group the key lives in.
func (kp *KeyPair) Params() *group.Params {
	return kp.params
}

// Wipe erases the secret exponent. Provers using the key fail with ErrInvalidState afterwards.
func (kp *KeyPair) Wipe() {
	kp.mu.Lock()
	defer kp.mu.Unlock()
	if kp.secret != nil {
		kp.secret.wipe()
		kp.secret = nil
	}
}

// response computes k + c*x mod q.
func (kp *KeyPair) response(k, c *big.Int) (*big.Int, error) {
	kp.mu.RLock()
	defer kp.mu.RUnlock()
	if kp.secret == nil {
		return nil, errors.WrapPrefix(ErrInvalidState, "key pair has been wiped", 0)
	}
	return kp.params.ScalarMulAdd(k, c, kp.secret.x), nil
}

// ValidatePublicKey checks that y lies in the order-q subgroup and is not the identity.
func ValidatePublicKey(params *group.Params, y *big.Int) error {
	if y == nil || !params.InSubgroup(y) {
		return errors.WrapPrefix(ErrInvalidPublicKey, "y^q != 1 or y out of range", 0)
	}
	if y.Cmp(big.NewInt(1)) == 0 {
		return errors.WrapPrefix(ErrInvalidPublicKey, "y is the identity", 0)
	}
	return nil
}
