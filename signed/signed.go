// Package signed seals records with ECDSA P-256 signatures, so that stored proof transcripts can
// later be shown not to have been altered. It contains
// (1) convenience functions for ECDSA private and public key handling, and for signing and
// verifying byte slices;
// (2) functions for marshaling structs to signed bytes, and verifying and unmarshaling signed bytes
// back to structs.
package signed

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"

	"github.com/go-errors/errors"

	"github.com/privacybydesign/schnorr/cbor"
)

// ErrInvalidSignature is returned when a signature does not verify.
var ErrInvalidSignature = errors.New("ecdsa signature was invalid")

type (
	// Message is a signed message, created and signed by MarshalSign, and verified and parsed
	// by UnmarshalVerify.
	Message []byte

	// message-signature tuple
	tuple struct {
		Msg, Sig []byte
	}
)

func GenerateKey() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
}

// Key (un)marshaling

func UnmarshalPublicKey(bts []byte) (*ecdsa.PublicKey, error) {
	genericPk, err := x509.ParsePKIXPublicKey(bts)
	if err != nil {
		return nil, err
	}
	pk, ok := genericPk.(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("invalid ecdsa public key")
	}
	return pk, nil
}

func UnmarshalPemPublicKey(bts []byte) (*ecdsa.PublicKey, error) {
	block, err := decodePem(bts, "PUBLIC KEY")
	if err != nil {
		return nil, err
	}
	return UnmarshalPublicKey(block.Bytes)
}

func MarshalPemPublicKey(pk *ecdsa.PublicKey) ([]byte, error) {
	bts, err := x509.MarshalPKIXPublicKey(pk)
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to serialize public key", 0)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: bts}), nil
}

func UnmarshalPemPrivateKey(bts []byte) (*ecdsa.PrivateKey, error) {
	block, err := decodePem(bts, "EC PRIVATE KEY")
	if err != nil {
		return nil, err
	}
	return x509.ParseECPrivateKey(block.Bytes)
}

func MarshalPemPrivateKey(sk *ecdsa.PrivateKey) ([]byte, error) {
	bts, err := x509.MarshalECPrivateKey(sk)
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to serialize private key", 0)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: bts}), nil
}

func decodePem(bts []byte, typ string) (*pem.Block, error) {
	block, _ := pem.Decode(bts)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	if block.Type != typ {
		return nil, errors.Errorf("expected PEM block of type %s, got %s", typ, block.Type)
	}
	return block, nil
}

// Sign and verify bytes

// Sign returns an ASN.1 encoded ECDSA signature over the SHA-256 hash of bts.
func Sign(sk *ecdsa.PrivateKey, bts []byte) ([]byte, error) {
	hash := sha256.Sum256(bts)
	return ecdsa.SignASN1(rand.Reader, sk, hash[:])
}

func Verify(pk *ecdsa.PublicKey, bts []byte, signature []byte) error {
	hash := sha256.Sum256(bts)
	if !ecdsa.VerifyASN1(pk, hash[:], signature) {
		return ErrInvalidSignature
	}
	return nil
}

// create, verify and (un)marshal signed messages

// MarshalSign marshals the message to deterministic CBOR, signs the resulting bytes, and returns
// signed message bytes suitable for verifying with UnmarshalVerify.
func MarshalSign(sk *ecdsa.PrivateKey, message interface{}) (Message, error) {
	bts, err := cbor.Marshal(message)
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to marshal message", 0)
	}

	signature, err := Sign(sk, bts)
	if err != nil {
		return nil, err
	}

	return cbor.Marshal(&tuple{bts, signature})
}

// UnmarshalVerify verifies the signature of a Message created by MarshalSign, and unmarshals the
// message bytes into dst. Nothing is written to dst if the signature is invalid.
func UnmarshalVerify(pk *ecdsa.PublicKey, signed Message, dst interface{}) error {
	var tmp tuple
	if err := cbor.UnmarshalStrict(signed, &tmp); err != nil {
		return err
	}

	if err := Verify(pk, tmp.Msg, tmp.Sig); err != nil {
		return err
	}

	return cbor.Unmarshal(tmp.Msg, dst)
}
