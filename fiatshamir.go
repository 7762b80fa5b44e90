package schnorr

import (
	"io"

	"github.com/go-errors/errors"

	"github.com/privacybydesign/schnorr/big"
	"github.com/privacybydesign/schnorr/group"
	"github.com/privacybydesign/schnorr/internal/common"
)

const fiatShamirDomain = "schnorr/fiat-shamir/v1"

// Proof is a non-interactive proof of knowledge of the discrete logarithm of a public key.
// The challenge is not included; it is recomputed from the commitment.
type Proof struct {
	R *big.Int `json:"r"`
	S *big.Int `json:"s"`
}

// Prove produces a non-interactive proof for key, bound to context. The context should identify
// the purpose of the proof, for example a verifier nonce or a message; proofs only verify under
// the same context.
func Prove(params *group.Params, key *KeyPair, context []byte, rand io.Reader) (*Proof, error) {
	if !params.Equal(key.Params()) {
		return nil, errors.WrapPrefix(ErrInvalidParameters, "key pair belongs to another group", 0)
	}
	k, err := params.RandomExponent(rand)
	if err != nil {
		return nil, err
	}
	defer k.Wipe()

	r := params.GExpSecret(k)
	c := fiatShamirChallenge(params, key.public, r, context)
	s, err := key.response(k, c)
	if err != nil {
		return nil, err
	}
	return &Proof{R: r, S: s}, nil
}

// VerifyProof checks a proof made by Prove. An invalid proof yields Rejected without error.
func VerifyProof(params *group.Params, y *big.Int, proof *Proof, context []byte) (Result, error) {
	if err := ValidatePublicKey(params, y); err != nil {
		return Rejected, err
	}
	if proof == nil || proof.R == nil || proof.S == nil {
		return Rejected, errors.WrapPrefix(ErrInvalidResponse, "incomplete proof", 0)
	}
	if !params.InRange(proof.R) {
		return Rejected, errors.WrapPrefix(ErrInvalidCommitment, "commitment not in [1, p-1]", 0)
	}

	result := Rejected
	if params.InScalarRange(proof.S) {
		c := fiatShamirChallenge(params, y, proof.R, context)
		if check(params, y, proof.R, c, proof.S) {
			result = Accepted
		}
	}
	SessionOutcomes.WithLabelValues(roleNonInteractive, result.String()).Inc()
	return result, nil
}

// VerifyProofOnce is VerifyProof followed, for accepted proofs, by recording the commitment with
// guard, so that the same proof is refused with ErrReplayDetected when presented again.
func VerifyProofOnce(params *group.Params, y *big.Int, proof *Proof, context []byte, guard ReplayGuard) (Result, error) {
	result, err := VerifyProof(params, y, proof, context)
	if err != nil || result != Accepted {
		return result, err
	}
	if err = guard.Observe(proof.R); err != nil {
		if errors.Is(err, ErrReplayDetected) {
			ReplayDetections.Inc()
			Logger.Warn("Replayed proof")
		}
		return Rejected, err
	}
	return Accepted, nil
}

// fiatShamirChallenge hashes the group, the public key, the commitment and the context into
// [0, q-1].
func fiatShamirChallenge(params *group.Params, y, r *big.Int, context []byte) *big.Int {
	fp := params.Fingerprint()
	// The leading 1 byte keeps leading zeros of the context significant.
	ctx := new(big.Int).SetBytes(append([]byte{1}, context...))
	return common.HashToRange(fiatShamirDomain, params.Q, new(big.Int).SetBytes(fp[:]), y, r, ctx)
}
