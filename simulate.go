package schnorr

import (
	"github.com/privacybydesign/schnorr/big"
	"github.com/privacybydesign/schnorr/group"
	"github.com/privacybydesign/schnorr/internal/common"
)

// SimulateTranscript produces an accepting transcript (r, c, s) for y without knowing its
// discrete logarithm, by choosing c and s uniformly from [0, q-1] and setting r = g^s * y^-c.
// Simulated transcripts are distributed like honest ones, which is what makes the protocol
// zero-knowledge; they prove nothing, because r was chosen after c.
func SimulateTranscript(params *group.Params, y *big.Int) (r, c, s *big.Int, err error) {
	if err = ValidatePublicKey(params, y); err != nil {
		return nil, nil, nil, err
	}
	c = common.FastRandomBigInt(params.Q)
	s = common.FastRandomBigInt(params.Q)
	yInvC, err := common.ModPow(y, new(big.Int).Neg(c), params.P)
	if err != nil {
		return nil, nil, nil, err
	}
	r = params.Mul(params.GExp(s), yInvC)
	return r, c, s, nil
}
