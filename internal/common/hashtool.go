package common

import (
	"encoding/asn1"

	"golang.org/x/crypto/sha3"

	"github.com/privacybydesign/schnorr/big"

	gobig "math/big"
)

// statisticalDistance is the number of hash bits drawn beyond the bit length of the modulus,
// so that reducing the hash output modulo the modulus is 2^-128 close to uniform.
const statisticalDistance = 128

// HashCommit returns the DER encoding of the domain separator, the number of values, and the
// values themselves. A nil value is encoded as zero. The encoding is injective, which makes it
// suitable as hash input for the Fiat-Shamir heuristic.
func HashCommit(domain string, values []*big.Int) []byte {
	tmp := make([]interface{}, len(values)+2)
	tmp[0] = domain
	tmp[1] = gobig.NewInt(int64(len(values)))
	for i, v := range values {
		if v == nil {
			tmp[i+2] = new(gobig.Int)
			continue
		}
		tmp[i+2] = v.Go()
	}
	r, err := asn1.Marshal(tmp)
	if err != nil {
		panic(err) // only negative or unsupported values make Marshal fail, neither occurs here
	}
	return r
}

// HashToRange hashes the values with SHAKE256 into a number in [0, modulus).
func HashToRange(domain string, modulus *big.Int, values ...*big.Int) *big.Int {
	out := make([]byte, (modulus.BitLen()+statisticalDistance+7)/8)
	h := sha3.NewShake256()
	_, _ = h.Write(HashCommit(domain, values))
	_, _ = h.Read(out)
	res := new(big.Int).SetBytes(out)
	return res.Mod(res, modulus)
}

// Fingerprint returns the SHA3-256 hash of data.
func Fingerprint(data []byte) [32]byte {
	return sha3.Sum256(data)
}
