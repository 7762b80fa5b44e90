package group

import (
	"github.com/cronokirby/saferith"

	"github.com/privacybydesign/schnorr/big"
)

// Secret exponents go through saferith, whose arithmetic is constant time in the values of its
// operands: the running time depends only on the announced sizes, which are fixed to the sizes
// of p and q. Public exponents go through the precomputed table or math/big, which are not.

// ExpSecret returns base^exp mod p in constant time. exp must lie in [0, q-1].
func (p *Params) ExpSecret(base, exp *big.Int) *big.Int {
	b := new(saferith.Nat).SetBig(base.Go(), p.P.BitLen())
	e := new(saferith.Nat).SetBig(exp.Go(), p.Q.BitLen())
	r := new(saferith.Nat).Exp(b, e, p.pMod)
	wipeNat(e, p.Q.BitLen())
	return big.Convert(r.Big())
}

// GExpSecret returns g^exp mod p in constant time. exp must lie in [0, q-1].
func (p *Params) GExpSecret(exp *big.Int) *big.Int {
	return p.ExpSecret(p.G, exp)
}

// ScalarMulAdd returns k + c*x mod q in constant time. All operands must lie in [0, q-1].
func (p *Params) ScalarMulAdd(k, c, x *big.Int) *big.Int {
	bits := p.Q.BitLen()
	kn := new(saferith.Nat).SetBig(k.Go(), bits)
	cn := new(saferith.Nat).SetBig(c.Go(), bits)
	xn := new(saferith.Nat).SetBig(x.Go(), bits)
	s := new(saferith.Nat).ModMul(cn, xn, p.qMod)
	s.ModAdd(s, kn, p.qMod)
	wipeNat(kn, bits)
	wipeNat(xn, bits)
	return big.Convert(s.Big())
}

// GExp returns g^exp mod p for a public exponent, using the precomputed table.
func (p *Params) GExp(exp *big.Int) *big.Int {
	e := new(big.Int).Mod(exp, p.Q) // g has order q
	if e.Sign() == 0 {
		return big.NewInt(1)
	}
	ret := new(big.Int)
	p.gTable.Exp(ret.Go(), e.Go())
	return ret
}

// Exp returns base^exp mod p for public values. Negative exponents are taken modulo q, which is
// only meaningful for bases in the subgroup.
func (p *Params) Exp(base, exp *big.Int) *big.Int {
	e := new(big.Int).Mod(exp, p.Q)
	return new(big.Int).Exp(base, e, p.P)
}

// Mul returns a*b mod p.
func (p *Params) Mul(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, p.P)
}

// wipeNat overwrites the limbs of n, which hold a value of at most bits bits.
func wipeNat(n *saferith.Nat, bits int) {
	n.SetBytes(make([]byte, (bits+7)/8))
}
