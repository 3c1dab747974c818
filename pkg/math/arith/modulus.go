package arith

import (
	"github.com/cronokirby/saferith"
)

// Modulus is an RSA style modulus N = p⋅q.
// When the factors are known, exponentiation mod N uses the Chinese remainder theorem.
type Modulus struct {
	*saferith.Modulus
	crt *crtParams
}

// crtParams holds p, q and p⁻¹ mod q.
type crtParams struct {
	p, q     *saferith.Modulus
	pNat     *saferith.Nat
	pInvModQ *saferith.Nat
}

// ModulusFromN returns N without its factorization. n is not copied.
func ModulusFromN(n *saferith.Modulus) *Modulus {
	return &Modulus{Modulus: n}
}

// ModulusFromFactors returns N = p⋅q, for coprime p and q.
func ModulusFromFactors(p, q *saferith.Nat) *Modulus {
	qMod := saferith.ModulusFromNat(q)
	return &Modulus{
		Modulus: saferith.ModulusFromNat(new(saferith.Nat).Mul(p, q, -1)),
		crt: &crtParams{
			p:        saferith.ModulusFromNat(p),
			q:        qMod,
			pNat:     new(saferith.Nat).SetNat(p),
			pInvModQ: new(saferith.Nat).ModInverse(p, qMod),
		},
	}
}

// Exp returns xᵉ mod N.
func (n *Modulus) Exp(x, e *saferith.Nat) *saferith.Nat {
	if n.crt == nil {
		return new(saferith.Nat).Exp(x, e, n.Modulus)
	}
	c := n.crt
	var xp, xq saferith.Nat
	xp.Exp(x, e, c.p)
	xq.Exp(x, e, c.q)
	// xp + p⋅(p⁻¹⋅(xq - xp) mod q)
	y := xq.ModSub(&xq, &xp, n.Modulus)
	y.ModMul(y, c.pInvModQ, n.Modulus)
	y.ModMul(y, c.pNat, n.Modulus)
	return y.ModAdd(y, &xp, n.Modulus)
}

// ExpI returns xᵉ mod N for a signed exponent. x must be a unit when e < 0.
func (n *Modulus) ExpI(x *saferith.Nat, e *saferith.Int) *saferith.Nat {
	if n.crt == nil {
		return new(saferith.Nat).ExpI(x, e, n.Modulus)
	}
	y := n.Exp(x, e.Abs())
	yInv := new(saferith.Nat).ModInverse(y, n.Modulus)
	y.CondAssign(e.IsNegative(), yInv)
	return y
}
