// Package zkeclog proves that S = σ⋅R for the same σ committed to in T = σ⋅G + l⋅H.
package zkeclog

import (
	"crypto/rand"

	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
)

type Public struct {
	// R is the base of S.
	R *curve.Point
	// S = σ⋅R
	S *curve.Point
	// T = σ⋅G + l⋅H
	T *curve.Point
}

type Private struct {
	Sigma, L *curve.Scalar
}

type Commitment struct {
	// A1 = α⋅R
	A1 *curve.Point
	// A2 = α⋅G + β⋅H
	A2 *curve.Point
}

type Proof struct {
	Commitment
	// Z1 = α + e⋅σ
	Z1 *curve.Scalar
	// Z2 = β + e⋅l
	Z2 *curve.Scalar
}

func (p *Proof) IsValid() bool {
	if p == nil || p.A1 == nil || p.A2 == nil || p.Z1 == nil || p.Z2 == nil {
		return false
	}
	return !p.A1.IsIdentity() && !p.A2.IsIdentity()
}

func NewProof(hash *hash.Hash, public Public, private Private) *Proof {
	alpha := sample.Scalar(rand.Reader)
	beta := sample.Scalar(rand.Reader)

	commitment := Commitment{
		A1: alpha.Act(public.R),
		A2: alpha.ActOnBase().Add(beta.Act(curve.H())),
	}

	e, _ := challenge(hash, public, commitment)

	z1 := e.Clone().Mul(private.Sigma).Add(alpha)
	z2 := e.Mul(private.L).Add(beta)

	return &Proof{
		Commitment: commitment,
		Z1:         z1,
		Z2:         z2,
	}
}

func (p *Proof) Verify(hash *hash.Hash, public Public) bool {
	if !p.IsValid() || public.R == nil || public.S == nil || public.T == nil {
		return false
	}
	if public.R.IsIdentity() {
		return false
	}

	e, err := challenge(hash, public, p.Commitment)
	if err != nil {
		return false
	}

	{
		// z₁⋅R = A₁ + e⋅S
		lhs := p.Z1.Act(public.R)
		rhs := e.Act(public.S).Add(p.A1)
		if !lhs.Equal(rhs) {
			return false
		}
	}

	{
		// z₁⋅G + z₂⋅H = A₂ + e⋅T
		lhs := p.Z1.ActOnBase().Add(p.Z2.Act(curve.H()))
		rhs := e.Act(public.T).Add(p.A2)
		if !lhs.Equal(rhs) {
			return false
		}
	}

	return true
}

func challenge(hash *hash.Hash, public Public, commitment Commitment) (e *curve.Scalar, err error) {
	err = hash.WriteAny(public.R, public.S, public.T, commitment.A1, commitment.A2)
	e = sample.Scalar(hash.Digest())
	return
}
