// Package zkecped proves knowledge of an opening (a, b) of a curve Pedersen commitment T = a⋅G + b⋅H.
package zkecped

import (
	"crypto/rand"

	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
)

type Public struct {
	// T = a⋅G + b⋅H
	T *curve.Point
}

type Private struct {
	A, B *curve.Scalar
}

type Commitment struct {
	// C = α⋅G + β⋅H
	C *curve.Point
}

type Proof struct {
	Commitment
	// Z1 = α + e⋅a
	Z1 *curve.Scalar
	// Z2 = β + e⋅b
	Z2 *curve.Scalar
}

func (p *Proof) IsValid() bool {
	if p == nil || p.C == nil || p.Z1 == nil || p.Z2 == nil {
		return false
	}
	return !p.C.IsIdentity()
}

func NewProof(hash *hash.Hash, public Public, private Private) *Proof {
	h := curve.H()
	alpha := sample.Scalar(rand.Reader)
	beta := sample.Scalar(rand.Reader)

	commitment := Commitment{
		C: alpha.ActOnBase().Add(beta.Act(h)),
	}

	e, _ := challenge(hash, public, commitment)

	z1 := e.Clone().Mul(private.A).Add(alpha)
	z2 := e.Mul(private.B).Add(beta)

	return &Proof{
		Commitment: commitment,
		Z1:         z1,
		Z2:         z2,
	}
}

func (p *Proof) Verify(hash *hash.Hash, public Public) bool {
	if !p.IsValid() || public.T == nil {
		return false
	}

	e, err := challenge(hash, public, p.Commitment)
	if err != nil {
		return false
	}

	// lhs = z₁⋅G + z₂⋅H
	lhs := p.Z1.ActOnBase().Add(p.Z2.Act(curve.H()))
	// rhs = C + e⋅T
	rhs := e.Act(public.T).Add(p.C)

	return lhs.Equal(rhs)
}

func challenge(hash *hash.Hash, public Public, commitment Commitment) (e *curve.Scalar, err error) {
	err = hash.WriteAny(public.T, commitment.C)
	e = sample.Scalar(hash.Digest())
	return
}
