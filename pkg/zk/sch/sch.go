package zksch

import (
	"io"

	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
)

// Randomness = a ← ℤₚ.
type Randomness struct {
	a          *curve.Scalar
	commitment Commitment
}

// Commitment = randomness•G.
type Commitment struct {
	C *curve.Point
}

// Response = randomness + H(..., commitment, public)•secret (mod p).
type Response struct {
	Z *curve.Scalar
}

// Proof is a Schnorr proof of knowledge of x such that X = x⋅G.
type Proof struct {
	C Commitment
	Z Response
}

// NewProof generates a Schnorr proof of knowledge of exponent for public, using the Fiat-Shamir transform.
func NewProof(hash *hash.Hash, public *curve.Point, private *curve.Scalar, rand io.Reader) *Proof {
	a := NewRandomness(rand)
	z := a.Prove(hash, public, private)
	return &Proof{
		C: *a.Commitment(),
		Z: *z,
	}
}

// NewRandomness creates a new a ∈ ℤₚ and the corresponding commitment C = a•G.
// This can be used to run the proof in a non-interactive way.
func NewRandomness(rand io.Reader) *Randomness {
	a, c := sample.ScalarPointPair(rand)
	return &Randomness{
		a:          a,
		commitment: Commitment{C: c},
	}
}

func challenge(hash *hash.Hash, commitment *Commitment, public *curve.Point) (e *curve.Scalar, err error) {
	err = hash.WriteAny(commitment.C, public)
	e = sample.Scalar(hash.Digest())
	return
}

// Prove creates a Response = Randomness + H(..., Commitment, public)•secret (mod p).
func (r *Randomness) Prove(hash *hash.Hash, public *curve.Point, secret *curve.Scalar) *Response {
	if public.IsIdentity() || secret.IsZero() {
		return nil
	}
	e, err := challenge(hash, &r.commitment, public)
	if err != nil {
		return nil
	}
	z := e.Mul(secret).Add(r.a)
	return &Response{Z: z}
}

// Commitment returns the commitment C = a•G for the randomness a.
func (r *Randomness) Commitment() *Commitment {
	return &r.commitment
}

// Verify checks that Response•G = Commitment + H(..., Commitment, public)•Public.
func (z *Response) Verify(hash *hash.Hash, public *curve.Point, commitment *Commitment) bool {
	if z == nil || !z.IsValid() || public.IsIdentity() || commitment == nil || !commitment.IsValid() {
		return false
	}

	e, err := challenge(hash, commitment, public)
	if err != nil {
		return false
	}

	lhs := z.Z.ActOnBase()
	rhs := e.Act(public).Add(commitment.C)

	return lhs.Equal(rhs)
}

// Verify checks a Schnorr proof created by NewProof.
func (p *Proof) Verify(hash *hash.Hash, public *curve.Point) bool {
	if p == nil {
		return false
	}
	return p.Z.Verify(hash, public, &p.C)
}

// WriteTo implements io.WriterTo.
func (c *Commitment) WriteTo(w io.Writer) (int64, error) {
	data, err := c.C.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (Commitment) Domain() string {
	return "Schnorr Commitment"
}

func (c *Commitment) IsValid() bool {
	return c.C != nil && !c.C.IsIdentity()
}

func (z *Response) IsValid() bool {
	return z.Z != nil && !z.Z.IsZero()
}
