package curve

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/taurusgroup/threshold-ecdsa/internal/params"
)

// Point is an element of the secp256k1 group, stored in Jacobian coordinates.
//
// Unlike Scalar, group operations return a new Point and leave the receiver unchanged.
// The zero value is the identity.
type Point struct {
	value secp256k1.JacobianPoint
}

// NewIdentityPoint returns the identity element.
func NewIdentityPoint() *Point {
	return new(Point)
}

// NewBasePoint returns the generator G.
func NewBasePoint() *Point {
	return NewScalarUint32(1).ActOnBase()
}

// Set sets p = q and returns p.
func (p *Point) Set(q *Point) *Point {
	p.value.Set(&q.value)
	return p
}

// Add returns p + q.
func (p *Point) Add(q *Point) *Point {
	out := new(Point)
	secp256k1.AddNonConst(&p.value, &q.value, &out.value)
	return out
}

// Sub returns p - q.
func (p *Point) Sub(q *Point) *Point {
	return p.Add(q.Negate())
}

// Negate returns -p.
func (p *Point) Negate() *Point {
	out := new(Point)
	out.value.Set(&p.value)
	out.value.Y.Normalize()
	out.value.Y.Negate(1)
	out.value.Y.Normalize()
	return out
}

// affine returns a normalized copy of p, and whether p is the identity.
func (p *Point) affine() (secp256k1.JacobianPoint, bool) {
	var a secp256k1.JacobianPoint
	a.Set(&p.value)
	a.X.Normalize()
	a.Y.Normalize()
	a.Z.Normalize()
	if (a.X.IsZero() && a.Y.IsZero()) || a.Z.IsZero() {
		return a, true
	}
	a.ToAffine()
	return a, false
}

// IsIdentity returns true if p is the identity element.
func (p *Point) IsIdentity() bool {
	_, identity := p.affine()
	return identity
}

// Equal returns true if p and q represent the same group element.
func (p *Point) Equal(q *Point) bool {
	a, aIdentity := p.affine()
	b, bIdentity := q.affine()
	if aIdentity || bIdentity {
		return aIdentity == bIdentity
	}
	return a.X.Equals(&b.X) && a.Y.Equals(&b.Y)
}

// XScalar returns the x coordinate of p reduced modulo q, as used for the r value of an ECDSA signature.
// It returns nil for the identity.
func (p *Point) XScalar() *Scalar {
	a, identity := p.affine()
	if identity {
		return nil
	}
	var s Scalar
	s.value.SetByteSlice(a.X.Bytes()[:])
	return &s
}

// HasEvenY returns true if the affine y coordinate of p is even.
func (p *Point) HasEvenY() bool {
	a, identity := p.affine()
	return !identity && !a.Y.IsOdd()
}

// ToPublicKey converts p to a decred public key, for use with standard ECDSA verification.
func (p *Point) ToPublicKey() (*secp256k1.PublicKey, error) {
	a, identity := p.affine()
	if identity {
		return nil, errors.New("point: identity is not a valid public key")
	}
	return secp256k1.NewPublicKey(&a.X, &a.Y), nil
}

// BytesUncompressed returns the 65 byte SEC1 encoding 0x04 ‖ x ‖ y.
// The identity has no such encoding and yields nil.
func (p *Point) BytesUncompressed() []byte {
	pk, err := p.ToPublicKey()
	if err != nil {
		return nil
	}
	return pk.SerializeUncompressed()
}

// identityEncoding is used for the identity, which has no SEC1 compressed form.
var identityEncoding = make([]byte, params.BytesPoint)

// MarshalBinary implements encoding.BinaryMarshaler and returns the 33 byte compressed encoding of p.
// The identity is encoded as 33 zero bytes.
func (p *Point) MarshalBinary() ([]byte, error) {
	pk, err := p.ToPublicKey()
	if err != nil {
		out := make([]byte, params.BytesPoint)
		return out, nil
	}
	return pk.SerializeCompressed(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// Both the 33 byte compressed and 65 byte uncompressed encodings are accepted.
func (p *Point) UnmarshalBinary(data []byte) error {
	if bytes.Equal(data, identityEncoding) {
		p.value = secp256k1.JacobianPoint{}
		return nil
	}
	pk, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return fmt.Errorf("point: %w", err)
	}
	pk.AsJacobian(&p.value)
	return nil
}
