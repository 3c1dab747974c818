package curve

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/taurusgroup/threshold-ecdsa/internal/params"
)

// Scalar is an integer modulo the order q of secp256k1.
//
// Arithmetic methods modify the receiver and return it, so that calls can be chained.
type Scalar struct {
	value secp256k1.ModNScalar
}

// NewScalar returns a new zero Scalar.
func NewScalar() *Scalar {
	return new(Scalar)
}

// NewScalarUint32 returns a new Scalar set to x.
func NewScalarUint32(x uint32) *Scalar {
	var s Scalar
	s.value.SetInt(x)
	return &s
}

// Set sets s = t and returns s.
func (s *Scalar) Set(t *Scalar) *Scalar {
	s.value.Set(&t.value)
	return s
}

// Clone returns a copy of s.
func (s *Scalar) Clone() *Scalar {
	return NewScalar().Set(s)
}

// Add sets s = s + t (mod q) and returns s.
func (s *Scalar) Add(t *Scalar) *Scalar {
	s.value.Add(&t.value)
	return s
}

// Sub sets s = s - t (mod q) and returns s.
func (s *Scalar) Sub(t *Scalar) *Scalar {
	var neg secp256k1.ModNScalar
	neg.NegateVal(&t.value)
	s.value.Add(&neg)
	return s
}

// Mul sets s = s ⋅ t (mod q) and returns s.
func (s *Scalar) Mul(t *Scalar) *Scalar {
	s.value.Mul(&t.value)
	return s
}

// Negate sets s = -s (mod q) and returns s.
func (s *Scalar) Negate() *Scalar {
	s.value.Negate()
	return s
}

// Invert sets s = s⁻¹ (mod q) and returns s.
// The inverse of 0 is 0.
func (s *Scalar) Invert() *Scalar {
	s.value.InverseNonConst()
	return s
}

// Equal returns true if s = t.
func (s *Scalar) Equal(t *Scalar) bool {
	return s.value.Equals(&t.value)
}

// IsZero returns true if s = 0.
func (s *Scalar) IsZero() bool {
	return s.value.IsZero()
}

// IsOverHalfOrder returns true if s > q/2, which is used to normalize ECDSA signatures.
func (s *Scalar) IsOverHalfOrder() bool {
	return s.value.IsOverHalfOrder()
}

// SetNat sets s = x (mod q) and returns s.
func (s *Scalar) SetNat(x *saferith.Nat) *Scalar {
	reduced := new(saferith.Nat).Mod(x, Order())
	var buf [params.BytesScalar]byte
	reduced.Big().FillBytes(buf[:])
	s.value.SetBytes(&buf)
	return s
}

// SetInt sets s = x (mod q) and returns s, where x may be negative.
func (s *Scalar) SetInt(x *saferith.Int) *Scalar {
	return s.SetNat(x.Mod(Order()))
}

// Nat returns s as a saferith.Nat.
func (s *Scalar) Nat() *saferith.Nat {
	b := s.value.Bytes()
	return new(saferith.Nat).SetBytes(b[:])
}

// Int returns s as a non-negative saferith.Int in [0, q).
func (s *Scalar) Int() *saferith.Int {
	return new(saferith.Int).SetNat(s.Nat())
}

// Big returns s as a big.Int.
func (s *Scalar) Big() *big.Int {
	b := s.value.Bytes()
	return new(big.Int).SetBytes(b[:])
}

// Act returns s ⋅ P.
func (s *Scalar) Act(p *Point) *Point {
	out := new(Point)
	secp256k1.ScalarMultNonConst(&s.value, &p.value, &out.value)
	return out
}

// ActOnBase returns s ⋅ G.
func (s *Scalar) ActOnBase() *Point {
	out := new(Point)
	secp256k1.ScalarBaseMultNonConst(&s.value, &out.value)
	return out
}

// Zero erases the value of s.
func (s *Scalar) Zero() {
	s.value.Zero()
}

// MarshalBinary implements encoding.BinaryMarshaler and returns the 32 byte big-endian encoding of s.
func (s *Scalar) MarshalBinary() ([]byte, error) {
	b := s.value.Bytes()
	return b[:], nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// It rejects encodings that are not fully reduced modulo q.
func (s *Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != params.BytesScalar {
		return fmt.Errorf("scalar: invalid length %d", len(data))
	}
	var buf [params.BytesScalar]byte
	copy(buf[:], data)
	if s.value.SetBytes(&buf) != 0 {
		return errors.New("scalar: value is not reduced modulo the group order")
	}
	return nil
}

// ModNScalar exposes the underlying decred representation.
func (s *Scalar) ModNScalar() *secp256k1.ModNScalar {
	return &s.value
}
