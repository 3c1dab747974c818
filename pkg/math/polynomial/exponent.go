package polynomial

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
)

// Exponent represents a polynomial whose coefficients are points on an elliptic curve.
// It is the public commitment used in Feldman's verifiable secret sharing.
type Exponent struct {
	coefficients []*curve.Point
}

// NewPolynomialExponent returns F(X) = f(X)•G = [a₀]G + [a₁]G⋅X + … + [aₜ]G⋅Xᵗ.
func NewPolynomialExponent(polynomial *Polynomial) *Exponent {
	p := &Exponent{
		coefficients: make([]*curve.Point, len(polynomial.coefficients)),
	}
	for i, c := range polynomial.coefficients {
		p.coefficients[i] = c.ActOnBase()
	}
	return p
}

// Evaluate returns F(x), using Horner's method.
func (p *Exponent) Evaluate(x *curve.Scalar) *curve.Point {
	result := curve.NewIdentityPoint()
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		// Bₙ₋₁ = [x]Bₙ  + Aₙ₋₁
		result = x.Act(result).Add(p.coefficients[i])
	}
	return result
}

// Degree is the highest power of the polynomial.
func (p *Exponent) Degree() int {
	return len(p.coefficients) - 1
}

func (p *Exponent) add(q *Exponent) error {
	if len(p.coefficients) != len(q.coefficients) {
		return errors.New("polynomial: q is not the same length as p")
	}
	for i := range p.coefficients {
		p.coefficients[i] = p.coefficients[i].Add(q.coefficients[i])
	}
	return nil
}

// Sum creates a new Polynomial in the Exponent, by summing a slice of existing ones.
// All polynomials must have the same degree.
func Sum(polynomials []*Exponent) (*Exponent, error) {
	if len(polynomials) == 0 {
		return nil, errors.New("polynomial: nothing to sum")
	}
	summed := polynomials[0].Copy()
	for j := 1; j < len(polynomials); j++ {
		if err := summed.add(polynomials[j]); err != nil {
			return nil, err
		}
	}
	return summed, nil
}

// Copy returns a deep copy of p.
func (p *Exponent) Copy() *Exponent {
	q := &Exponent{
		coefficients: make([]*curve.Point, len(p.coefficients)),
	}
	for i, c := range p.coefficients {
		q.coefficients[i] = new(curve.Point).Set(c)
	}
	return q
}

// Equal returns true if both polynomials have the same coefficients.
func (p *Exponent) Equal(other *Exponent) bool {
	if len(p.coefficients) != len(other.coefficients) {
		return false
	}
	for i := range p.coefficients {
		if !p.coefficients[i].Equal(other.coefficients[i]) {
			return false
		}
	}
	return true
}

// Constant returns the constant coefficient of the polynomial 'in the exponent'.
func (p *Exponent) Constant() *curve.Point {
	return new(curve.Point).Set(p.coefficients[0])
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Exponent) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(p.coefficients)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Exponent) UnmarshalBinary(data []byte) error {
	var coefficients []*curve.Point
	if err := cbor.Unmarshal(data, &coefficients); err != nil {
		return fmt.Errorf("polynomial: %w", err)
	}
	if len(coefficients) == 0 {
		return errors.New("polynomial: no coefficients")
	}
	for _, c := range coefficients {
		if c == nil {
			return errors.New("polynomial: nil coefficient")
		}
	}
	p.coefficients = coefficients
	return nil
}
