package polynomial

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

func TestPolynomial_Evaluate(t *testing.T) {
	// f(X) = 1 + 0⋅X + 1⋅X²
	p := &Polynomial{coefficients: []*curve.Scalar{
		curve.NewScalarUint32(1),
		curve.NewScalarUint32(0),
		curve.NewScalarUint32(1),
	}}
	for x := uint32(1); x < 10; x++ {
		assert.True(t, p.Evaluate(curve.NewScalarUint32(x)).Equal(curve.NewScalarUint32(1+x*x)))
	}
	assert.Panics(t, func() { p.Evaluate(curve.NewScalar()) })
}

func TestExponent_Evaluate(t *testing.T) {
	secret := sample.Scalar(rand.Reader)
	p := NewPolynomial(3, secret)
	F := NewPolynomialExponent(p)
	assert.Equal(t, 3, F.Degree())
	assert.True(t, F.Constant().Equal(secret.ActOnBase()))
	for _, id := range party.Range(6) {
		x := id.Scalar()
		assert.True(t, p.Evaluate(x).ActOnBase().Equal(F.Evaluate(x)))
	}
}

func TestExponent_Sum(t *testing.T) {
	p1, p2 := NewPolynomial(2, nil), NewPolynomial(2, nil)
	sum, err := Sum([]*Exponent{NewPolynomialExponent(p1), NewPolynomialExponent(p2)})
	require.NoError(t, err)
	x := curve.NewScalarUint32(5)
	expected := p1.Evaluate(x).Add(p2.Evaluate(x)).ActOnBase()
	assert.True(t, sum.Evaluate(x).Equal(expected))

	_, err = Sum([]*Exponent{NewPolynomialExponent(p1), NewPolynomialExponent(NewPolynomial(1, nil))})
	assert.Error(t, err)
}

func TestExponent_Marshal(t *testing.T) {
	F := NewPolynomialExponent(NewPolynomial(2, sample.Scalar(rand.Reader)))
	data, err := F.MarshalBinary()
	require.NoError(t, err)
	var G Exponent
	require.NoError(t, G.UnmarshalBinary(data))
	assert.True(t, F.Equal(&G))
}

func TestLagrange(t *testing.T) {
	secret := sample.Scalar(rand.Reader)
	p := NewPolynomial(2, secret)

	for _, signers := range []party.IDSlice{{1, 2, 3}, {2, 4, 5}, {1, 3, 5, 6}} {
		coefficients := Lagrange(signers)
		reconstructed := curve.NewScalar()
		for _, id := range signers {
			share := p.Evaluate(id.Scalar())
			reconstructed.Add(share.Mul(coefficients[id]))
		}
		assert.True(t, reconstructed.Equal(secret), "signers %v", signers)
	}

	single := LagrangeSingle([]party.ID{1, 2}, 1)
	assert.True(t, single.Equal(curve.NewScalarUint32(2)))
}
