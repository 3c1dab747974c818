package sample

import (
	"bytes"
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/internal/params"
	"github.com/taurusgroup/threshold-ecdsa/pkg/pool"
)

func TestModN(t *testing.T) {
	n := saferith.ModulusFromUint64(3 * 11 * 65519)
	for i := 0; i < 100; i++ {
		x := ModN(rand.Reader, n)
		_, _, lt := x.CmpMod(n)
		require.Equal(t, saferith.Choice(1), lt, "ModN generated a number >= %v: %v", n, x)
	}
}

func TestUnitModN(t *testing.T) {
	n := saferith.ModulusFromUint64(3 * 11 * 65519)
	for i := 0; i < 100; i++ {
		require.Equal(t, saferith.Choice(1), UnitModN(rand.Reader, n).IsUnit(n))
	}
}

func TestScalar_Deterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0xAB}, 64)
	a := Scalar(bytes.NewReader(seed))
	b := Scalar(bytes.NewReader(seed))
	assert.True(t, a.Equal(b))
	assert.False(t, ScalarUnit(rand.Reader).IsZero())
}

func TestIntervals(t *testing.T) {
	for i := 0; i < 20; i++ {
		assert.LessOrEqual(t, IntervalL(rand.Reader).Abs().TrueLen(), params.L)
		assert.LessOrEqual(t, IntervalLEps(rand.Reader).Abs().TrueLen(), params.LPlusEpsilon)
		assert.LessOrEqual(t, IntervalLPrimeEps(rand.Reader).Abs().TrueLen(), params.LPrimePlusEpsilon)
		assert.LessOrEqual(t, IntervalScalar(rand.Reader).Abs().TrueLen(), 256)
	}
}

func TestPedersen(t *testing.T) {
	p, q := big.NewInt(1019), big.NewInt(1031)
	nBig := new(big.Int).Mul(p, q)
	phiBig := new(big.Int).Mul(new(big.Int).Sub(p, big.NewInt(1)), new(big.Int).Sub(q, big.NewInt(1)))
	n := saferith.ModulusFromNat(new(saferith.Nat).SetBig(nBig, nBig.BitLen()))
	phi := new(saferith.Nat).SetBig(phiBig, phiBig.BitLen())

	s, tt, lambda := Pedersen(rand.Reader, phi, n)
	assert.Equal(t, saferith.Choice(1), s.Eq(new(saferith.Nat).Exp(tt, lambda, n)))
}

const blumPrimeProbabilityIterations = 20

func TestPaillier(t *testing.T) {
	if testing.Short() {
		t.Skip("safe prime generation is slow")
	}
	pl := pool.NewPool(0)
	defer pl.TearDown()

	p, q := Paillier(rand.Reader, pl)
	for _, prime := range []*saferith.Nat{p, q} {
		b := prime.Big()
		assert.True(t, b.ProbablyPrime(blumPrimeProbabilityIterations))
		half := new(big.Int).Rsh(b, 1)
		assert.True(t, half.ProbablyPrime(blumPrimeProbabilityIterations), "p isn't safe because (p - 1) / 2 isn't prime")
		assert.Equal(t, uint(3), b.Bit(0)+2*b.Bit(1))
		assert.Equal(t, params.BitsBlumPrime, b.BitLen())
	}
}

func TestQNR(t *testing.T) {
	n := saferith.ModulusFromUint64(3 * 7)
	for i := 0; i < 10; i++ {
		w := QNR(rand.Reader, n)
		assert.Equal(t, -1, big.Jacobi(w.Big(), n.Big()))
	}
}
