package zkmod

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/internal/test"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
	"github.com/taurusgroup/threshold-ecdsa/pkg/pool"
)

func TestMod(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	sk := test.PaillierSecret(0)
	public := Public{N: sk.N()}
	proof := NewProof(hash.New(), Private{
		P:   sk.P(),
		Q:   sk.Q(),
		Phi: sk.Phi(),
	}, public, pl)
	assert.True(t, proof.Verify(public, hash.New(), pl), "failed to verify proof")

	out, err := cbor.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := &Proof{}
	require.NoError(t, cbor.Unmarshal(out, proof2), "failed to unmarshal proof")
	assert.True(t, proof2.Verify(public, hash.New(), pl), "failed to verify unmarshalled proof")

	other := Public{N: test.PaillierSecret(1).N()}
	assert.False(t, proof.Verify(other, hash.New(), pl), "proof for another modulus should fail")

	proof.W = new(saferith.Nat).SetUint64(0)
	for idx := range proof.Responses {
		proof.Responses[idx].X = new(saferith.Nat).SetUint64(0)
	}
	assert.False(t, proof.Verify(public, hash.New(), pl), "proof should have failed")
}

func Test_set4thRoot(t *testing.T) {
	var p, q uint64 = 311, 331
	pMod := saferith.ModulusFromUint64(p)
	pHalf := new(saferith.Nat).SetUint64((p - 1) / 2)
	qMod := saferith.ModulusFromUint64(q)
	qHalf := new(saferith.Nat).SetUint64((q - 1) / 2)
	n := saferith.ModulusFromUint64(p * q)
	phi := new(saferith.Nat).SetUint64((p - 1) * (q - 1))
	y := new(saferith.Nat).SetUint64(502)
	w := sample.QNR(rand.Reader, n)

	a, b, x := makeQuadraticResidue(y, w, pHalf, qHalf, n, pMod, qMod)

	e := fourthRootExponent(phi)
	root := new(saferith.Nat).Exp(x, e, n)
	if b {
		y.ModMul(y, w, n)
	}
	if a {
		y.ModNeg(y, n)
	}

	assert.NotEqual(t, 1, int(root.Eq(new(saferith.Nat).SetUint64(1))), "root cannot be 1")
	root.Exp(root, new(saferith.Nat).SetUint64(4), n)
	assert.Equal(t, 1, int(root.Eq(y)), "root^4 should be equal to y")
	assert.Equal(t, -1, big.Jacobi(w.Big(), n.Big()))
}
