package zksch

import (
	"crypto/rand"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
)

func TestSchPass(t *testing.T) {
	a := NewRandomness(rand.Reader)
	x, X := sample.ScalarPointPair(rand.Reader)

	proof := a.Prove(hash.New(), X, x)
	assert.True(t, proof.Verify(hash.New(), X, a.Commitment()), "failed passing test")
	assert.False(t, proof.Verify(hash.New(), X.Add(curve.NewBasePoint()), a.Commitment()), "proof for another point")
	assert.False(t, proof.Verify(hash.New().Fork([]byte("other")), X, a.Commitment()), "proof with another transcript")
}

func TestSchFail(t *testing.T) {
	a := NewRandomness(rand.Reader)
	x, X := curve.NewScalar(), curve.NewIdentityPoint()

	proof := a.Prove(hash.New(), X, x)
	assert.False(t, proof.Verify(hash.New(), X, a.Commitment()), "proof should not accept identity point")
}

func TestSchProof(t *testing.T) {
	x, X := sample.ScalarPointPair(rand.Reader)
	proof := NewProof(hash.New(), X, x, rand.Reader)
	assert.True(t, proof.Verify(hash.New(), X))

	data, err := cbor.Marshal(proof)
	require.NoError(t, err)
	proof2 := &Proof{}
	require.NoError(t, cbor.Unmarshal(data, proof2))
	assert.True(t, proof2.Verify(hash.New(), X))

	proof2.Z.Z.Add(curve.NewScalarUint32(1))
	assert.False(t, proof2.Verify(hash.New(), X))

	var nilProof *Proof
	assert.False(t, nilProof.Verify(hash.New(), X))
}
