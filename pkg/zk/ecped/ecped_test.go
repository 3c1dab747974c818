package zkecped

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

func TestECPed(t *testing.T) {
	a := sample.Scalar(rand.Reader)
	b := sample.Scalar(rand.Reader)
	T := a.ActOnBase().Add(b.Act(curve.H()))
	public := Public{T: T}

	proof := NewProof(hash.New(), public, Private{A: a, B: b})
	assert.True(t, proof.Verify(hash.New(), public))

	out, err := cbor.Marshal(proof)
	require.NoError(t, err)
	proof2 := &Proof{}
	require.NoError(t, cbor.Unmarshal(out, proof2))
	assert.True(t, proof2.Verify(hash.New(), public))

	assert.False(t, proof.Verify(hash.New(), Public{T: a.ActOnBase()}), "opening without the H component")

	bad := NewProof(hash.New(), public, Private{A: b, B: a})
	assert.False(t, bad.Verify(hash.New(), public), "swapped opening")
}
