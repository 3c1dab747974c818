package zkprm

import (
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/internal/test"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/pool"
)

func TestPrm(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	sk := test.PaillierSecret(0)
	ped, lambda := sk.GeneratePedersen()

	public := Public{
		N: ped.N(),
		S: ped.S(),
		T: ped.T(),
	}

	proof := NewProof(Private{
		Lambda: lambda,
		Phi:    sk.Phi(),
		P:      sk.P(),
		Q:      sk.Q(),
	}, hash.New(), public, pl)
	assert.True(t, proof.Verify(public, hash.New(), pl))

	out, err := cbor.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := &Proof{}
	require.NoError(t, cbor.Unmarshal(out, proof2), "failed to unmarshal proof")
	assert.True(t, proof2.Verify(public, hash.New(), pl))

	swapped := Public{N: ped.N(), S: ped.T(), T: ped.S()}
	assert.False(t, proof.Verify(swapped, hash.New(), pl), "proof should fail for swapped s and t")

	proof2.Zs[0] = new(saferith.Nat).SetUint64(2)
	assert.False(t, proof2.Verify(public, hash.New(), pl))
}
