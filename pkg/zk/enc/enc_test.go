package zkenc

import (
	"crypto/rand"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/internal/test"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
)

func TestEnc(t *testing.T) {
	verifier, _ := test.PaillierSecret(1).GeneratePedersen()
	prover := test.PaillierSecret(0).PublicKey

	k := sample.IntervalL(rand.Reader)
	K, rho := prover.Enc(k)
	public := Public{
		K:      K,
		Prover: prover,
		Aux:    verifier,
	}

	proof := NewProof(hash.New(), public, Private{
		K:   k,
		Rho: rho,
	})
	assert.True(t, proof.Verify(hash.New(), public))

	out, err := cbor.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := &Proof{}
	require.NoError(t, cbor.Unmarshal(out, proof2), "failed to unmarshal proof")
	out2, err := cbor.Marshal(proof2)
	require.NoError(t, err, "failed to marshal 2nd proof")
	proof3 := &Proof{}
	require.NoError(t, cbor.Unmarshal(out2, proof3), "failed to unmarshal 2nd proof")

	assert.True(t, proof3.Verify(hash.New(), public))

	K2, _ := prover.Enc(k)
	other := public
	other.K = K2
	assert.False(t, proof.Verify(hash.New(), other), "proof for another ciphertext should fail")
}

func TestEncOutOfRange(t *testing.T) {
	verifier, _ := test.PaillierSecret(1).GeneratePedersen()
	prover := test.PaillierSecret(0).PublicKey

	// a plaintext far outside ± 2ˡ makes z₁ leave the accepted interval
	k := sample.IntervalLPrime(rand.Reader)
	K, rho := prover.Enc(k)
	public := Public{
		K:      K,
		Prover: prover,
		Aux:    verifier,
	}
	proof := NewProof(hash.New(), public, Private{K: k, Rho: rho})
	assert.False(t, proof.Verify(hash.New(), public))
}
