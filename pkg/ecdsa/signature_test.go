package ecdsa

import (
	"crypto/rand"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
	"golang.org/x/crypto/sha3"
)

func newSignature(x *curve.Scalar, hash []byte, k *curve.Scalar) *Signature {
	if k == nil {
		k = sample.ScalarUnit(rand.Reader)
	}
	m := curve.FromHash(hash)
	kInv := k.Clone().Invert()
	R := kInv.ActOnBase()
	r := R.XScalar()
	s := r.Mul(x).Add(m).Mul(k)
	return &Signature{
		R: R,
		S: s,
	}
}

func TestSignature_Verify(t *testing.T) {
	digest := sha3.Sum256([]byte("hello"))
	m := digest[:]
	x := sample.ScalarUnit(rand.Reader)
	X := x.ActOnBase()
	sig := newSignature(x, m, nil)
	assert.True(t, sig.Verify(X, m))
	assert.True(t, sig.VerifyStandard(X, m))

	other := sha3.Sum256([]byte("hello!"))
	assert.False(t, sig.Verify(X, other[:]))
	assert.False(t, sig.VerifyStandard(X, other[:]))
	assert.False(t, sig.Verify(X.Add(curve.NewBasePoint()), m))
}

func TestSignature_Normalize(t *testing.T) {
	m := []byte("a message")
	x := sample.ScalarUnit(rand.Reader)
	X := x.ActOnBase()
	for i := 0; i < 8; i++ {
		sig := newSignature(x, m, nil)
		sig.Normalize()
		assert.False(t, sig.S.IsOverHalfOrder())
		assert.True(t, sig.Verify(X, m))
		assert.True(t, sig.VerifyStandard(X, m))
	}
}

func TestSignature_Encodings(t *testing.T) {
	m := []byte("a message")
	x := sample.ScalarUnit(rand.Reader)
	X := x.ActOnBase()
	sig := newSignature(x, m, nil)
	sig.Normalize()

	raw, err := sig.SigBytes()
	require.NoError(t, err)
	require.Len(t, raw, 64)
	rb, _ := sig.R.XScalar().MarshalBinary()
	assert.Equal(t, rb, raw[:32])

	der, err := sig.SigDER()
	require.NoError(t, err)

	// independent verification of the DER encoding
	pk, err := btcec.ParsePubKey(X.BytesUncompressed())
	require.NoError(t, err)
	parsed, err := btcecdsa.ParseDERSignature(der)
	require.NoError(t, err)
	assert.True(t, parsed.Verify(m, pk))

	parsedX, err := ParsePublicKey(X.BytesUncompressed())
	require.NoError(t, err)
	assert.True(t, parsedX.Equal(X))
	_, err = ParsePublicKey(make([]byte, 33))
	assert.Error(t, err)

	_, err = Signature{}.SigBytes()
	assert.Error(t, err)
}
