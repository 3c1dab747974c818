package ecdsa

import (
	"encoding/binary"
	mrand "math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

func generateShares(secret *curve.Scalar, ids []party.ID) map[party.ID]*curve.Scalar {
	buf, _ := secret.MarshalBinary()
	seed := int64(binary.BigEndian.Uint64(buf))
	rand := mrand.New(mrand.NewSource(seed))
	sum := curve.NewScalar()
	shares := make(map[party.ID]*curve.Scalar)
	for i, id := range ids {
		if i == 0 {
			continue
		}
		share := sample.Scalar(rand)
		sum.Add(share)
		shares[id] = share
	}
	shares[ids[0]] = secret.Clone().Sub(sum)
	return shares
}

func newPreSignatures(N int) (x *curve.Scalar, X *curve.Point, preSignatures map[party.ID]*PreSignature) {
	rand := mrand.New(mrand.NewSource(0))

	partyIDs := party.Range(N)

	x = sample.ScalarUnit(rand)
	X = x.ActOnBase()
	k := sample.ScalarUnit(rand)
	kInv := k.Clone().Invert()
	R := kInv.ActOnBase()
	// σ = x⋅k
	sigma := x.Clone().Mul(k)

	RBar := make(map[party.ID]*curve.Point, N)
	S := make(map[party.ID]*curve.Point, N)

	kShares := generateShares(k, partyIDs)
	sigmaShares := generateShares(sigma, partyIDs)

	for _, id := range partyIDs {
		RBar[id] = kShares[id].Act(R)
		S[id] = sigmaShares[id].Act(R)
	}
	preSignatures = make(map[party.ID]*PreSignature, N)
	for _, id := range partyIDs {
		preSignatures[id] = &PreSignature{
			R:          R,
			RBar:       RBar,
			S:          S,
			KShare:     kShares[id],
			SigmaShare: sigmaShares[id],
		}
	}
	return
}

func TestPreSignature_Verify(t *testing.T) {
	N := 5
	message := []byte("HELLO WORLD")
	_, X, preSignatures := newPreSignatures(N)
	shares := make(map[party.ID]*SignatureShare, N)
	for id, preSignature := range preSignatures {
		require.NoError(t, preSignature.Validate())
		shares[id] = preSignature.SignatureShare(message)
	}
	for _, preSignature := range preSignatures {
		signature := preSignature.Signature(shares)
		assert.True(t, signature.Verify(X, message), "failed to validate signature")
		assert.True(t, signature.VerifyStandard(X, message))
		assert.Empty(t, preSignature.VerifySignatureShares(shares, message))
	}
}

func TestPreSignature_Fail(t *testing.T) {
	N := 5
	message := []byte("HELLO WORLD")
	_, X, preSignatures := newPreSignatures(N)
	shares := make(map[party.ID]*SignatureShare, N)
	for id, preSignature := range preSignatures {
		shares[id] = preSignature.SignatureShare(message)
	}

	culprit := party.ID(3)
	shares[culprit].Invert()

	for _, preSignature := range preSignatures {
		signature := preSignature.Signature(shares)
		assert.False(t, signature.Verify(X, message), "signature should fail")
		culprits := preSignature.VerifySignatureShares(shares, message)
		assert.Equal(t, []party.ID{culprit}, culprits, "culprit should have been detected")
	}
}

func TestPreSignature_Erase(t *testing.T) {
	_, _, preSignatures := newPreSignatures(2)
	p := preSignatures[1]
	p.Erase()
	assert.True(t, p.KShare.IsZero())
	assert.True(t, p.SigmaShare.IsZero())
	assert.Error(t, p.Validate())
}
