package ecdsa

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

// PreSignature is the output of the offline signing stage for one party.
type PreSignature struct {
	// R = δ⁻¹⋅Γ = δ⁻¹⋅(∑ⱼ Γⱼ) = (∑ⱼδ⁻¹γⱼ)⋅G = k⁻¹⋅G
	R *curve.Point
	// RBar[j] = kⱼ⋅R
	RBar map[party.ID]*curve.Point
	// S[j] = σⱼ⋅R
	S map[party.ID]*curve.Point
	// KShare = kᵢ
	KShare *curve.Scalar
	// SigmaShare = σᵢ
	SigmaShare *curve.Scalar
}

// SignatureShare represents an individual additive share of the signature's "s" component.
type SignatureShare = curve.Scalar

// SignatureShare returns this party's share sᵢ = m⋅kᵢ + r⋅σᵢ, where s = ∑ⱼsⱼ.
func (sig *PreSignature) SignatureShare(hash []byte) *SignatureShare {
	m := curve.FromHash(hash)
	r := sig.R.XScalar()
	mk := m.Mul(sig.KShare)
	rx := r.Mul(sig.SigmaShare)
	return mk.Add(rx)
}

// Signature combines the given shares sⱼ and returns a pair (R,S), where S=∑ⱼsⱼ.
func (sig *PreSignature) Signature(shares map[party.ID]*SignatureShare) *Signature {
	s := curve.NewScalar()
	for _, share := range shares {
		s.Add(share)
	}
	return &Signature{
		R: new(curve.Point).Set(sig.R),
		S: s,
	}
}

// VerifySignatureShare checks that sⱼ⋅R = m⋅R̄ⱼ + r⋅Sⱼ.
func (sig *PreSignature) VerifySignatureShare(j party.ID, share *SignatureShare, hash []byte) bool {
	Rj, Sj := sig.RBar[j], sig.S[j]
	if Rj == nil || Sj == nil || share == nil {
		return false
	}
	r := sig.R.XScalar()
	m := curve.FromHash(hash)
	lhs := share.Act(sig.R)
	rhs := m.Act(Rj).Add(r.Act(Sj))
	return lhs.Equal(rhs)
}

// VerifySignatureShares should be called if the signature returned by PreSignature.Signature is not valid.
// It returns the list of parties whose shares are invalid.
func (sig *PreSignature) VerifySignatureShares(shares map[party.ID]*SignatureShare, hash []byte) (culprits []party.ID) {
	for j, share := range shares {
		if !sig.VerifySignatureShare(j, share, hash) {
			culprits = append(culprits, j)
		}
	}
	return
}

// Validate checks that all points are set and not the identity, and that the secret shares are set.
func (sig *PreSignature) Validate() error {
	if len(sig.RBar) != len(sig.S) {
		return errors.New("presignature: different number of R,S shares")
	}

	for id, R := range sig.RBar {
		if S, ok := sig.S[id]; !ok || S == nil || S.IsIdentity() {
			return fmt.Errorf("presignature: S invalid for %v", id)
		}
		if R == nil || R.IsIdentity() {
			return fmt.Errorf("presignature: RBar invalid for %v", id)
		}
	}
	if sig.R == nil || sig.R.IsIdentity() {
		return errors.New("presignature: R is identity")
	}
	if sig.SigmaShare == nil || sig.KShare == nil || sig.SigmaShare.IsZero() || sig.KShare.IsZero() {
		return errors.New("presignature: SigmaShare or KShare is invalid")
	}
	return nil
}

// SignerIDs returns the parties whose verification points are stored.
func (sig *PreSignature) SignerIDs() party.IDSlice {
	ids := make([]party.ID, 0, len(sig.RBar))
	for id := range sig.RBar {
		ids = append(ids, id)
	}
	return party.NewIDSlice(ids)
}

// Erase zeroes the secret shares kᵢ and σᵢ.
func (sig *PreSignature) Erase() {
	if sig.KShare != nil {
		sig.KShare.Zero()
	}
	if sig.SigmaShare != nil {
		sig.SigmaShare.Zero()
	}
}
