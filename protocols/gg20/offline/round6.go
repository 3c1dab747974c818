package offline

import (
	"errors"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/ecdsa"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	zkeclog "github.com/taurusgroup/threshold-ecdsa/pkg/zk/eclog"
)

var _ round.BroadcastRound = (*round6)(nil)

type round6 struct {
	*round5

	// R = δ⁻¹⋅Γ = k⁻¹⋅G
	R *curve.Point
	// RBar[j] = R̄ⱼ = kⱼ⋅R
	RBar map[party.ID]*curve.Point
	// S[j] = Sⱼ = σⱼ⋅R
	S map[party.ID]*curve.Point
}

type broadcast6 struct {
	round.NormalBroadcastContent
	// S = Sᵢ = σᵢ⋅R
	S          *curve.Point
	ECLogProof *zkeclog.Proof
}

// StoreBroadcastMessage implements round.BroadcastRound.
//
// - verify zkeclog for Sⱼ against Tⱼ.
func (r *round6) StoreBroadcastMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*broadcast6)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.S == nil || body.ECLogProof == nil {
		return round.ErrNilFields
	}
	if !body.ECLogProof.Verify(r.HashForID(from), zkeclog.Public{
		R: r.R,
		S: body.S,
		T: r.T[from],
	}) {
		return errors.New("failed to validate eclog proof for Sⱼ")
	}
	r.S[from] = body.S
	return nil
}

// VerifyMessage implements round.Round.
func (round6) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round6) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round
//
// - check ∑ⱼ Sⱼ = X
// - output the completed offline stage.
func (r *round6) Finalize(chan<- *round.Message) (round.Session, error) {
	S := curve.NewIdentityPoint()
	for _, j := range r.PartyIDs() {
		S = S.Add(r.S[j])
	}
	if !S.Equal(r.PublicKey) {
		return r.AbortRound(errors.New("∑ⱼ Sⱼ ≠ X")), nil
	}

	preSignature := &ecdsa.PreSignature{
		R:          r.R,
		RBar:       r.RBar,
		S:          r.S,
		KShare:     r.KShare,
		SigmaShare: r.SigmaShare,
	}
	if err := preSignature.Validate(); err != nil {
		return r, err
	}

	index := 0
	for i, j := range r.Coalition {
		if j == r.SelfID() {
			index = i + 1
		}
	}
	r.GammaShare.Zero()
	r.SecretECDSA.Zero()
	r.LShare.Zero()

	return r.ResultRound(&CompletedOffline{
		ID:           r.SelfID(),
		Index:        index,
		Coalition:    r.Coalition,
		PublicKey:    r.PublicKey,
		PreSignature: preSignature,
	}), nil
}

// MessageContent implements round.Round.
func (round6) MessageContent() round.Content { return nil }

// RoundNumber implements round.Content.
func (broadcast6) RoundNumber() round.Number { return 6 }

// BroadcastContent implements round.BroadcastRound.
func (round6) BroadcastContent() round.BroadcastContent { return &broadcast6{} }

// Number implements round.Round.
func (round6) Number() round.Number { return 6 }
