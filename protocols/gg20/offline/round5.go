package offline

import (
	"errors"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	zkeclog "github.com/taurusgroup/threshold-ecdsa/pkg/zk/eclog"
	zkecped "github.com/taurusgroup/threshold-ecdsa/pkg/zk/ecped"
	zklogstar "github.com/taurusgroup/threshold-ecdsa/pkg/zk/logstar"
)

var _ round.BroadcastRound = (*round5)(nil)

type round5 struct {
	*round4

	// Gamma = Γ = ∑ⱼ Γⱼ
	Gamma *curve.Point
	// SigmaShare = σᵢ
	SigmaShare *curve.Scalar
	// LShare = lᵢ
	LShare *curve.Scalar

	// DeltaShares[j] = δⱼ
	DeltaShares map[party.ID]*curve.Scalar
	// BigDeltaShare[j] = Δⱼ = kⱼ⋅Γ
	BigDeltaShare map[party.ID]*curve.Point
	// T[j] = Tⱼ = σⱼ⋅G + lⱼ⋅H
	T map[party.ID]*curve.Point
}

type broadcast5 struct {
	round.NormalBroadcastContent
	// DeltaShare = δᵢ
	DeltaShare *curve.Scalar
	// BigDeltaShare = Δᵢ = kᵢ⋅Γ
	BigDeltaShare *curve.Point
	// T = Tᵢ = σᵢ⋅G + lᵢ⋅H
	T          *curve.Point
	ECPedProof *zkecped.Proof
}

type message5 struct {
	LogStarProof *zklogstar.Proof
}

// StoreBroadcastMessage implements round.BroadcastRound.
//
// - verify the opening proof of Tⱼ,
// - store δⱼ, Δⱼ, Tⱼ.
func (r *round5) StoreBroadcastMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*broadcast5)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.DeltaShare == nil || body.BigDeltaShare == nil || body.T == nil || body.ECPedProof == nil {
		return round.ErrNilFields
	}
	if body.BigDeltaShare.IsIdentity() || body.T.IsIdentity() {
		return errors.New("Δⱼ or Tⱼ is the identity")
	}
	if !body.ECPedProof.Verify(r.HashForID(from), zkecped.Public{T: body.T}) {
		return errors.New("failed to validate ecped proof for Tⱼ")
	}
	r.DeltaShares[from] = body.DeltaShare
	r.BigDeltaShare[from] = body.BigDeltaShare
	r.T[from] = body.T
	return nil
}

// VerifyMessage implements round.Round.
//
// - verify zklogstar for Δⱼ = kⱼ⋅Γ, where kⱼ is the plaintext of Kⱼ.
func (r *round5) VerifyMessage(msg round.Message) error {
	from, to := msg.From, msg.To
	body, ok := msg.Content.(*message5)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if r.BigDeltaShare[from] == nil {
		return errors.New("Δⱼ was not received")
	}
	if !body.LogStarProof.Verify(r.HashForID(from), zklogstar.Public{
		C:      r.K[from],
		X:      r.BigDeltaShare[from],
		G:      r.Gamma,
		Prover: r.Paillier[from],
		Aux:    r.Pedersen[to],
	}) {
		return errors.New("failed to validate log* proof for Δⱼ")
	}
	return nil
}

// StoreMessage implements round.Round.
func (round5) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round
//
// - δ = ∑ⱼ δⱼ and check δ⋅G = ∑ⱼ Δⱼ
// - R = δ⁻¹⋅Γ
// - Sᵢ = σᵢ⋅R, with a zkeclog proof that it uses the σᵢ committed in Tᵢ.
func (r *round5) Finalize(out chan<- *round.Message) (round.Session, error) {
	Delta := curve.NewScalar()
	BigDelta := curve.NewIdentityPoint()
	for _, j := range r.PartyIDs() {
		Delta.Add(r.DeltaShares[j])
		BigDelta = BigDelta.Add(r.BigDeltaShare[j])
	}
	if Delta.IsZero() || !Delta.ActOnBase().Equal(BigDelta) {
		return r.AbortRound(errors.New("δ⋅G ≠ ∑ⱼ Δⱼ")), nil
	}

	DeltaInv := Delta.Invert()
	R := DeltaInv.Act(r.Gamma)

	// R̄ⱼ = δ⁻¹⋅Δⱼ = kⱼ⋅R
	RBar := make(map[party.ID]*curve.Point, r.N())
	for _, j := range r.PartyIDs() {
		RBar[j] = DeltaInv.Act(r.BigDeltaShare[j])
	}

	SShare := r.SigmaShare.Act(R)
	proof := zkeclog.NewProof(r.HashForID(r.SelfID()), zkeclog.Public{
		R: R,
		S: SShare,
		T: r.T[r.SelfID()],
	}, zkeclog.Private{
		Sigma: r.SigmaShare,
		L:     r.LShare,
	})
	if err := r.BroadcastMessage(out, &broadcast6{
		S:          SShare,
		ECLogProof: proof,
	}); err != nil {
		return r, err
	}

	return &round6{
		round5: r,
		R:      R,
		RBar:   RBar,
		S:      map[party.ID]*curve.Point{r.SelfID(): SShare},
	}, nil
}

// MessageContent implements round.Round.
func (round5) MessageContent() round.Content { return &message5{} }

// RoundNumber implements round.Content.
func (message5) RoundNumber() round.Number { return 5 }

// RoundNumber implements round.Content.
func (broadcast5) RoundNumber() round.Number { return 5 }

// BroadcastContent implements round.BroadcastRound.
func (round5) BroadcastContent() round.BroadcastContent { return &broadcast5{} }

// Number implements round.Round.
func (round5) Number() round.Number { return 5 }
