package offline

import (
	"crypto/rand"
	"errors"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-ecdsa/internal/mta"
	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
	"github.com/taurusgroup/threshold-ecdsa/pkg/paillier"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	zkaffg "github.com/taurusgroup/threshold-ecdsa/pkg/zk/affg"
	zkecped "github.com/taurusgroup/threshold-ecdsa/pkg/zk/ecped"
	zklogstar "github.com/taurusgroup/threshold-ecdsa/pkg/zk/logstar"
)

var _ round.Round = (*round4)(nil)

type round4 struct {
	*round3

	// DeltaShareBeta[j] = βᵢⱼ
	DeltaShareBeta map[party.ID]*saferith.Int
	// SigmaShareBeta[j] = β̂ᵢⱼ
	SigmaShareBeta map[party.ID]*saferith.Int

	// DeltaShareAlpha[j] = αᵢⱼ
	DeltaShareAlpha map[party.ID]*saferith.Int
	// SigmaShareAlpha[j] = α̂ᵢⱼ
	SigmaShareAlpha map[party.ID]*saferith.Int
}

type message4 struct {
	// DeltaD = Dᵢⱼ = (γⱼ ⊙ Kᵢ) ⊕ Encᵢ(-βⱼᵢ)
	DeltaD *paillier.Ciphertext
	// DeltaF = Fⱼᵢ = Encⱼ(-βⱼᵢ)
	DeltaF     *paillier.Ciphertext
	DeltaProof *zkaffg.Proof
	// SigmaD = D̂ᵢⱼ = (wⱼ ⊙ Kᵢ) ⊕ Encᵢ(-β̂ⱼᵢ)
	SigmaD *paillier.Ciphertext
	// SigmaF = F̂ⱼᵢ = Encⱼ(-β̂ⱼᵢ)
	SigmaF     *paillier.Ciphertext
	SigmaProof *zkaffg.Proof
}

// VerifyMessage implements round.Round.
//
// - verify both zkaffg proofs, against Γⱼ and Wⱼ.
func (r *round4) VerifyMessage(msg round.Message) error {
	from, to := msg.From, msg.To
	body, ok := msg.Content.(*message4)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.DeltaD == nil || body.DeltaF == nil || body.SigmaD == nil || body.SigmaF == nil ||
		body.DeltaProof == nil || body.SigmaProof == nil {
		return round.ErrNilFields
	}

	if !mta.VerifyAffG(r.HashForID(from), body.DeltaProof, r.BigGammaShare[from], r.K[to],
		body.DeltaD, body.DeltaF, r.Paillier[from], r.Paillier[to], r.Pedersen[to]) {
		return errors.New("failed to validate affg proof for δ MtA")
	}
	if !mta.VerifyAffG(r.HashForID(from), body.SigmaProof, r.ECDSA[from], r.K[to],
		body.SigmaD, body.SigmaF, r.Paillier[from], r.Paillier[to], r.Pedersen[to]) {
		return errors.New("failed to validate affg proof for σ MtA")
	}
	return nil
}

// StoreMessage implements round.Round.
//
// - decrypt αᵢⱼ and α̂ᵢⱼ.
func (r *round4) StoreMessage(msg round.Message) error {
	from := msg.From
	body := msg.Content.(*message4)

	alpha, err := r.SecretPaillier.Dec(body.DeltaD)
	if err != nil {
		return err
	}
	alphaHat, err := r.SecretPaillier.Dec(body.SigmaD)
	if err != nil {
		return err
	}
	r.DeltaShareAlpha[from] = alpha
	r.SigmaShareAlpha[from] = alphaHat
	return nil
}

// Finalize implements round.Round
//
// - δᵢ = kᵢγᵢ + ∑ⱼ (αᵢⱼ + βᵢⱼ)
// - σᵢ = kᵢwᵢ + ∑ⱼ (α̂ᵢⱼ + β̂ᵢⱼ)
// - Γ = ∑ⱼ Γⱼ and Δᵢ = kᵢ⋅Γ
// - Tᵢ = σᵢ⋅G + lᵢ⋅H, with a zkecped proof of opening
// - prove zklogstar for Δᵢ to each Pⱼ.
func (r *round4) Finalize(out chan<- *round.Message) (round.Session, error) {
	KShareInt := curve.MakeInt(r.KShare)
	DeltaShare := new(saferith.Int).Mul(curve.MakeInt(r.GammaShare), KShareInt, -1)
	SigmaShare := new(saferith.Int).Mul(curve.MakeInt(r.SecretECDSA), KShareInt, -1)
	for _, j := range r.OtherPartyIDs() {
		DeltaShare.Add(DeltaShare, r.DeltaShareAlpha[j], -1)
		DeltaShare.Add(DeltaShare, r.DeltaShareBeta[j], -1)
		SigmaShare.Add(SigmaShare, r.SigmaShareAlpha[j], -1)
		SigmaShare.Add(SigmaShare, r.SigmaShareBeta[j], -1)
	}
	DeltaShareScalar := curve.NewScalar().SetInt(DeltaShare)
	SigmaShareScalar := curve.NewScalar().SetInt(SigmaShare)

	Gamma := curve.NewIdentityPoint()
	for _, j := range r.PartyIDs() {
		Gamma = Gamma.Add(r.BigGammaShare[j])
	}
	BigDeltaShare := r.KShare.Act(Gamma)

	// Tᵢ = σᵢ⋅G + lᵢ⋅H
	LShare := sample.Scalar(rand.Reader)
	TShare := SigmaShareScalar.ActOnBase().Add(LShare.Act(curve.H()))
	ecpedProof := zkecped.NewProof(r.HashForID(r.SelfID()), zkecped.Public{T: TShare}, zkecped.Private{
		A: SigmaShareScalar,
		B: LShare,
	})

	if err := r.BroadcastMessage(out, &broadcast5{
		DeltaShare:    DeltaShareScalar,
		BigDeltaShare: BigDeltaShare,
		T:             TShare,
		ECPedProof:    ecpedProof,
	}); err != nil {
		return r, err
	}

	otherIDs := r.OtherPartyIDs()
	errs := r.Pool.Parallelize(len(otherIDs), func(i int) interface{} {
		j := otherIDs[i]
		proof := zklogstar.NewProof(r.HashForID(r.SelfID()), zklogstar.Public{
			C:      r.K[r.SelfID()],
			X:      BigDeltaShare,
			G:      Gamma,
			Prover: r.Paillier[r.SelfID()],
			Aux:    r.Pedersen[j],
		}, zklogstar.Private{
			X:   KShareInt,
			Rho: r.KNonce,
		})
		return r.SendMessage(out, &message5{LogStarProof: proof}, j)
	})
	for _, err := range errs {
		if err != nil {
			return r, err.(error)
		}
	}

	return &round5{
		round4:        r,
		Gamma:         Gamma,
		SigmaShare:    SigmaShareScalar,
		LShare:        LShare,
		DeltaShares:   map[party.ID]*curve.Scalar{r.SelfID(): DeltaShareScalar},
		BigDeltaShare: map[party.ID]*curve.Point{r.SelfID(): BigDeltaShare},
		T:             map[party.ID]*curve.Point{r.SelfID(): TShare},
	}, nil
}

// StoreBroadcastMessage implements round.BroadcastRound.
func (round4) StoreBroadcastMessage(round.Message) error { return nil }

// MessageContent implements round.Round.
func (round4) MessageContent() round.Content { return &message4{} }

// BroadcastContent implements round.BroadcastRound.
// Only point-to-point messages are consumed in this round.
func (round4) BroadcastContent() round.BroadcastContent { return nil }

// RoundNumber implements round.Content.
func (message4) RoundNumber() round.Number { return 4 }

// Number implements round.Round.
func (round4) Number() round.Number { return 4 }
