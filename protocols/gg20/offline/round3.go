package offline

import (
	"errors"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-ecdsa/internal/mta"
	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	zksch "github.com/taurusgroup/threshold-ecdsa/pkg/zk/sch"
)

var _ round.BroadcastRound = (*round3)(nil)

type round3 struct {
	*round2
}

type broadcast3 struct {
	round.NormalBroadcastContent
	// BigGammaShare = Γᵢ
	BigGammaShare *curve.Point
	// Decommitment = uᵢ
	Decommitment hash.Decommitment
	// SchProof proves knowledge of γᵢ
	SchProof *zksch.Proof
}

// StoreBroadcastMessage implements round.BroadcastRound.
//
// - verify the opening of the commitment to Γⱼ,
// - verify the proof of knowledge of γⱼ.
func (r *round3) StoreBroadcastMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*broadcast3)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.BigGammaShare == nil || body.SchProof == nil {
		return round.ErrNilFields
	}
	if body.BigGammaShare.IsIdentity() {
		return errors.New("Γⱼ is the identity")
	}
	if !r.HashForID(from).Decommit(r.GammaCommitment[from], body.Decommitment, body.BigGammaShare) {
		return hash.ErrDecommit
	}
	if !body.SchProof.Verify(r.HashForID(from), body.BigGammaShare) {
		return errors.New("failed to validate Schnorr proof for γⱼ")
	}
	r.BigGammaShare[from] = body.BigGammaShare
	return nil
}

// VerifyMessage implements round.Round.
func (round3) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round3) StoreMessage(round.Message) error { return nil }

type mtaResult struct {
	deltaBeta, sigmaBeta *saferith.Int
	msg                  *message4
}

// Finalize implements round.Round
//
// - for each Pⱼ, run the MtA protocols on (Kⱼ, γᵢ) and (Kⱼ, wᵢ), with zkaffg proofs.
func (r *round3) Finalize(out chan<- *round.Message) (round.Session, error) {
	GammaShareInt := curve.MakeInt(r.GammaShare)
	SecretECDSAInt := curve.MakeInt(r.SecretECDSA)

	otherIDs := r.OtherPartyIDs()
	results := r.Pool.Parallelize(len(otherIDs), func(i int) interface{} {
		j := otherIDs[i]
		DeltaBeta, DeltaD, DeltaF, DeltaProof := mta.ProveAffG(r.HashForID(r.SelfID()),
			GammaShareInt, r.BigGammaShare[r.SelfID()], r.K[j],
			r.SecretPaillier, r.Paillier[j], r.Pedersen[j])
		SigmaBeta, SigmaD, SigmaF, SigmaProof := mta.ProveAffG(r.HashForID(r.SelfID()),
			SecretECDSAInt, r.ECDSA[r.SelfID()], r.K[j],
			r.SecretPaillier, r.Paillier[j], r.Pedersen[j])
		return &mtaResult{
			deltaBeta: DeltaBeta,
			sigmaBeta: SigmaBeta,
			msg: &message4{
				DeltaD:     DeltaD,
				DeltaF:     DeltaF,
				DeltaProof: DeltaProof,
				SigmaD:     SigmaD,
				SigmaF:     SigmaF,
				SigmaProof: SigmaProof,
			},
		}
	})

	DeltaShareBeta := make(map[party.ID]*saferith.Int, len(otherIDs))
	SigmaShareBeta := make(map[party.ID]*saferith.Int, len(otherIDs))
	for i, j := range otherIDs {
		res := results[i].(*mtaResult)
		DeltaShareBeta[j] = res.deltaBeta
		SigmaShareBeta[j] = res.sigmaBeta
		if err := r.SendMessage(out, res.msg, j); err != nil {
			return r, err
		}
	}

	return &round4{
		round3:          r,
		DeltaShareBeta:  DeltaShareBeta,
		SigmaShareBeta:  SigmaShareBeta,
		DeltaShareAlpha: make(map[party.ID]*saferith.Int, len(otherIDs)),
		SigmaShareAlpha: make(map[party.ID]*saferith.Int, len(otherIDs)),
	}, nil
}

// MessageContent implements round.Round.
func (round3) MessageContent() round.Content { return nil }

// RoundNumber implements round.Content.
func (broadcast3) RoundNumber() round.Number { return 3 }

// BroadcastContent implements round.BroadcastRound.
func (round3) BroadcastContent() round.BroadcastContent { return &broadcast3{} }

// Number implements round.Round.
func (round3) Number() round.Number { return 3 }
