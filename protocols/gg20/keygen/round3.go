package keygen

import (
	"errors"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/internal/types"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/polynomial"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	zksch "github.com/taurusgroup/threshold-ecdsa/pkg/zk/sch"
)

var _ round.BroadcastRound = (*round3)(nil)

type round3 struct {
	*round2

	// SchnorrCommitments[j] = Aⱼ
	// Commitment for the proof of knowledge of fⱼ(0) in the next round
	SchnorrCommitments map[party.ID]*zksch.Commitment
}

type broadcast3 struct {
	round.NormalBroadcastContent
	// RID = ridᵢ
	RID types.RID
	// VSSPolynomial = Fᵢ(X) = fᵢ(X)•G
	VSSPolynomial *polynomial.Exponent
	// SchnorrCommitment = Aᵢ = aᵢ⋅G
	SchnorrCommitment *zksch.Commitment
	// Decommitment = uᵢ
	Decommitment hash.Decommitment
}

// StoreBroadcastMessage implements round.BroadcastRound.
//
// - verify the opening of Vⱼ, with the Pedersen parameters received in the first round
// - verify deg(Fⱼ) = t and Fⱼ(0) ≠ ∞
// - store ridⱼ, Fⱼ(X), Aⱼ.
func (r *round3) StoreBroadcastMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*broadcast3)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.VSSPolynomial == nil || body.SchnorrCommitment == nil {
		return round.ErrNilFields
	}
	if err := body.RID.Validate(); err != nil {
		return err
	}
	if err := body.Decommitment.Validate(); err != nil {
		return err
	}
	if !body.SchnorrCommitment.IsValid() {
		return errors.New("invalid Schnorr commitment")
	}

	// check deg(Fⱼ) = t
	if body.VSSPolynomial.Degree() != r.Threshold() {
		return errors.New("VSS polynomial has incorrect degree")
	}
	if body.VSSPolynomial.Constant().IsIdentity() {
		return errors.New("VSS polynomial has constant coefficient ∞")
	}

	if !r.HashForID(from).Decommit(r.Commitments[from], body.Decommitment,
		body.RID, body.VSSPolynomial, body.SchnorrCommitment, r.Pedersen[from]) {
		return hash.ErrDecommit
	}

	r.RIDs[from] = body.RID
	r.VSSPolynomials[from] = body.VSSPolynomial
	r.SchnorrCommitments[from] = body.SchnorrCommitment
	return nil
}

// VerifyMessage implements round.Round.
func (round3) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round3) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round
//
// - set rid = ⊕ⱼ ridⱼ and update the hash state
// - prove knowledge of fᵢ(0) with respect to the Schnorr commitment Aᵢ
// - send Encⱼ(fᵢ(j)) to each Pⱼ, together with the proof.
func (r *round3) Finalize(out chan<- *round.Message) (round.Session, error) {
	rid := types.EmptyRID()
	for _, j := range r.PartyIDs() {
		rid.XOR(r.RIDs[j])
	}
	r.UpdateHashState(rid)

	selfConstant := r.VSSPolynomials[r.SelfID()].Constant()
	schnorrResponse := r.SchnorrRand.Prove(r.HashForID(r.SelfID()), selfConstant, r.VSSSecret.Constant())

	otherIDs := r.OtherPartyIDs()
	errs := r.Pool.Parallelize(len(otherIDs), func(i int) interface{} {
		j := otherIDs[i]
		// Cⱼ = Encⱼ(fᵢ(j))
		share := r.VSSSecret.Evaluate(j.Scalar())
		C, _ := r.Paillier[j].Enc(share.Int())
		share.Zero()
		return r.SendMessage(out, &message4{
			Share:           C,
			SchnorrResponse: schnorrResponse,
		}, j)
	})
	for _, err := range errs {
		if err != nil {
			return r, err.(error)
		}
	}

	return &round4{
		round3:        r,
		RID:           rid,
		ShareReceived: map[party.ID]*curve.Scalar{r.SelfID(): r.VSSSecret.Evaluate(r.SelfID().Scalar())},
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
