package keygen

import (
	"errors"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/internal/types"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/polynomial"
	"github.com/taurusgroup/threshold-ecdsa/pkg/paillier"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/pedersen"
	zkmod "github.com/taurusgroup/threshold-ecdsa/pkg/zk/mod"
	zkprm "github.com/taurusgroup/threshold-ecdsa/pkg/zk/prm"
	zksch "github.com/taurusgroup/threshold-ecdsa/pkg/zk/sch"
)

var _ round.BroadcastRound = (*round2)(nil)

type round2 struct {
	*round1

	// VSSPolynomials[j] = Fⱼ(X) = fⱼ(X)•G
	VSSPolynomials map[party.ID]*polynomial.Exponent

	// Commitments[j] = H(ridⱼ, Fⱼ, Aⱼ, Nⱼ, sⱼ, tⱼ ∥ uⱼ)
	Commitments map[party.ID]hash.Commitment

	// RIDs[j] = ridⱼ
	RIDs map[party.ID]types.RID

	// Paillier[j] = Nⱼ
	Paillier map[party.ID]*paillier.PublicKey

	// Pedersen[j] = (Nⱼ, sⱼ, tⱼ)
	Pedersen map[party.ID]*pedersen.Parameters

	// SchnorrRand = aᵢ
	// Randomness used to compute the Schnorr commitment of the proof of knowledge of fᵢ(0)
	SchnorrRand *zksch.Randomness

	// Decommitment uᵢ
	Decommitment hash.Decommitment
}

type broadcast2 struct {
	round.NormalBroadcastContent
	// Commitment = Vᵢ = H(ridᵢ, Fᵢ, Aᵢ, Nᵢ, sᵢ, tᵢ ∥ uᵢ)
	Commitment hash.Commitment
	// Pedersen = (Nᵢ, sᵢ, tᵢ)
	Pedersen *pedersen.Parameters
	Mod      *zkmod.Proof
	Prm      *zkprm.Proof
}

// StoreBroadcastMessage implements round.BroadcastRound.
//
// - validate Nⱼ, sⱼ, tⱼ
// - verify zkmod and zkprm
// - store commitment Vⱼ.
func (r *round2) StoreBroadcastMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*broadcast2)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.Pedersen == nil || body.Mod == nil || body.Prm == nil {
		return round.ErrNilFields
	}
	if err := body.Commitment.Validate(); err != nil {
		return err
	}

	N := body.Pedersen.N()
	if err := paillier.ValidateN(N); err != nil {
		return err
	}
	if err := pedersen.ValidateParameters(N, body.Pedersen.S(), body.Pedersen.T()); err != nil {
		return err
	}

	h := r.HashForID(from)
	if !body.Mod.Verify(zkmod.Public{N: N}, h.Clone(), r.Pool) {
		return errors.New("failed to validate mod proof")
	}
	if !body.Prm.Verify(zkprm.Public{N: N, S: body.Pedersen.S(), T: body.Pedersen.T()}, h.Clone(), r.Pool) {
		return errors.New("failed to validate prm proof")
	}

	r.Commitments[from] = body.Commitment
	r.Paillier[from] = paillier.NewPublicKey(N)
	r.Pedersen[from] = body.Pedersen
	return nil
}

// VerifyMessage implements round.Round.
func (round2) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round2) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round
//
// - send the decommitment (ridᵢ, Fᵢ, Aᵢ, uᵢ).
func (r *round2) Finalize(out chan<- *round.Message) (round.Session, error) {
	if err := r.BroadcastMessage(out, &broadcast3{
		RID:               r.RIDs[r.SelfID()],
		VSSPolynomial:     r.VSSPolynomials[r.SelfID()],
		SchnorrCommitment: r.SchnorrRand.Commitment(),
		Decommitment:      r.Decommitment,
	}); err != nil {
		return r, err
	}
	return &round3{
		round2:             r,
		SchnorrCommitments: map[party.ID]*zksch.Commitment{r.SelfID(): r.SchnorrRand.Commitment()},
	}, nil
}

// MessageContent implements round.Round.
func (round2) MessageContent() round.Content { return nil }

// RoundNumber implements round.Content.
func (broadcast2) RoundNumber() round.Number { return 2 }

// BroadcastContent implements round.BroadcastRound.
func (round2) BroadcastContent() round.BroadcastContent { return &broadcast2{} }

// Number implements round.Round.
func (round2) Number() round.Number { return 2 }
