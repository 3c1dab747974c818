package offline

import (
	"crypto/rand"
	"errors"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/paillier"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	zkenc "github.com/taurusgroup/threshold-ecdsa/pkg/zk/enc"
	zksch "github.com/taurusgroup/threshold-ecdsa/pkg/zk/sch"
)

var _ round.BroadcastRound = (*round2)(nil)

type round2 struct {
	*round1

	// KShare = kᵢ
	KShare *curve.Scalar
	// KNonce = ρᵢ
	KNonce *saferith.Nat
	// GammaShare = γᵢ
	GammaShare *curve.Scalar

	// BigGammaShare[j] = Γⱼ = γⱼ⋅G
	BigGammaShare map[party.ID]*curve.Point
	// GammaDecommit = uᵢ
	GammaDecommit hash.Decommitment

	// K[j] = Kⱼ = Encⱼ(kⱼ)
	K map[party.ID]*paillier.Ciphertext
	// GammaCommitment[j] = H(Γⱼ ∥ uⱼ)
	GammaCommitment map[party.ID]hash.Commitment
}

type broadcast2 struct {
	round.NormalBroadcastContent
	// K = Kᵢ
	K *paillier.Ciphertext
	// Commitment = H(Γᵢ ∥ uᵢ)
	Commitment hash.Commitment
}

type message2 struct {
	EncProof *zkenc.Proof
}

// StoreBroadcastMessage implements round.BroadcastRound.
//
// - store Kⱼ and the commitment to Γⱼ.
func (r *round2) StoreBroadcastMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*broadcast2)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.K == nil {
		return round.ErrNilFields
	}
	if err := body.Commitment.Validate(); err != nil {
		return err
	}
	if !r.Paillier[from].ValidateCiphertexts(body.K) {
		return errors.New("invalid K ciphertext")
	}
	r.K[from] = body.K
	r.GammaCommitment[from] = body.Commitment
	return nil
}

// VerifyMessage implements round.Round.
//
// - verify zkenc for Kⱼ.
func (r *round2) VerifyMessage(msg round.Message) error {
	from, to := msg.From, msg.To
	body, ok := msg.Content.(*message2)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if r.K[from] == nil {
		return errors.New("K was not received")
	}
	if !body.EncProof.Verify(r.HashForID(from), zkenc.Public{
		K:      r.K[from],
		Prover: r.Paillier[from],
		Aux:    r.Pedersen[to],
	}) {
		return errors.New("failed to validate enc proof for K")
	}
	return nil
}

// StoreMessage implements round.Round.
func (round2) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round
//
// - open the commitment to Γᵢ and prove knowledge of γᵢ.
func (r *round2) Finalize(out chan<- *round.Message) (round.Session, error) {
	proof := zksch.NewProof(r.HashForID(r.SelfID()), r.BigGammaShare[r.SelfID()], r.GammaShare, rand.Reader)
	if err := r.BroadcastMessage(out, &broadcast3{
		BigGammaShare: r.BigGammaShare[r.SelfID()],
		Decommitment:  r.GammaDecommit,
		SchProof:      proof,
	}); err != nil {
		return r, err
	}
	return &round3{round2: r}, nil
}

// MessageContent implements round.Round.
func (round2) MessageContent() round.Content { return &message2{} }

// RoundNumber implements round.Content.
func (message2) RoundNumber() round.Number { return 2 }

// RoundNumber implements round.Content.
func (broadcast2) RoundNumber() round.Number { return 2 }

// BroadcastContent implements round.BroadcastRound.
func (round2) BroadcastContent() round.BroadcastContent { return &broadcast2{} }

// Number implements round.Round.
func (round2) Number() round.Number { return 2 }
