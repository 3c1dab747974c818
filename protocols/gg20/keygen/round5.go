package keygen

import (
	"errors"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	zksch "github.com/taurusgroup/threshold-ecdsa/pkg/zk/sch"
	"github.com/taurusgroup/threshold-ecdsa/protocols/gg20/config"
)

var _ round.BroadcastRound = (*round5)(nil)

type round5 struct {
	*round4

	// ECDSA = xᵢ
	ECDSA *curve.Scalar
	// PublicKey = X = F(0)
	PublicKey *curve.Point
	// PublicShares[j] = Xⱼ = F(j)
	PublicShares map[party.ID]*curve.Point
}

type broadcast5 struct {
	round.NormalBroadcastContent
	// SchnorrProof proves knowledge of xᵢ such that Xᵢ = xᵢ⋅G
	SchnorrProof *zksch.Proof
}

// StoreBroadcastMessage implements round.BroadcastRound.
//
// - verify the proof of knowledge of xⱼ.
func (r *round5) StoreBroadcastMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*broadcast5)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.SchnorrProof == nil {
		return round.ErrNilFields
	}
	if !body.SchnorrProof.Verify(r.HashForID(from), r.PublicShares[from]) {
		return errors.New("failed to validate Schnorr proof for xⱼ")
	}
	return nil
}

// VerifyMessage implements round.Round.
func (round5) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round5) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round
//
// - output the key share.
func (r *round5) Finalize(chan<- *round.Message) (round.Session, error) {
	public := make(map[party.ID]*config.Public, r.N())
	for _, j := range r.PartyIDs() {
		public[j] = &config.Public{
			ECDSA:    r.PublicShares[j],
			Paillier: r.Paillier[j],
			Pedersen: r.Pedersen[j],
		}
	}
	c := &config.Config{
		ID:        r.SelfID(),
		Threshold: r.Threshold(),
		ECDSA:     r.ECDSA,
		Paillier:  r.PaillierSecret,
		RID:       r.RID.Copy(),
		Public:    public,
	}
	if err := c.Validate(); err != nil {
		return r, err
	}
	if !c.PublicPoint().Equal(r.PublicKey) {
		return r, errors.New("public key does not match VSS commitment")
	}
	return r.ResultRound(c), nil
}

// MessageContent implements round.Round.
func (round5) MessageContent() round.Content { return nil }

// RoundNumber implements round.Content.
func (broadcast5) RoundNumber() round.Number { return 5 }

// BroadcastContent implements round.BroadcastRound.
func (round5) BroadcastContent() round.BroadcastContent { return &broadcast5{} }

// Number implements round.Round.
func (round5) Number() round.Number { return 5 }
