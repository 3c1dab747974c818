package keygen

import (
	"crypto/rand"
	"errors"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/internal/types"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/polynomial"
	"github.com/taurusgroup/threshold-ecdsa/pkg/paillier"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	zksch "github.com/taurusgroup/threshold-ecdsa/pkg/zk/sch"
)

var _ round.Round = (*round4)(nil)

type round4 struct {
	*round3

	// RID = ⊕ⱼ ridⱼ
	RID types.RID

	// ShareReceived[j] = fⱼ(i)
	ShareReceived map[party.ID]*curve.Scalar
}

type message4 struct {
	// Share = Encᵢ(fⱼ(i))
	Share *paillier.Ciphertext
	// SchnorrResponse proves knowledge of fⱼ(0) for the commitment Aⱼ
	SchnorrResponse *zksch.Response
}

// VerifyMessage implements round.Round.
//
// - verify the Schnorr proof of knowledge of fⱼ(0).
func (r *round4) VerifyMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*message4)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.Share == nil || body.SchnorrResponse == nil {
		return round.ErrNilFields
	}
	if !body.SchnorrResponse.IsValid() {
		return errors.New("invalid Schnorr response")
	}
	if !r.PaillierSecret.ValidateCiphertexts(body.Share) {
		return errors.New("invalid share ciphertext")
	}
	if !body.SchnorrResponse.Verify(r.HashForID(from), r.VSSPolynomials[from].Constant(), r.SchnorrCommitments[from]) {
		return errors.New("failed to validate Schnorr proof for fⱼ(0)")
	}
	return nil
}

// StoreMessage implements round.Round.
//
// - decrypt fⱼ(i) and verify fⱼ(i)⋅G = Fⱼ(i).
func (r *round4) StoreMessage(msg round.Message) error {
	from := msg.From
	body := msg.Content.(*message4)

	shareInt, err := r.PaillierSecret.Dec(body.Share)
	if err != nil {
		return err
	}
	share := curve.NewScalar().SetInt(shareInt)

	expected := r.VSSPolynomials[from].Evaluate(r.SelfID().Scalar())
	if !share.ActOnBase().Equal(expected) {
		return errors.New("share does not match VSS commitment")
	}
	r.ShareReceived[from] = share
	return nil
}

// Finalize implements round.Round
//
// - set xᵢ = ∑ⱼ fⱼ(i)
// - compute F(X) = ∑ⱼ Fⱼ(X) and Xⱼ = F(j) for all parties
// - prove knowledge of xᵢ.
func (r *round4) Finalize(out chan<- *round.Message) (round.Session, error) {
	secret := curve.NewScalar()
	for _, j := range r.PartyIDs() {
		secret.Add(r.ShareReceived[j])
		r.ShareReceived[j].Zero()
	}
	r.VSSSecret.Erase()

	vssPolynomials := make([]*polynomial.Exponent, 0, r.N())
	for _, j := range r.PartyIDs() {
		vssPolynomials = append(vssPolynomials, r.VSSPolynomials[j])
	}
	vssPolynomial, err := polynomial.Sum(vssPolynomials)
	if err != nil {
		return r, err
	}

	publicShares := make(map[party.ID]*curve.Point, r.N())
	for _, j := range r.PartyIDs() {
		publicShares[j] = vssPolynomial.Evaluate(j.Scalar())
	}
	if !secret.ActOnBase().Equal(publicShares[r.SelfID()]) {
		return r, errors.New("secret share does not match public share")
	}

	proof := zksch.NewProof(r.HashForID(r.SelfID()), publicShares[r.SelfID()], secret, rand.Reader)
	if err = r.BroadcastMessage(out, &broadcast5{SchnorrProof: proof}); err != nil {
		return r, err
	}

	return &round5{
		round4:       r,
		ECDSA:        secret,
		PublicKey:    vssPolynomial.Constant(),
		PublicShares: publicShares,
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
