package keygen

import (
	"crypto/rand"
	"fmt"

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

var _ round.Round = (*round1)(nil)

type round1 struct {
	*round.Helper

	// VSSSecret = fᵢ(X)
	// Polynomial from which the secret shares are computed, with fᵢ(0) = xᵢ⁰.
	VSSSecret *polynomial.Polynomial

	// PaillierSecret = (pᵢ, qᵢ), or nil if it must be generated.
	PaillierSecret *paillier.SecretKey
}

// VerifyMessage implements round.Round.
func (r *round1) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (r *round1) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round
//
// - sample Paillier (pᵢ, qᵢ) if none was given
// - sample Pedersen Nᵢ, sᵢ, tᵢ
// - sample aᵢ <- 𝔽 and set Aᵢ = aᵢ⋅G
// - compute Fᵢ(X) = fᵢ(X)⋅G
// - sample ridᵢ <- {0,1}ᵏ
// - commit to (ridᵢ, Fᵢ, Aᵢ, Nᵢ, sᵢ, tᵢ)
// - prove Nᵢ is Blum, and that sᵢ, tᵢ are valid Pedersen parameters.
func (r *round1) Finalize(out chan<- *round.Message) (round.Session, error) {
	if r.PaillierSecret == nil {
		r.PaillierSecret = paillier.NewSecretKey(r.Pool)
	}
	paillierSecret := r.PaillierSecret
	selfPedersen, pedersenSecret := paillierSecret.GeneratePedersen()

	// set Fᵢ(X) = fᵢ(X)•G
	selfVSSPolynomial := polynomial.NewPolynomialExponent(r.VSSSecret)

	// Schnorr randomness for the proof of knowledge of fᵢ(0)
	schnorrRand := zksch.NewRandomness(rand.Reader)

	selfRID, err := types.NewRID(rand.Reader)
	if err != nil {
		return r, fmt.Errorf("failed to sample rid: %w", err)
	}

	selfCommitment, decommitment, err := r.HashForID(r.SelfID()).Commit(
		selfRID, selfVSSPolynomial, schnorrRand.Commitment(), selfPedersen)
	if err != nil {
		return r, fmt.Errorf("failed to commit: %w", err)
	}

	h := r.HashForID(r.SelfID())
	mod := zkmod.NewProof(h.Clone(), zkmod.Private{
		P:   paillierSecret.P(),
		Q:   paillierSecret.Q(),
		Phi: paillierSecret.Phi(),
	}, zkmod.Public{N: selfPedersen.N()}, r.Pool)
	prm := zkprm.NewProof(zkprm.Private{
		Lambda: pedersenSecret,
		Phi:    paillierSecret.Phi(),
		P:      paillierSecret.P(),
		Q:      paillierSecret.Q(),
	}, h.Clone(), zkprm.Public{N: selfPedersen.N(), S: selfPedersen.S(), T: selfPedersen.T()}, r.Pool)

	if err = r.BroadcastMessage(out, &broadcast2{
		Commitment: selfCommitment,
		Pedersen:   selfPedersen,
		Mod:        mod,
		Prm:        prm,
	}); err != nil {
		return r, err
	}

	return &round2{
		round1:         r,
		VSSPolynomials: map[party.ID]*polynomial.Exponent{r.SelfID(): selfVSSPolynomial},
		Commitments:    map[party.ID]hash.Commitment{r.SelfID(): selfCommitment},
		RIDs:           map[party.ID]types.RID{r.SelfID(): selfRID},
		Paillier:       map[party.ID]*paillier.PublicKey{r.SelfID(): paillierSecret.PublicKey},
		Pedersen:       map[party.ID]*pedersen.Parameters{r.SelfID(): selfPedersen},
		SchnorrRand:    schnorrRand,
		Decommitment:   decommitment,
	}, nil
}

// MessageContent implements round.Round.
func (round1) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (round1) Number() round.Number { return 1 }
