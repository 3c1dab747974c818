package offline

import (
	"crypto/rand"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
	"github.com/taurusgroup/threshold-ecdsa/pkg/paillier"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/pedersen"
	zkenc "github.com/taurusgroup/threshold-ecdsa/pkg/zk/enc"
)

var _ round.Round = (*round1)(nil)

type round1 struct {
	*round.Helper

	// Coalition is the ordered list of signers.
	Coalition []party.ID

	// PublicKey = X
	PublicKey *curve.Point

	// SecretECDSA = wᵢ = λᵢ⋅xᵢ
	SecretECDSA *curve.Scalar
	// SecretPaillier = (pᵢ, qᵢ)
	SecretPaillier *paillier.SecretKey

	// ECDSA[j] = Wⱼ = λⱼ⋅Xⱼ
	ECDSA map[party.ID]*curve.Point
	// Paillier[j] = Nⱼ
	Paillier map[party.ID]*paillier.PublicKey
	// Pedersen[j] = (Nⱼ, sⱼ, tⱼ)
	Pedersen map[party.ID]*pedersen.Parameters
}

// VerifyMessage implements round.Round.
func (r *round1) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (r *round1) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round
//
// - sample kᵢ, γᵢ <- 𝔽,
// - Kᵢ = Encᵢ(kᵢ; ρᵢ),
// - Γᵢ = γᵢ⋅G, and commit to it,
// - prove zkenc for Kᵢ to each Pⱼ.
func (r *round1) Finalize(out chan<- *round.Message) (round.Session, error) {
	KShare := sample.ScalarUnit(rand.Reader)
	GammaShare := sample.ScalarUnit(rand.Reader)
	BigGammaShare := GammaShare.ActOnBase()

	KShareInt := curve.MakeInt(KShare)
	K, KNonce := r.Paillier[r.SelfID()].Enc(KShareInt)

	commitment, decommitment, err := r.HashForID(r.SelfID()).Commit(BigGammaShare)
	if err != nil {
		return r, err
	}

	if err = r.BroadcastMessage(out, &broadcast2{
		K:          K,
		Commitment: commitment,
	}); err != nil {
		return r, err
	}

	otherIDs := r.OtherPartyIDs()
	errs := r.Pool.Parallelize(len(otherIDs), func(i int) interface{} {
		j := otherIDs[i]
		proof := zkenc.NewProof(r.HashForID(r.SelfID()), zkenc.Public{
			K:      K,
			Prover: r.Paillier[r.SelfID()],
			Aux:    r.Pedersen[j],
		}, zkenc.Private{
			K:   KShareInt,
			Rho: KNonce,
		})
		return r.SendMessage(out, &message2{EncProof: proof}, j)
	})
	for _, err := range errs {
		if err != nil {
			return r, err.(error)
		}
	}

	return &round2{
		round1:          r,
		KShare:          KShare,
		KNonce:          KNonce,
		GammaShare:      GammaShare,
		BigGammaShare:   map[party.ID]*curve.Point{r.SelfID(): BigGammaShare},
		GammaDecommit:   decommitment,
		K:               map[party.ID]*paillier.Ciphertext{r.SelfID(): K},
		GammaCommitment: map[party.ID]hash.Commitment{r.SelfID(): commitment},
	}, nil
}

// MessageContent implements round.Round.
func (round1) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (round1) Number() round.Number { return 1 }
