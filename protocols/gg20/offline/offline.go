package offline

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/polynomial"
	"github.com/taurusgroup/threshold-ecdsa/pkg/paillier"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/pedersen"
	"github.com/taurusgroup/threshold-ecdsa/pkg/pool"
	"github.com/taurusgroup/threshold-ecdsa/pkg/protocol"
	"github.com/taurusgroup/threshold-ecdsa/protocols/gg20/config"
)

// ProtocolID identifies offline stage messages.
const ProtocolID = "gg20/offline"

// Messages are sent after Proceed 1 to 5, and the sixth Proceed produces the output.
const protocolRounds round.Number = 6

// ErrInvalidCoalition is returned when a coalition cannot sign with the given key share.
var ErrInvalidCoalition = errors.New("offline: invalid coalition")

// ValidateCoalition checks that coalition contains at least t+1 distinct members of the keygen,
// including the owner of c.
func ValidateCoalition(c *config.Config, coalition []party.ID) error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidCoalition)
	}
	signers := party.NewIDSlice(coalition)
	if len(signers) != len(coalition) || !signers.Valid() {
		return fmt.Errorf("%w: duplicate or reserved party ID", ErrInvalidCoalition)
	}
	if len(signers) < c.Threshold+1 {
		return fmt.Errorf("%w: %d signers for threshold %d", ErrInvalidCoalition, len(signers), c.Threshold)
	}
	if !c.CanSign(signers) {
		return fmt.Errorf("%w: signers %v cannot sign for party %s", ErrInvalidCoalition, coalition, c.ID)
	}
	return nil
}

// Start returns a protocol.StartFunc for the offline stage of a signature between the parties of coalition.
// The order of coalition defines the signer index of each party, starting at 1.
func Start(c *config.Config, coalition []party.ID, pl *pool.Pool) protocol.StartFunc {
	return func(sessionID []byte) (round.Session, error) {
		if err := ValidateCoalition(c, coalition); err != nil {
			return nil, err
		}
		signers := party.NewIDSlice(coalition)

		info := round.Info{
			ProtocolID:       ProtocolID,
			FinalRoundNumber: protocolRounds,
			SelfID:           c.ID,
			PartyIDs:         signers,
			Threshold:        c.Threshold,
		}
		helper, err := round.NewSession(info, sessionID, pl, c)
		if err != nil {
			return nil, fmt.Errorf("offline: %w", err)
		}

		// wᵢ = λᵢ⋅xᵢ and Wⱼ = λⱼ⋅Xⱼ, so that ∑ⱼ wⱼ = x
		lagrange := polynomial.Lagrange(signers)
		ecdsa := make(map[party.ID]*curve.Point, len(signers))
		paillierPublic := make(map[party.ID]*paillier.PublicKey, len(signers))
		pedersenPublic := make(map[party.ID]*pedersen.Parameters, len(signers))
		for _, j := range signers {
			public := c.Public[j]
			ecdsa[j] = lagrange[j].Act(public.ECDSA)
			paillierPublic[j] = public.Paillier
			pedersenPublic[j] = public.Pedersen
		}

		coalitionCopy := make([]party.ID, len(coalition))
		copy(coalitionCopy, coalition)

		return &round1{
			Helper:         helper,
			Coalition:      coalitionCopy,
			PublicKey:      c.PublicPoint(),
			SecretECDSA:    lagrange[c.ID].Mul(c.ECDSA),
			SecretPaillier: c.Paillier,
			ECDSA:          ecdsa,
			Paillier:       paillierPublic,
			Pedersen:       pedersenPublic,
		}, nil
	}
}
