package keygen

import (
	"crypto/rand"
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/polynomial"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
	"github.com/taurusgroup/threshold-ecdsa/pkg/paillier"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/pool"
	"github.com/taurusgroup/threshold-ecdsa/pkg/protocol"
)

// ProtocolID identifies keygen messages.
const ProtocolID = "gg20/keygen"

const protocolRounds round.Number = 5

type options struct {
	paillier *paillier.SecretKey
}

// Option configures a keygen execution.
type Option func(*options)

// WithPaillier sets the Paillier secret key used by this party, instead of generating a new one.
// The Pedersen parameters are still sampled freshly for each execution.
// The key must not be used by any other party.
func WithPaillier(sk *paillier.SecretKey) Option {
	return func(o *options) {
		o.paillier = sk
	}
}

// Start returns a protocol.StartFunc for a keygen between partyIDs,
// where any threshold+1 parties can later sign.
func Start(selfID party.ID, partyIDs []party.ID, threshold int, pl *pool.Pool, opts ...Option) protocol.StartFunc {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	info := round.Info{
		ProtocolID:       ProtocolID,
		FinalRoundNumber: protocolRounds,
		SelfID:           selfID,
		PartyIDs:         partyIDs,
		Threshold:        threshold,
	}
	return func(sessionID []byte) (round.Session, error) {
		helper, err := round.NewSession(info, sessionID, pl)
		if err != nil {
			return nil, fmt.Errorf("keygen: %w", err)
		}
		if o.paillier != nil {
			if err = paillier.ValidatePrime(o.paillier.P()); err != nil {
				return nil, fmt.Errorf("keygen: Paillier prime p: %w", err)
			}
			if err = paillier.ValidatePrime(o.paillier.Q()); err != nil {
				return nil, fmt.Errorf("keygen: Paillier prime q: %w", err)
			}
		}

		// sample fᵢ(X) deg(fᵢ) = t, fᵢ(0) = xᵢ⁰
		vssSecret := polynomial.NewPolynomial(helper.Threshold(), sample.Scalar(rand.Reader))
		return &round1{
			Helper:         helper,
			VSSSecret:      vssSecret,
			PaillierSecret: o.paillier,
		}, nil
	}
}
