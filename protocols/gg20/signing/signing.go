// Package signing produces an ECDSA signature from the result of the offline stage.
//
// Each signer computes a partial signature locally with NewSignManual, sends it to the other signers,
// and combines the partial signatures it receives with Signer.Complete.
package signing

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/pkg/ecdsa"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/protocols/gg20/offline"
)

var (
	// ErrIncomplete is returned by Complete when partial signatures are missing.
	ErrIncomplete = errors.New("signing: not enough partial signatures")
	// ErrInvalidPartial is returned by Complete when a partial signature is invalid or unexpected.
	ErrInvalidPartial = errors.New("signing: invalid partial signature")
	// ErrConsumed is returned when the result of an offline stage is used more than once.
	ErrConsumed = errors.New("signing: offline stage result already used")
)

// PartialSignature is a signer's share sᵢ = m⋅kᵢ + r⋅σᵢ of the signature.
type PartialSignature struct {
	Signer party.ID
	S      *curve.Scalar
}

// Signer holds the public data needed to verify and combine partial signatures for one message.
type Signer struct {
	message   []byte
	self      *PartialSignature
	publicKey *curve.Point
	coalition party.IDSlice
	// preSignature has its secrets erased
	preSignature *ecdsa.PreSignature
}

// NewSignManual computes this party's partial signature for message.
//
// message is interpreted as a big-endian integer, truncated to the size of the group order.
// The secrets in completed are erased, and any further call with the same value returns ErrConsumed.
func NewSignManual(message []byte, completed *offline.CompletedOffline) (*Signer, *PartialSignature, error) {
	if completed == nil {
		return nil, nil, errors.New("signing: nil offline stage result")
	}
	if completed.Erased() {
		return nil, nil, ErrConsumed
	}
	if err := completed.Validate(); err != nil {
		return nil, nil, fmt.Errorf("signing: %w", err)
	}

	share := completed.PreSignature.SignatureShare(message)
	completed.Erase()

	partial := &PartialSignature{
		Signer: completed.ID,
		S:      share,
	}
	msg := make([]byte, len(message))
	copy(msg, message)
	return &Signer{
		message:      msg,
		self:         partial,
		publicKey:    completed.PublicKey,
		coalition:    party.NewIDSlice(completed.Coalition),
		preSignature: completed.PreSignature,
	}, partial, nil
}

// Complete combines the partial signatures of all other signers with our own,
// and returns a low-s signature which verifies under the public key.
//
// Exactly one partial signature is expected from each other member of the coalition.
func (s *Signer) Complete(partials []*PartialSignature) (*ecdsa.Signature, error) {
	shares := map[party.ID]*ecdsa.SignatureShare{s.self.Signer: s.self.S}
	for _, p := range partials {
		if p == nil || p.S == nil {
			return nil, fmt.Errorf("%w: empty partial signature", ErrInvalidPartial)
		}
		j := p.Signer
		if j == s.self.Signer {
			return nil, fmt.Errorf("%w: partial signature from self", ErrInvalidPartial)
		}
		if !s.coalition.Contains(j) {
			return nil, fmt.Errorf("%w: party %s is not a signer", ErrInvalidPartial, j)
		}
		if _, ok := shares[j]; ok {
			return nil, fmt.Errorf("%w: duplicate partial signature from party %s", ErrInvalidPartial, j)
		}
		if !s.preSignature.VerifySignatureShare(j, p.S, s.message) {
			return nil, fmt.Errorf("%w: party %s", ErrInvalidPartial, j)
		}
		shares[j] = p.S
	}
	if len(shares) < len(s.coalition) {
		return nil, fmt.Errorf("%w: have %d of %d", ErrIncomplete, len(shares), len(s.coalition))
	}

	sig := s.preSignature.Signature(shares)
	sig.Normalize()
	if !sig.Verify(s.publicKey, s.message) {
		return nil, errors.New("signing: combined signature is invalid")
	}
	return sig, nil
}

// Verify returns true if sig is a valid signature of message under publicKey.
// message is interpreted as in NewSignManual.
func Verify(sig *ecdsa.Signature, publicKey *curve.Point, message []byte) bool {
	if sig == nil || publicKey == nil {
		return false
	}
	return sig.Verify(publicKey, message)
}
