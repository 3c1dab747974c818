package offline

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/threshold-ecdsa/pkg/ecdsa"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

// CompletedOffline is the result of the offline stage for one signer.
// It can be used to produce a single partial signature, after which its secrets are erased.
type CompletedOffline struct {
	// ID of the party holding this value.
	ID party.ID
	// Index is the 1-based position of ID in Coalition.
	Index int
	// Coalition is the ordered list of signers.
	Coalition []party.ID
	// PublicKey = X, the key the signature will verify under.
	PublicKey *curve.Point
	// PreSignature holds R, R̄ⱼ, Sⱼ and the secrets kᵢ, σᵢ.
	PreSignature *ecdsa.PreSignature

	erased bool
}

// Validate checks that the value is complete and consistent.
func (c *CompletedOffline) Validate() error {
	if c == nil || c.PublicKey == nil || c.PreSignature == nil {
		return errors.New("offline: one or more field is empty")
	}
	if c.Index < 1 || c.Index > len(c.Coalition) || c.Coalition[c.Index-1] != c.ID {
		return fmt.Errorf("offline: index %d does not match party %s", c.Index, c.ID)
	}
	signers := party.NewIDSlice(c.Coalition)
	if len(signers) != len(c.Coalition) || !signers.Valid() {
		return errors.New("offline: coalition contains duplicates")
	}
	if !c.PreSignature.SignerIDs().Contains(signers...) || len(c.PreSignature.SignerIDs()) != len(signers) {
		return errors.New("offline: verification points do not match coalition")
	}
	if c.PublicKey.IsIdentity() {
		return errors.New("offline: public key is identity")
	}
	if c.erased {
		return nil
	}
	return c.PreSignature.Validate()
}

// Erase zeroes the secret nonce kᵢ and share σᵢ. The value cannot be used to sign afterwards.
func (c *CompletedOffline) Erase() {
	if c.PreSignature != nil {
		c.PreSignature.Erase()
	}
	c.erased = true
}

// Erased returns true once Erase has been called.
func (c *CompletedOffline) Erased() bool {
	return c.erased
}

type completedMarshal struct {
	ID         party.ID
	Index      int
	Coalition  []party.ID
	PublicKey  *curve.Point
	R          *curve.Point
	RBar       map[party.ID]*curve.Point
	S          map[party.ID]*curve.Point
	KShare     *curve.Scalar
	SigmaShare *curve.Scalar
	Erased     bool
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (c *CompletedOffline) MarshalBinary() ([]byte, error) {
	if c.PreSignature == nil {
		return nil, errors.New("offline: nil presignature")
	}
	return cbor.Marshal(&completedMarshal{
		ID:         c.ID,
		Index:      c.Index,
		Coalition:  c.Coalition,
		PublicKey:  c.PublicKey,
		R:          c.PreSignature.R,
		RBar:       c.PreSignature.RBar,
		S:          c.PreSignature.S,
		KShare:     c.PreSignature.KShare,
		SigmaShare: c.PreSignature.SigmaShare,
		Erased:     c.erased,
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler, and validates the result.
func (c *CompletedOffline) UnmarshalBinary(data []byte) error {
	var cm completedMarshal
	if err := cbor.Unmarshal(data, &cm); err != nil {
		return fmt.Errorf("offline: %w", err)
	}
	if cm.KShare == nil || cm.SigmaShare == nil {
		return errors.New("offline: one or more field is empty")
	}
	completed := CompletedOffline{
		ID:        cm.ID,
		Index:     cm.Index,
		Coalition: cm.Coalition,
		PublicKey: cm.PublicKey,
		PreSignature: &ecdsa.PreSignature{
			R:          cm.R,
			RBar:       cm.RBar,
			S:          cm.S,
			KShare:     cm.KShare,
			SigmaShare: cm.SigmaShare,
		},
		erased: cm.Erased,
	}
	if err := completed.Validate(); err != nil {
		return err
	}
	*c = completed
	return nil
}
