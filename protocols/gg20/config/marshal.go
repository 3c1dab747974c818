package config

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/threshold-ecdsa/internal/types"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/paillier"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/pedersen"
)

type configMarshal struct {
	ID        party.ID
	Threshold int
	ECDSA     *curve.Scalar
	Paillier  *paillier.SecretKey
	RID       types.RID
	Public    []publicMarshal
}

type publicMarshal struct {
	ID       party.ID
	ECDSA    *curve.Point
	Pedersen *pedersen.Parameters
}

// MarshalBinary implements encoding.BinaryMarshaler.
// The Paillier modulus of each party is stored once, as part of its Pedersen parameters.
func (c *Config) MarshalBinary() ([]byte, error) {
	ps := make([]publicMarshal, 0, len(c.Public))
	for _, id := range c.PartyIDs() {
		p := c.Public[id]
		ps = append(ps, publicMarshal{
			ID:       id,
			ECDSA:    p.ECDSA,
			Pedersen: p.Pedersen,
		})
	}
	return cbor.Marshal(&configMarshal{
		ID:        c.ID,
		Threshold: c.Threshold,
		ECDSA:     c.ECDSA,
		Paillier:  c.Paillier,
		RID:       c.RID,
		Public:    ps,
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler, and validates the result.
func (c *Config) UnmarshalBinary(data []byte) error {
	var cm configMarshal
	if err := cbor.Unmarshal(data, &cm); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cm.ECDSA == nil || cm.Paillier == nil {
		return errors.New("config: one or more field is empty")
	}

	ps := make(map[party.ID]*Public, len(cm.Public))
	for _, pm := range cm.Public {
		if _, ok := ps[pm.ID]; ok {
			return fmt.Errorf("config: party %s: duplicate entry", pm.ID)
		}
		if pm.ECDSA == nil || pm.Pedersen == nil {
			return fmt.Errorf("config: party %s: one or more field is empty", pm.ID)
		}

		// handle our own key separately, so that the factorization of N is used
		if pm.ID == cm.ID {
			ps[pm.ID] = &Public{
				ECDSA:    pm.ECDSA,
				Paillier: cm.Paillier.PublicKey,
				Pedersen: pedersen.New(cm.Paillier.Modulus(), pm.Pedersen.S(), pm.Pedersen.T()),
			}
			continue
		}

		ps[pm.ID] = &Public{
			ECDSA:    pm.ECDSA,
			Paillier: paillier.NewPublicKey(pm.Pedersen.N()),
			Pedersen: pm.Pedersen,
		}
	}

	config := Config{
		ID:        cm.ID,
		Threshold: cm.Threshold,
		ECDSA:     cm.ECDSA,
		Paillier:  cm.Paillier,
		RID:       cm.RID,
		Public:    ps,
	}
	if err := config.Validate(); err != nil {
		return err
	}
	*c = config
	return nil
}
