package protocol

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

// Message is the envelope exchanged between parties.
// It must not be modified after it was returned by a Handler.
type Message struct {
	// SSID is a byte string which uniquely identifies the session this message belongs to.
	SSID []byte
	// Protocol identifies the protocol this message belongs to
	Protocol string
	// From is the party.ID of the sender
	From party.ID
	// To is the intended recipient for this message.
	// If To == 0, then the message is a broadcast.
	To party.ID
	// RoundNumber is the number of Proceed calls the sender had completed when it produced the message.
	RoundNumber round.Number
	// Broadcast indicates whether the message must be reliably broadcast to all participants.
	Broadcast bool
	// Data is the CBOR encoded content consumed by the round.
	Data []byte
}

// String implements fmt.Stringer.
func (m Message) String() string {
	if m.Broadcast {
		return fmt.Sprintf("message: round %d, from: %s, broadcast, protocol: %s", m.RoundNumber, m.From, m.Protocol)
	}
	return fmt.Sprintf("message: round %d, from: %s, to: %s, protocol: %s", m.RoundNumber, m.From, m.To, m.Protocol)
}

// IsFor returns true if the message is intended for the designated party.
func (m Message) IsFor(id party.ID) bool {
	if m.From == id {
		return false
	}
	return m.To == 0 || m.To == id
}

// Hash returns a 64 byte slice of the message content, including the headers.
// Two messages with the same hash are considered identical.
func (m Message) Hash() []byte {
	broadcast := []byte{0}
	if m.Broadcast {
		broadcast[0] = 1
	}
	h := hash.New(
		hash.BytesWithDomain{TheDomain: "SSID", Bytes: m.SSID},
		hash.BytesWithDomain{TheDomain: "Protocol", Bytes: []byte(m.Protocol)},
		m.From,
		m.To,
		m.RoundNumber,
		hash.BytesWithDomain{TheDomain: "Broadcast", Bytes: broadcast},
		hash.BytesWithDomain{TheDomain: "Content", Bytes: m.Data},
	)
	return h.Sum()
}

type messageMarshal Message

// MarshalBinary implements encoding.BinaryMarshaler using CBOR.
func (m *Message) MarshalBinary() ([]byte, error) {
	return cbor.Marshal((*messageMarshal)(m))
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *Message) UnmarshalBinary(data []byte) error {
	var mm messageMarshal
	if err := cbor.Unmarshal(data, &mm); err != nil {
		return fmt.Errorf("protocol: %w", err)
	}
	*m = Message(mm)
	return nil
}
