package round

import (
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

// Content represents the message, either broadcast or P2P returned by a round
// during finalization.
type Content interface {
	// RoundNumber is the number of the round which consumes this content.
	RoundNumber() Number
}

// BroadcastContent wraps a Content, but also indicates that this content must be broadcast to every party.
type BroadcastContent interface {
	Content
	broadcastContent()
}

// NormalBroadcastContent is embedded in broadcast contents of this module's protocols.
type NormalBroadcastContent struct{}

func (NormalBroadcastContent) broadcastContent() {}

// Message is the unencoded form of a message exchanged between rounds.
//
// To is 0 when Broadcast is true.
type Message struct {
	From, To  party.ID
	Broadcast bool
	Content   Content
}
