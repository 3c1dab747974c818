package round

import (
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

// Info is the configuration of an execution, which all parties must agree on except for SelfID.
type Info struct {
	ProtocolID string
	// FinalRoundNumber is the Number of the round whose Finalize returns an Output.
	FinalRoundNumber Number
	SelfID           party.ID
	// PartyIDs may be given in any order.
	PartyIDs []party.ID
	// Threshold t, such that t+1 parties are needed to sign.
	Threshold int
}

// Session is a Round together with the data of the execution it belongs to.
// Rounds get the methods other than those of Round by embedding a *Helper.
type Session interface {
	Round
	// Hash returns a copy of the transcript.
	Hash() *hash.Hash
	ProtocolID() string
	FinalRoundNumber() Number
	// SSID identifies the execution, and is equal for all parties.
	SSID() []byte
	SelfID() party.ID
	// PartyIDs is sorted.
	PartyIDs() party.IDSlice
	// OtherPartyIDs is sorted and does not contain SelfID.
	OtherPartyIDs() party.IDSlice
	Threshold() int
	N() int
}
