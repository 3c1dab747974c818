package round

import (
	"errors"
	"fmt"
	"sync"

	"github.com/taurusgroup/threshold-ecdsa/internal/types"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/pool"
)

// Helper holds the session data shared by all rounds of an execution.
// The first round of a protocol embeds it, and each later round embeds the previous one.
type Helper struct {
	info Info

	// Pool is used to parallelize the per-party work of a round. It may be nil.
	Pool *pool.Pool

	partyIDs      party.IDSlice
	otherPartyIDs party.IDSlice

	// ssid is the digest of the initial transcript, and is the same for all parties.
	ssid []byte

	// mtx guards hash, which rounds extend with values all parties agree on.
	mtx  sync.Mutex
	hash *hash.Hash
}

// NewSession validates info and returns the *Helper for the first round.
//
// sessionID is optional, and should differ between executions with the same parties,
// for instance a counter or a common random string.
// auxInfo is written to the transcript after the session parameters, nil values are skipped.
func NewSession(info Info, sessionID []byte, pl *pool.Pool, auxInfo ...hash.WriterToWithDomain) (*Helper, error) {
	partyIDs := party.NewIDSlice(info.PartyIDs)
	switch {
	case !partyIDs.Valid():
		return nil, errors.New("session: party IDs contain duplicates or 0")
	case !partyIDs.Contains(info.SelfID):
		return nil, fmt.Errorf("session: party %s is not a participant", info.SelfID)
	case info.Threshold < 0 || info.Threshold > len(partyIDs)-1:
		return nil, fmt.Errorf("session: threshold %d is invalid for %d parties", info.Threshold, len(partyIDs))
	}

	h, err := transcript(info, partyIDs, sessionID, auxInfo)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	return &Helper{
		info:          info,
		Pool:          pl,
		partyIDs:      partyIDs,
		otherPartyIDs: partyIDs.Remove(info.SelfID),
		ssid:          h.Clone().Sum(),
		hash:          h,
	}, nil
}

// transcript returns the initial hash state of a session. It does not depend on info.SelfID.
func transcript(info Info, partyIDs party.IDSlice, sessionID []byte, auxInfo []hash.WriterToWithDomain) (*hash.Hash, error) {
	values := make([]hash.WriterToWithDomain, 0, 5+len(auxInfo))
	if sessionID != nil {
		values = append(values, &hash.BytesWithDomain{TheDomain: "Session ID", Bytes: sessionID})
	}
	values = append(values,
		&hash.BytesWithDomain{TheDomain: "Protocol ID", Bytes: []byte(info.ProtocolID)},
		info.FinalRoundNumber,
		partyIDs,
		types.ThresholdWrapper(info.Threshold),
	)
	for _, a := range auxInfo {
		if a != nil {
			values = append(values, a)
		}
	}

	h := hash.New()
	for _, v := range values {
		if err := h.WriteAny(v); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// HashForID returns a copy of the transcript, extended with id when it is not 0.
// A prover hashes with its own ID, and the verifier with the ID of the sender.
func (h *Helper) HashForID(id party.ID) *hash.Hash {
	cloned := h.Hash()
	if id != 0 {
		_ = cloned.WriteAny(id)
	}
	return cloned
}

// UpdateHashState appends value to the transcript of all subsequent rounds.
func (h *Helper) UpdateHashState(value hash.WriterToWithDomain) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	_ = h.hash.WriteAny(value)
}

// Hash returns a copy of the current transcript.
func (h *Helper) Hash() *hash.Hash {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.hash.Clone()
}

// BroadcastMessage queues content for every other party.
func (h *Helper) BroadcastMessage(out chan<- *Message, content BroadcastContent) error {
	return send(out, &Message{From: h.info.SelfID, Broadcast: true, Content: content})
}

// SendMessage queues content for the single party to.
// out must be buffered with room for all the messages of the round.
func (h *Helper) SendMessage(out chan<- *Message, content Content, to party.ID) error {
	if to == 0 {
		return errors.New("round: point-to-point message without recipient")
	}
	return send(out, &Message{From: h.info.SelfID, To: to, Content: content})
}

func send(out chan<- *Message, msg *Message) error {
	select {
	case out <- msg:
		return nil
	default:
		return ErrOutChanFull
	}
}

// ResultRound ends the protocol with result.
func (h *Helper) ResultRound(result interface{}) Session {
	return &Output{Helper: h, Result: result}
}

// AbortRound ends the protocol after detecting misbehaviour by culprits.
// Finalize should return it with a nil error.
func (h *Helper) AbortRound(err error, culprits ...party.ID) Session {
	return &Abort{Helper: h, Culprits: culprits, Err: err}
}

func (h *Helper) ProtocolID() string           { return h.info.ProtocolID }
func (h *Helper) FinalRoundNumber() Number     { return h.info.FinalRoundNumber }
func (h *Helper) SSID() []byte                 { return h.ssid }
func (h *Helper) SelfID() party.ID             { return h.info.SelfID }
func (h *Helper) PartyIDs() party.IDSlice      { return h.partyIDs }
func (h *Helper) OtherPartyIDs() party.IDSlice { return h.otherPartyIDs }
func (h *Helper) Threshold() int               { return h.info.Threshold }
func (h *Helper) N() int                       { return len(h.partyIDs) }
