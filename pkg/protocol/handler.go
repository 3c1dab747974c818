package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"
	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

// StartFunc is function that creates the first round of a protocol.
// It returns the first round initialized with the session information.
// If the creation fails (likely due to misconfiguration), and error is returned.
//
// An optional sessionID can be provided, which should unique among all protocol executions.
type StartFunc func(sessionID []byte) (round.Session, error)

// Handler represents an execution of a given protocol by a single party.
//
// It performs no I/O and owns no goroutine. The caller delivers incoming messages
// with HandleIncoming, advances the protocol with Proceed, and routes the messages
// returned by DrainMessages to the other parties.
type Handler struct {
	mtx sync.Mutex

	// base carries the fields fixed for the whole execution, log adds the current round.
	base zerolog.Logger
	log  zerolog.Logger

	// session is the round that consumes the messages tagged with current.
	session round.Session
	// current is the number of successful calls to Proceed.
	current round.Number

	queue    *queue
	outgoing []*Message

	finished bool
	result   interface{}
	err      error
}

// NewHandler expects a StartFunc for the desired protocol. It returns a handler that the user can interact with.
func NewHandler(logger zerolog.Logger, create StartFunc, sessionID []byte) (*Handler, error) {
	r, err := create(sessionID)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to create round: %w", err)
	}
	h := &Handler{
		session: r,
		queue:   newQueue(),
	}
	h.base = logger.With().
		Str("protocol", r.ProtocolID()).
		Stringer("party", r.SelfID()).
		Logger()
	h.setRoundLogger()
	h.log.Info().Int("parties", r.N()).Int("threshold", r.Threshold()).Msg("start")
	return h, nil
}

// WantsToProceed returns true if all messages required by the current round have been received,
// so that Proceed can be called.
func (h *Handler) WantsToProceed() bool {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.wantsToProceed()
}

// Proceed processes all messages received for the current round and runs the round's local computation.
// Messages for the other parties are appended to the outgoing queue.
//
// If a message fails verification, or the round's computation fails,
// the handler finishes with a *Error naming the round and, when known, the culprit.
func (h *Handler) Proceed() error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if h.finished {
		return ErrFinished
	}
	if !h.wantsToProceed() {
		return ErrNotReady
	}

	r := h.session
	for _, msg := range h.queue.Get(h.current) {
		if err := h.process(r, msg); err != nil {
			h.log.Error().Err(err).Stringer("from", msg.From).Msg("failed to process message")
			return h.abort(err, msg.From)
		}
	}

	// one broadcast and one point-to-point message for each other party
	out := make(chan *round.Message, 2*r.N())
	next, err := r.Finalize(out)
	close(out)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to finalize round")
		return h.abort(err, 0)
	}

	if abort, ok := next.(*round.Abort); ok {
		var culprit party.ID
		if len(abort.Culprits) > 0 {
			culprit = abort.Culprits[0]
		}
		h.log.Error().Err(abort.Err).Stringer("culprit", culprit).Msg("aborted")
		return h.abort(abort.Err, culprit)
	}

	h.current++
	h.setRoundLogger()

	for msg := range out {
		envelope, err := h.envelope(r, msg)
		if err != nil {
			h.log.Error().Err(err).Msg("failed to encode message")
			h.current--
			h.setRoundLogger()
			return h.abort(err, 0)
		}
		h.outgoing = append(h.outgoing, envelope)
	}

	if output, ok := next.(*round.Output); ok {
		h.finished = true
		h.result = output.Result
		h.session = nil
		h.log.Info().Msg("finished")
		return nil
	}

	h.session = next
	h.discardUnexpected()
	h.log.Info().Msg("round advanced")
	return nil
}

// HandleIncoming validates msg and stores it until the round it belongs to is processed.
//
// Messages for the next round are accepted and buffered.
// Delivering the same message twice has no effect.
func (h *Handler) HandleIncoming(msg *Message) error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if h.finished {
		return ErrFinished
	}
	if err := h.validate(msg); err != nil {
		if msg != nil {
			h.log.Warn().Err(err).Stringer("msg", msg).Msg("rejected message")
		}
		return err
	}
	stored, err := h.queue.Store(msg)
	if err != nil {
		h.log.Warn().Err(err).Stringer("msg", msg).Msg("rejected message")
		return fmt.Errorf("%w: party %s, round %d", err, msg.From, msg.RoundNumber)
	}
	if stored {
		h.log.Debug().Stringer("msg", msg).Msg("stored message")
	}
	return nil
}

// MessageQueue returns the messages that must be sent to other parties, without removing them.
// Broadcast messages must be delivered to every other party, the others only to Message.To.
func (h *Handler) MessageQueue() []*Message {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	out := make([]*Message, len(h.outgoing))
	copy(out, h.outgoing)
	return out
}

// DrainMessages returns the messages that must be sent to other parties, and empties the outgoing queue.
func (h *Handler) DrainMessages() []*Message {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	out := h.outgoing
	h.outgoing = nil
	return out
}

// CurrentRound returns the number of successful calls to Proceed.
func (h *Handler) CurrentRound() round.Number {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.current
}

// IsFinished returns true once the protocol has produced an output or failed.
func (h *Handler) IsFinished() bool {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.finished
}

// Result returns the protocol result if the protocol completed successfully. Otherwise an error is returned.
func (h *Handler) Result() (interface{}, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if !h.finished {
		return nil, ErrNotFinished
	}
	if h.err != nil {
		return nil, h.err
	}
	return h.result, nil
}

// setRoundLogger derives h.log from h.base, so that the round field appears once.
func (h *Handler) setRoundLogger() {
	h.log = h.base.With().Uint16("round", uint16(h.current)).Logger()
}

func (h *Handler) wantsToProceed() bool {
	if h.finished {
		return false
	}
	r := h.session
	wantBroadcast := expectsBroadcast(r)
	wantP2P := expectsP2P(r)
	for _, j := range r.OtherPartyIDs() {
		if wantBroadcast && !h.queue.Has(h.current, j, true) {
			return false
		}
		if wantP2P && !h.queue.Has(h.current, j, false) {
			return false
		}
	}
	return true
}

func (h *Handler) validate(msg *Message) error {
	if msg == nil {
		return unexpected(reasonNil)
	}
	r := h.session

	if msg.From == r.SelfID() {
		return unexpected(reasonSelf)
	}
	if !r.OtherPartyIDs().Contains(msg.From) {
		return unexpected(reasonUnknownSender)
	}
	if msg.Broadcast != (msg.To == 0) {
		return unexpected(reasonInvalidTo)
	}
	if !msg.IsFor(r.SelfID()) {
		return unexpected(reasonDestination)
	}
	if !bytes.Equal(msg.SSID, r.SSID()) {
		return unexpected(reasonWrongSSID)
	}
	if msg.Protocol != r.ProtocolID() {
		return unexpected(reasonWrongProtocol)
	}

	switch {
	case msg.RoundNumber == 0:
		return unexpected(reasonRoundZero)
	case msg.RoundNumber < h.current:
		return unexpected(reasonStale)
	case msg.RoundNumber > h.current+1 || msg.RoundNumber >= r.FinalRoundNumber():
		return unexpected(reasonFuture)
	case msg.RoundNumber == h.current:
		return checkKind(r, msg)
	}
	return nil
}

// process decodes msg and passes it to r.
func (h *Handler) process(r round.Session, msg *Message) error {
	if msg.Broadcast {
		b, ok := r.(round.BroadcastRound)
		if !ok {
			return errors.New(reasonNoBroadcast)
		}
		content := b.BroadcastContent()
		if err := cbor.Unmarshal(msg.Data, content); err != nil {
			return fmt.Errorf("failed to decode broadcast content: %w", err)
		}
		return b.StoreBroadcastMessage(round.Message{
			From:      msg.From,
			Broadcast: true,
			Content:   content,
		})
	}

	content := r.MessageContent()
	if content == nil {
		return errors.New(reasonNoP2P)
	}
	if err := cbor.Unmarshal(msg.Data, content); err != nil {
		return fmt.Errorf("failed to decode content: %w", err)
	}
	roundMsg := round.Message{
		From:    msg.From,
		To:      msg.To,
		Content: content,
	}
	if err := r.VerifyMessage(roundMsg); err != nil {
		return err
	}
	return r.StoreMessage(roundMsg)
}

// envelope encodes a message produced by r during the round that was just completed.
func (h *Handler) envelope(r round.Session, msg *round.Message) (*Message, error) {
	data, err := cbor.Marshal(msg.Content)
	if err != nil {
		return nil, err
	}
	return &Message{
		SSID:        r.SSID(),
		Protocol:    r.ProtocolID(),
		From:        r.SelfID(),
		To:          msg.To,
		RoundNumber: h.current,
		Broadcast:   msg.Broadcast,
		Data:        data,
	}, nil
}

// discardUnexpected removes the buffered look-ahead messages that the new round does not consume.
func (h *Handler) discardUnexpected() {
	for key, m := range h.queue.messages {
		if key.roundNumber != h.current {
			continue
		}
		if err := checkKind(h.session, m.msg); err != nil {
			h.log.Warn().Err(err).Stringer("msg", m.msg).Msg("discarded message")
			h.queue.Discard(m.msg)
		}
	}
}

// abort finishes the protocol with an Error for the round being processed.
func (h *Handler) abort(err error, culprit party.ID) error {
	roundErr := &Error{
		RoundNumber: h.current + 1,
		Culprit:     culprit,
		Err:         err,
	}
	h.finished = true
	h.err = roundErr
	h.session = nil
	h.outgoing = nil
	return roundErr
}

func expectsBroadcast(r round.Session) bool {
	b, ok := r.(round.BroadcastRound)
	return ok && b.BroadcastContent() != nil
}

func expectsP2P(r round.Session) bool {
	return r.MessageContent() != nil
}

// checkKind verifies that r consumes messages of the same kind as msg.
func checkKind(r round.Session, msg *Message) error {
	if msg.Broadcast && !expectsBroadcast(r) {
		return unexpected(reasonNoBroadcast)
	}
	if !msg.Broadcast && !expectsP2P(r) {
		return unexpected(reasonNoP2P)
	}
	return nil
}
