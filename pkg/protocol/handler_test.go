package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

// The sum protocol has each party broadcast its ID and send 10⋅ID to each other party.
// The output is the sum of all received values.

type broadcast2 struct {
	round.NormalBroadcastContent
	Value uint32
}

func (broadcast2) RoundNumber() round.Number { return 2 }

type message2 struct {
	Value uint32
}

func (message2) RoundNumber() round.Number { return 2 }

type sumRound1 struct {
	*round.Helper
	cheat bool
}

func (sumRound1) VerifyMessage(round.Message) error { return nil }
func (sumRound1) StoreMessage(round.Message) error  { return nil }
func (sumRound1) MessageContent() round.Content     { return nil }
func (sumRound1) Number() round.Number              { return 1 }

func (r *sumRound1) Finalize(out chan<- *round.Message) (round.Session, error) {
	if err := r.BroadcastMessage(out, &broadcast2{Value: uint32(r.SelfID())}); err != nil {
		return r, err
	}
	for _, j := range r.OtherPartyIDs() {
		value := 10 * uint32(r.SelfID())
		if r.cheat {
			value++
		}
		if err := r.SendMessage(out, &message2{Value: value}, j); err != nil {
			return r, err
		}
	}
	return &sumRound2{sumRound1: r}, nil
}

type sumRound2 struct {
	*sumRound1
	sum uint32
}

var errWrongValue = errors.New("wrong value")

func (r *sumRound2) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast2)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.Value != uint32(msg.From) {
		return errWrongValue
	}
	r.sum += body.Value
	return nil
}

func (r *sumRound2) BroadcastContent() round.BroadcastContent { return &broadcast2{} }

func (r *sumRound2) VerifyMessage(msg round.Message) error {
	body, ok := msg.Content.(*message2)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.Value != 10*uint32(msg.From) {
		return errWrongValue
	}
	return nil
}

func (r *sumRound2) StoreMessage(msg round.Message) error {
	r.sum += msg.Content.(*message2).Value
	return nil
}

func (sumRound2) MessageContent() round.Content { return &message2{} }
func (sumRound2) Number() round.Number          { return 2 }

func (r *sumRound2) Finalize(chan<- *round.Message) (round.Session, error) {
	return r.ResultRound(r.sum), nil
}

func startSum(selfID party.ID, ids party.IDSlice, cheat bool) StartFunc {
	return func(sessionID []byte) (round.Session, error) {
		helper, err := round.NewSession(round.Info{
			ProtocolID:       "test/sum",
			FinalRoundNumber: 2,
			SelfID:           selfID,
			PartyIDs:         ids,
			Threshold:        1,
		}, sessionID, nil)
		if err != nil {
			return nil, err
		}
		return &sumRound1{Helper: helper, cheat: cheat}, nil
	}
}

func newSumHandlers(t *testing.T, n int, cheater party.ID) map[party.ID]*Handler {
	ids := party.Range(n)
	handlers := make(map[party.ID]*Handler, n)
	for _, id := range ids {
		h, err := NewHandler(zerolog.New(zerolog.NewTestWriter(t)), startSum(id, ids, id == cheater), []byte("session"))
		require.NoError(t, err)
		handlers[id] = h
	}
	return handlers
}

// deliver routes all outgoing messages to their recipients.
func deliver(t *testing.T, handlers map[party.ID]*Handler) {
	for _, h := range handlers {
		for _, msg := range h.DrainMessages() {
			for id, other := range handlers {
				if msg.IsFor(id) {
					require.NoError(t, other.HandleIncoming(msg))
				}
			}
		}
	}
}

func TestHandler_Sum(t *testing.T) {
	handlers := newSumHandlers(t, 3, 0)

	for _, h := range handlers {
		assert.True(t, h.WantsToProceed(), "the first round expects no message")
		_, err := h.Result()
		assert.ErrorIs(t, err, ErrNotFinished)
		require.NoError(t, h.Proceed())
		assert.Equal(t, round.Number(1), h.CurrentRound())
		assert.False(t, h.WantsToProceed())
		assert.ErrorIs(t, h.Proceed(), ErrNotReady)
		assert.Equal(t, round.Number(1), h.CurrentRound(), "a failed Proceed does not advance")
		assert.Len(t, h.MessageQueue(), 3, "one broadcast and two point-to-point messages")
	}
	deliver(t, handlers)

	for id, h := range handlers {
		require.True(t, h.WantsToProceed())
		require.NoError(t, h.Proceed())
		require.True(t, h.IsFinished())
		assert.Equal(t, round.Number(2), h.CurrentRound())

		result, err := h.Result()
		require.NoError(t, err)
		var expected uint32
		for _, j := range party.Range(3) {
			if j != id {
				expected += 11 * uint32(j)
			}
		}
		assert.Equal(t, expected, result)

		assert.ErrorIs(t, h.Proceed(), ErrFinished)
		assert.ErrorIs(t, h.HandleIncoming(&Message{}), ErrFinished)
		result2, err := h.Result()
		require.NoError(t, err)
		assert.Equal(t, result, result2)
	}
}

func TestHandler_Culprit(t *testing.T) {
	handlers := newSumHandlers(t, 3, 2)
	for _, h := range handlers {
		require.NoError(t, h.Proceed())
	}
	deliver(t, handlers)

	for id, h := range handlers {
		err := h.Proceed()
		if id == 2 {
			require.NoError(t, err)
			continue
		}
		require.Error(t, err)
		var roundErr *Error
		require.True(t, errors.As(err, &roundErr))
		assert.Equal(t, party.ID(2), roundErr.Culprit)
		assert.Equal(t, round.Number(2), roundErr.RoundNumber)
		assert.ErrorIs(t, err, errWrongValue)

		assert.True(t, h.IsFinished())
		_, resultErr := h.Result()
		assert.Equal(t, err, resultErr)
		assert.ErrorIs(t, h.Proceed(), ErrFinished)
	}
}

func TestHandler_HandleIncoming(t *testing.T) {
	handlers := newSumHandlers(t, 3, 0)
	h1, h2 := handlers[1], handlers[2]
	require.NoError(t, h2.Proceed())

	var broadcast, p2p *Message
	for _, msg := range h2.DrainMessages() {
		if msg.Broadcast {
			broadcast = msg
		} else if msg.To == 1 {
			p2p = msg
		}
	}
	require.NotNil(t, broadcast)
	require.NotNil(t, p2p)

	modify := func(f func(m *Message)) *Message {
		m := *broadcast
		f(&m)
		return &m
	}
	tests := []struct {
		name string
		msg  *Message
	}{
		{"nil", nil},
		{"self", modify(func(m *Message) { m.From = 1 })},
		{"unknown sender", modify(func(m *Message) { m.From = 4 })},
		{"wrong SSID", modify(func(m *Message) { m.SSID = []byte("other") })},
		{"wrong protocol", modify(func(m *Message) { m.Protocol = "test/other" })},
		{"round 0", modify(func(m *Message) { m.RoundNumber = 0 })},
		{"round too far", modify(func(m *Message) { m.RoundNumber = 2 })},
		{"inconsistent broadcast", modify(func(m *Message) { m.To = 1 })},
		{"other destination", modify(func(m *Message) { m.To, m.Broadcast = 3, false })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, h1.HandleIncoming(tt.msg), ErrUnexpectedMessage)
		})
	}

	// h1 has not proceeded yet, messages for the next round are buffered
	require.NoError(t, h1.HandleIncoming(broadcast))
	require.NoError(t, h1.HandleIncoming(broadcast), "re-delivery is a no-op")
	assert.ErrorIs(t, h1.HandleIncoming(modify(func(m *Message) { m.Data = append([]byte{}, 0xA1, 0x00) })), ErrDuplicateMessage)
	require.NoError(t, h1.HandleIncoming(p2p))

	require.NoError(t, h1.Proceed())
	assert.False(t, h1.WantsToProceed(), "messages from party 3 are missing")

	require.NoError(t, handlers[3].Proceed())
	for _, msg := range handlers[3].DrainMessages() {
		if msg.IsFor(1) {
			require.NoError(t, h1.HandleIncoming(msg))
		}
	}
	require.True(t, h1.WantsToProceed())
	require.NoError(t, h1.Proceed())
	assert.True(t, h1.IsFinished())
}

func TestHandler_AfterFinish(t *testing.T) {
	handlers := newSumHandlers(t, 2, 0)
	for _, h := range handlers {
		require.NoError(t, h.Proceed())
	}
	msgs := handlers[2].DrainMessages()
	for _, msg := range msgs {
		require.NoError(t, handlers[1].HandleIncoming(msg))
	}
	require.NoError(t, handlers[1].Proceed())
	// handler 1 is finished, any further input is rejected
	assert.ErrorIs(t, handlers[1].HandleIncoming(msgs[0]), ErrFinished)
}

func TestNewHandler_Error(t *testing.T) {
	_, err := NewHandler(zerolog.Nop(), func([]byte) (round.Session, error) {
		return nil, fmt.Errorf("bad config")
	}, nil)
	assert.Error(t, err)
}

func TestMessage_Marshal(t *testing.T) {
	msg := &Message{
		SSID:        []byte{1, 2, 3},
		Protocol:    "test/sum",
		From:        2,
		To:          3,
		RoundNumber: 1,
		Data:        []byte{0xA0},
	}
	data, err := msg.MarshalBinary()
	require.NoError(t, err)
	var msg2 Message
	require.NoError(t, msg2.UnmarshalBinary(data))
	assert.Equal(t, *msg, msg2)
	assert.Equal(t, msg.Hash(), msg2.Hash())

	assert.True(t, msg.IsFor(3))
	assert.False(t, msg.IsFor(1))
	assert.False(t, msg.IsFor(2))
	assert.Contains(t, msg.String(), "to: 3")

	broadcast := *msg
	broadcast.To, broadcast.Broadcast = 0, true
	assert.True(t, broadcast.IsFor(1))
	assert.False(t, broadcast.IsFor(2))
	assert.NotEqual(t, msg.Hash(), broadcast.Hash())
}

func TestHandler_LogRoundField(t *testing.T) {
	var buf bytes.Buffer
	ids := party.Range(2)
	handlers := make(map[party.ID]*Handler, 2)
	for _, id := range ids {
		logger := zerolog.Nop()
		if id == 1 {
			logger = zerolog.New(&buf)
		}
		h, err := NewHandler(logger, startSum(id, ids, false), nil)
		require.NoError(t, err)
		handlers[id] = h
	}
	for _, h := range handlers {
		require.NoError(t, h.Proceed())
	}
	deliver(t, handlers)
	require.NoError(t, handlers[1].Proceed())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	lastRound := -1.0
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, `"round":`), line)
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		r, ok := entry["round"].(float64)
		require.True(t, ok, line)
		assert.GreaterOrEqual(t, r, lastRound)
		lastRound = r
	}
	assert.Equal(t, 2.0, lastRound, "the last line is logged after the final round")
}
