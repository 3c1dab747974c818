package protocol

import (
	"bytes"
	"sort"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

// slot identifies the single message a party may send in a given round, for one kind of delivery.
type slot struct {
	roundNumber round.Number
	from        party.ID
	broadcast   bool
}

type queuedMessage struct {
	msg  *Message
	hash []byte
}

// queue buffers validated incoming messages until the round they belong to is processed.
// At most one message is stored per slot.
type queue struct {
	messages map[slot]queuedMessage
}

func newQueue() *queue {
	return &queue{messages: make(map[slot]queuedMessage)}
}

// Store adds msg to the queue.
// It returns true if the slot was empty, false if the same message was already stored,
// and ErrDuplicateMessage if the slot contains a different message.
func (q *queue) Store(msg *Message) (bool, error) {
	key := slot{roundNumber: msg.RoundNumber, from: msg.From, broadcast: msg.Broadcast}
	h := msg.Hash()
	if existing, ok := q.messages[key]; ok {
		if bytes.Equal(existing.hash, h) {
			return false, nil
		}
		return false, ErrDuplicateMessage
	}
	q.messages[key] = queuedMessage{msg: msg, hash: h}
	return true, nil
}

// Has returns true if a message is stored for the slot.
func (q *queue) Has(roundNumber round.Number, from party.ID, broadcast bool) bool {
	_, ok := q.messages[slot{roundNumber: roundNumber, from: from, broadcast: broadcast}]
	return ok
}

// Get removes all messages for roundNumber from the queue.
// They are returned sorted by sender, with broadcast messages first.
func (q *queue) Get(roundNumber round.Number) []*Message {
	out := make([]*Message, 0, len(q.messages))
	for key, m := range q.messages {
		if key.roundNumber == roundNumber {
			out = append(out, m.msg)
			delete(q.messages, key)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Broadcast != out[j].Broadcast {
			return out[i].Broadcast
		}
		return out[i].From < out[j].From
	})
	return out
}

// Discard removes a single message from the queue.
func (q *queue) Discard(msg *Message) {
	delete(q.messages, slot{roundNumber: msg.RoundNumber, from: msg.From, broadcast: msg.Broadcast})
}

// Len returns the number of buffered messages.
func (q *queue) Len() int {
	return len(q.messages)
}
