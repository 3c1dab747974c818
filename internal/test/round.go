package test

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"golang.org/x/sync/errgroup"
)

// Rule describes various hooks that can be applied to a protocol execution.
type Rule interface {
	// ModifyBefore modifies r before r.Finalize() is called.
	ModifyBefore(r round.Session)
	// ModifyAfter modifies rNext, which is the round returned by r.Finalize().
	ModifyAfter(rNext round.Session)
	// ModifyContent modifies content for the message that is delivered in rNext.
	ModifyContent(rNext round.Session, to party.ID, content round.Content)
}

// Rounds finalizes the current round of every party, and delivers the resulting messages.
// Contents are encoded and decoded with CBOR, as they would be over the wire.
// It returns true once all parties have reached an Output or Abort round.
func Rounds(rounds []round.Session, rule Rule) (bool, error) {
	var (
		errGroup errgroup.Group
		N        = len(rounds)
		outs     = make([][]*round.Message, N)
	)

	if _, err := checkAllRoundsSame(rounds); err != nil {
		return false, err
	}

	for idx := range rounds {
		idx := idx
		r := rounds[idx]
		errGroup.Go(func() error {
			out := make(chan *round.Message, 2*N)
			if rule != nil {
				rule.ModifyBefore(r)
			}
			rNew, err := r.Finalize(out)
			close(out)
			if err != nil {
				return fmt.Errorf("party %s: %w", r.SelfID(), err)
			}
			if rule != nil {
				rule.ModifyAfter(rNew)
			}
			for msg := range out {
				if rule != nil {
					rule.ModifyContent(rNew, msg.To, msg.Content)
				}
				outs[idx] = append(outs[idx], msg)
			}
			rounds[idx] = rNew
			return nil
		})
	}
	if err := errGroup.Wait(); err != nil {
		return false, err
	}

	roundType, err := checkAllRoundsSame(rounds)
	if err != nil {
		return false, err
	}
	if roundType == reflect.TypeOf(&round.Output{}) || roundType == reflect.TypeOf(&round.Abort{}) {
		return true, nil
	}

	var messages []*round.Message
	for _, out := range outs {
		messages = append(messages, out...)
	}
	// broadcast messages are stored before the point-to-point messages which depend on them
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Broadcast && !messages[j].Broadcast
	})

	if err = checkExpected(rounds, messages); err != nil {
		return false, err
	}

	for _, r := range rounds {
		r := r
		errGroup.Go(func() error {
			for _, msg := range messages {
				if msg.From == r.SelfID() || !(msg.Broadcast || msg.To == r.SelfID()) {
					continue
				}
				if err := deliver(r, msg); err != nil {
					return fmt.Errorf("party %s: message from %s: %w", r.SelfID(), msg.From, err)
				}
			}
			return nil
		})
	}
	if err = errGroup.Wait(); err != nil {
		return false, err
	}
	return false, nil
}

func deliver(r round.Session, msg *round.Message) error {
	data, err := cbor.Marshal(msg.Content)
	if err != nil {
		return err
	}
	m := *msg
	if msg.Broadcast {
		b, ok := r.(round.BroadcastRound)
		if !ok || b.BroadcastContent() == nil {
			return errors.New("broadcast message but not broadcast round")
		}
		m.Content = b.BroadcastContent()
		if err = cbor.Unmarshal(data, m.Content); err != nil {
			return err
		}
		return b.StoreBroadcastMessage(m)
	}

	m.Content = r.MessageContent()
	if m.Content == nil {
		return errors.New("point-to-point message but no content expected")
	}
	if err = cbor.Unmarshal(data, m.Content); err != nil {
		return err
	}
	if err = r.VerifyMessage(m); err != nil {
		return err
	}
	return r.StoreMessage(m)
}

func checkAllRoundsSame(rounds []round.Session) (reflect.Type, error) {
	var t reflect.Type
	for _, r := range rounds {
		t2 := reflect.TypeOf(r)
		if t == nil {
			t = t2
		} else if t != t2 {
			return t, fmt.Errorf("two different rounds: %s %s", t, t2)
		}
	}
	return t, nil
}

// checkExpected verifies that every round receives exactly the messages it waits for:
// one broadcast from each other party if it has broadcast content,
// and one point-to-point message from each other party if it has message content.
func checkExpected(rounds []round.Session, messages []*round.Message) error {
	for _, r := range rounds {
		wantBroadcast := false
		if b, ok := r.(round.BroadcastRound); ok && b.BroadcastContent() != nil {
			wantBroadcast = true
		}
		wantP2P := r.MessageContent() != nil

		broadcasts := make(map[party.ID]int)
		p2p := make(map[party.ID]int)
		for _, msg := range messages {
			if msg.From == r.SelfID() {
				continue
			}
			if msg.Broadcast {
				broadcasts[msg.From]++
			} else if msg.To == r.SelfID() {
				p2p[msg.From]++
			}
		}
		for _, j := range r.OtherPartyIDs() {
			if wantBroadcast && broadcasts[j] != 1 {
				return fmt.Errorf("party %s: round %d expects a broadcast from %s, got %d", r.SelfID(), r.Number(), j, broadcasts[j])
			}
			if !wantBroadcast && broadcasts[j] != 0 {
				return fmt.Errorf("party %s: round %d expects no broadcast, got one from %s", r.SelfID(), r.Number(), j)
			}
			if wantP2P && p2p[j] != 1 {
				return fmt.Errorf("party %s: round %d expects a message from %s, got %d", r.SelfID(), r.Number(), j, p2p[j])
			}
			if !wantP2P && p2p[j] != 0 {
				return fmt.Errorf("party %s: round %d expects no point-to-point message, got one from %s", r.SelfID(), r.Number(), j)
			}
		}
	}
	return nil
}
