package test

import (
	"sync"

	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/protocol"
)

// maxMessagesPerParty bounds the number of messages a party can receive during one protocol execution,
// assuming at most one broadcast and one point-to-point message per round from each other party.
const maxMessagesPerParty = 16

// Network simulates a reliable network between parties, with in-order delivery per channel.
type Network struct {
	parties        party.IDSlice
	listenChannels map[party.ID]chan *protocol.Message
	mtx            sync.Mutex
}

// NewNetwork creates a Network between the given parties.
func NewNetwork(parties party.IDSlice) *Network {
	n := &Network{
		parties:        parties,
		listenChannels: make(map[party.ID]chan *protocol.Message, len(parties)),
	}
	for _, id := range parties {
		n.listenChannels[id] = make(chan *protocol.Message, maxMessagesPerParty*len(parties))
	}
	return n
}

// Next returns the channel of messages delivered to id.
func (n *Network) Next(id party.ID) <-chan *protocol.Message {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return n.listenChannels[id]
}

// Send delivers msg to all of its recipients.
func (n *Network) Send(msg *protocol.Message) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	for id, c := range n.listenChannels {
		if msg.IsFor(id) {
			c <- msg
		}
	}
}

// Quit removes id from the network. Messages sent to id afterwards are dropped.
func (n *Network) Quit(id party.ID) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	n.parties = n.parties.Remove(id)
	delete(n.listenChannels, id)
}
