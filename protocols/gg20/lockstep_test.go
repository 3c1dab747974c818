package gg20_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/internal/test"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/protocol"
	"github.com/taurusgroup/threshold-ecdsa/protocols/gg20"
	"github.com/taurusgroup/threshold-ecdsa/protocols/gg20/config"
	"github.com/taurusgroup/threshold-ecdsa/protocols/gg20/signing"
)

// runLockstep has every party proceed once, then routes all produced messages, until rounds steps are done.
// Every step but the last must produce messages, and every party must be ready after each delivery.
func runLockstep(t *testing.T, handlers map[party.ID]*protocol.Handler, rounds round.Number) {
	for k := round.Number(1); k <= rounds; k++ {
		var outgoing []*protocol.Message
		for id, h := range handlers {
			require.True(t, h.WantsToProceed(), "party %s, step %d", id, k)
			require.NoError(t, h.Proceed(), "party %s, step %d", id, k)
			assert.Equal(t, k, h.CurrentRound())

			msgs := h.DrainMessages()
			if k < rounds {
				assert.False(t, h.IsFinished(), "party %s, step %d", id, k)
				assert.NotEmpty(t, msgs, "party %s, step %d", id, k)
				assert.False(t, h.WantsToProceed(), "party %s waits for the other parties", id)
			} else {
				assert.True(t, h.IsFinished(), "party %s", id)
				assert.Empty(t, msgs, "party %s", id)
			}
			outgoing = append(outgoing, msgs...)
		}
		for _, msg := range outgoing {
			for id, h := range handlers {
				if msg.IsFor(id) {
					require.NoError(t, h.HandleIncoming(msg))
				}
			}
		}
	}
	for id, h := range handlers {
		assert.ErrorIs(t, h.Proceed(), protocol.ErrFinished, "party %s", id)
	}
}

func TestGG20_Lockstep(t *testing.T) {
	const N, T = 3, 1
	logger := zerolog.New(zerolog.NewTestWriter(t))

	keygens := make(map[party.ID]*gg20.Keygen, N)
	handlers := make(map[party.ID]*protocol.Handler, N)
	for i, id := range party.Range(N) {
		k, err := gg20.NewKeygen(id, T, N, gg20.WithLogger(logger), gg20.WithPaillier(test.PaillierSecret(i)))
		require.NoError(t, err)
		keygens[id], handlers[id] = k, k.Handler
	}
	runLockstep(t, handlers, 5)

	shares := make(map[party.ID]*config.Config, N)
	for id, k := range keygens {
		c, err := k.PickOutput()
		require.NoError(t, err)
		shares[id] = c
	}
	publicKey := shares[1].PublicPoint()
	assert.Len(t, shares[1].PublicKeyBytes(), 65)

	coalition := []party.ID{3, 2}
	stages := make(map[party.ID]*gg20.OfflineStage, len(coalition))
	handlers = make(map[party.ID]*protocol.Handler, len(coalition))
	for i, id := range coalition {
		o, err := gg20.NewOfflineStage(i+1, coalition, shares[id], gg20.WithLogger(logger))
		require.NoError(t, err)
		stages[id], handlers[id] = o, o.Handler
	}
	runLockstep(t, handlers, 6)

	message := []byte("a message")
	signers := make(map[party.ID]*signing.Signer, len(coalition))
	partials := make(map[party.ID]*signing.PartialSignature, len(coalition))
	for _, id := range coalition {
		c, err := stages[id].PickOutput()
		require.NoError(t, err)
		signers[id], partials[id], err = gg20.NewSignManual(message, c)
		require.NoError(t, err)
	}

	_, err := signers[3].Complete(nil)
	assert.ErrorIs(t, err, signing.ErrIncomplete)

	sig, err := signers[3].Complete([]*signing.PartialSignature{partials[2]})
	require.NoError(t, err)
	assert.True(t, gg20.Verify(sig, publicKey, message))
	assert.True(t, sig.VerifyStandard(publicKey, message))

	otherKey := publicKey.Add(curve.NewBasePoint())
	assert.False(t, gg20.Verify(sig, otherKey, message), "signature must not verify under another key")
	assert.False(t, sig.VerifyStandard(otherKey, message))
	assert.False(t, gg20.Verify(sig, publicKey, []byte("another message")))

	sig2, err := signers[2].Complete([]*signing.PartialSignature{partials[3]})
	require.NoError(t, err)
	assert.True(t, sig.S.Equal(sig2.S))
	assert.True(t, sig.R.Equal(sig2.R))
}
