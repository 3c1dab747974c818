package round_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

func TestNewSession(t *testing.T) {
	RNumber := round.Number(5)
	T := 20
	N := 26
	partyIDs := party.Range(N)
	selfID := partyIDs[0]
	tests := []struct {
		name      string
		selfID    party.ID
		partyIDs  []party.ID
		threshold int
		wantErr   bool
	}{
		{"-1 t", selfID, partyIDs, -1, true},
		{"invalid selfID", 0, partyIDs, T, true},
		{"absent selfID", party.ID(N + 1), partyIDs, T, true},
		{"zero ID", selfID, append(partyIDs.Copy(), 0), T, true},
		{"duplicate selfID", selfID, append(partyIDs.Copy(), selfID), T, true},
		{"duplicate second ID", selfID, append(partyIDs.Copy(), partyIDs[1]), T, true},
		{"duplicate partyIDs", selfID, append(partyIDs.Copy(), partyIDs...), T, true},
		{"threshold N", selfID, partyIDs, N, true},
		{"threshold T with T parties", selfID, partyIDs[:T], T, true},
		{"valid", selfID, partyIDs, T, false},
		{"valid unsorted", selfID, []party.ID{3, 1, 2}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := round.Info{
				ProtocolID:       "TEST",
				FinalRoundNumber: RNumber,
				SelfID:           tt.selfID,
				PartyIDs:         tt.partyIDs,
				Threshold:        tt.threshold,
			}
			_, err := round.NewSession(info, nil, nil)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHelper_SSID(t *testing.T) {
	info := round.Info{
		ProtocolID:       "TEST",
		FinalRoundNumber: 2,
		SelfID:           1,
		PartyIDs:         []party.ID{2, 1, 3},
		Threshold:        1,
	}
	h1, err := round.NewSession(info, []byte("session"), nil)
	require.NoError(t, err)
	info.SelfID = 3
	h3, err := round.NewSession(info, []byte("session"), nil)
	require.NoError(t, err)
	assert.Equal(t, h1.SSID(), h3.SSID(), "all parties agree on the session ID")

	other, err := round.NewSession(info, []byte("other session"), nil)
	require.NoError(t, err)
	assert.NotEqual(t, h1.SSID(), other.SSID())

	assert.Equal(t, party.IDSlice{1, 2, 3}, h1.PartyIDs())
	assert.Equal(t, party.IDSlice{2, 3}, h1.OtherPartyIDs())
	assert.Equal(t, 3, h1.N())
	assert.NotEqual(t, h1.HashForID(1).Sum(), h1.HashForID(2).Sum())
}

type testContent struct{}

func (testContent) RoundNumber() round.Number { return 2 }

type testBroadcast struct {
	round.NormalBroadcastContent
}

func (testBroadcast) RoundNumber() round.Number { return 2 }

func TestHelper_Send(t *testing.T) {
	h, err := round.NewSession(round.Info{
		ProtocolID: "TEST",
		SelfID:     1,
		PartyIDs:   party.Range(2),
	}, nil, nil)
	require.NoError(t, err)

	out := make(chan *round.Message, 2)
	require.NoError(t, h.BroadcastMessage(out, testBroadcast{}))
	require.NoError(t, h.SendMessage(out, testContent{}, 2))
	assert.ErrorIs(t, h.SendMessage(out, testContent{}, 2), round.ErrOutChanFull)
	assert.Error(t, h.SendMessage(make(chan *round.Message, 1), testContent{}, 0))

	b := <-out
	assert.True(t, b.Broadcast)
	assert.Equal(t, party.ID(0), b.To)
	p := <-out
	assert.False(t, p.Broadcast)
	assert.Equal(t, party.ID(2), p.To)
	assert.Equal(t, party.ID(1), p.From)
}
