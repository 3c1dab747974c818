package keygen

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/internal/test"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/polynomial"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/protocol"
	zksch "github.com/taurusgroup/threshold-ecdsa/pkg/zk/sch"
	"github.com/taurusgroup/threshold-ecdsa/protocols/gg20/config"
)

func startRounds(t *testing.T, N, T int) ([]round.Session, party.IDSlice) {
	partyIDs := test.PartyIDs(N)
	rounds := make([]round.Session, 0, N)
	for i, id := range partyIDs {
		r, err := Start(id, partyIDs, T, nil, WithPaillier(test.PaillierSecret(i)))(nil)
		require.NoError(t, err, "round creation should not result in an error")
		rounds = append(rounds, r)
	}
	return rounds, partyIDs
}

func checkOutput(t *testing.T, rounds []round.Session, N, T int) {
	configs := make([]*config.Config, 0, N)
	for _, r := range rounds {
		require.IsType(t, &round.Output{}, r)
		resultRound := r.(*round.Output)
		require.IsType(t, &config.Config{}, resultRound.Result)
		c := resultRound.Result.(*config.Config)
		require.NoError(t, c.Validate())
		assert.Equal(t, T, c.Threshold)
		assert.Len(t, c.Public, N)
		configs = append(configs, c)
	}

	firstConfig := configs[0]
	pk := firstConfig.PublicPoint()
	for _, c := range configs[1:] {
		assert.True(t, pk.Equal(c.PublicPoint()), "RID is different")
		assert.True(t, firstConfig.RID.Equal(c.RID), "RID is different")
		assert.Equal(t, firstConfig.PublicKeyBytes(), c.PublicKeyBytes())
		for id, p := range firstConfig.Public {
			assert.True(t, p.Equal(c.Public[id]), "public data of %s differs", id)
		}
	}

	// any T+1 shares reconstruct the secret key
	ids := firstConfig.PartyIDs()[:T+1]
	secret := curve.NewScalar()
	for _, c := range configs {
		if ids.Contains(c.ID) {
			lagrange := polynomial.LagrangeSingle(ids, c.ID)
			secret.Add(lagrange.Mul(c.ECDSA))
		}
	}
	assert.True(t, secret.ActOnBase().Equal(pk), "reconstructed secret does not match public key")
}

func TestKeygen(t *testing.T) {
	N, T := 3, 1
	rounds, _ := startRounds(t, N, T)

	for {
		done, err := test.Rounds(rounds, nil)
		require.NoError(t, err, "failed to process round")
		if done {
			break
		}
	}
	checkOutput(t, rounds, N, T)
}

func TestKeygen_Threshold0(t *testing.T) {
	N, T := 2, 0
	rounds, _ := startRounds(t, N, T)
	for {
		done, err := test.Rounds(rounds, nil)
		require.NoError(t, err, "failed to process round")
		if done {
			break
		}
	}
	checkOutput(t, rounds, N, T)
}

func TestKeygen_Handler(t *testing.T) {
	N, T := 3, 2
	partyIDs := test.PartyIDs(N)
	handlers := make(map[party.ID]*protocol.Handler, N)
	for i, id := range partyIDs {
		h, err := protocol.NewHandler(zerolog.New(zerolog.NewTestWriter(t)),
			Start(id, partyIDs, T, nil, WithPaillier(test.PaillierSecret(i))), []byte("keygen test"))
		require.NoError(t, err)
		handlers[id] = h
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	require.NoError(t, test.RunHandlers(ctx, handlers))

	var pk []byte
	for _, h := range handlers {
		assert.Equal(t, protocolRounds, h.CurrentRound())
		result, err := h.Result()
		require.NoError(t, err)
		c := result.(*config.Config)
		if pk == nil {
			pk = c.PublicKeyBytes()
		}
		assert.Equal(t, pk, c.PublicKeyBytes())
	}
}

// tamper replaces the content of messages sent by a single party.
type tamper struct {
	from   party.ID
	modify func(rNext round.Session, to party.ID, content round.Content)
}

func (tamper) ModifyBefore(round.Session) {}
func (tamper) ModifyAfter(round.Session)  {}
func (r tamper) ModifyContent(rNext round.Session, to party.ID, content round.Content) {
	if rNext.SelfID() == r.from {
		r.modify(rNext, to, content)
	}
}

func TestKeygen_Cheat(t *testing.T) {
	tests := []struct {
		name   string
		modify func(rNext round.Session, to party.ID, content round.Content)
	}{
		{"wrong decommitment", func(_ round.Session, _ party.ID, content round.Content) {
			if body, ok := content.(*broadcast3); ok {
				body.RID = append(body.RID[:0:0], body.RID...)
				body.RID[0] ^= 1
			}
		}},
		{"wrong share", func(rNext round.Session, to party.ID, content round.Content) {
			if body, ok := content.(*message4); ok {
				body.Share, _ = rNext.(*round4).Paillier[to].Enc(curve.NewScalarUint32(1).Int())
			}
		}},
		{"wrong Schnorr response", func(_ round.Session, _ party.ID, content round.Content) {
			if body, ok := content.(*message4); ok {
				body.SchnorrResponse = &zksch.Response{Z: curve.NewScalarUint32(1)}
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rounds, _ := startRounds(t, 3, 1)
			rule := tamper{from: 2, modify: tt.modify}
			var err error
			for {
				var done bool
				done, err = test.Rounds(rounds, rule)
				if err != nil || done {
					break
				}
			}
			assert.Error(t, err)
		})
	}
}

func TestStart_Error(t *testing.T) {
	partyIDs := test.PartyIDs(3)
	_, err := Start(4, partyIDs, 1, nil)(nil)
	assert.Error(t, err, "self not included")
	_, err = Start(1, partyIDs, 3, nil)(nil)
	assert.Error(t, err, "threshold too large")
	_, err = Start(1, party.IDSlice{0, 1, 2}, 1, nil)(nil)
	assert.Error(t, err, "party ID 0 is reserved")
}
