package offline

import (
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/internal/test"
	"github.com/taurusgroup/threshold-ecdsa/pkg/ecdsa"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/protocol"
	"github.com/taurusgroup/threshold-ecdsa/protocols/gg20/config"
	"golang.org/x/crypto/sha3"
)

func startRounds(t *testing.T, configs map[party.ID]*config.Config, coalition []party.ID) []round.Session {
	rounds := make([]round.Session, 0, len(coalition))
	for _, id := range coalition {
		r, err := Start(configs[id], coalition, nil)(nil)
		require.NoError(t, err, "round creation should not result in an error")
		rounds = append(rounds, r)
	}
	return rounds
}

func runRounds(t *testing.T, rounds []round.Session, rule test.Rule) {
	for {
		done, err := test.Rounds(rounds, rule)
		require.NoError(t, err, "failed to process round")
		if done {
			return
		}
	}
}

func checkOutput(t *testing.T, rounds []round.Session, coalition []party.ID, publicKey *curve.Point) {
	message := sha3.Sum256([]byte("a message"))

	shares := make(map[party.ID]*ecdsa.SignatureShare, len(rounds))
	var first *CompletedOffline
	for _, r := range rounds {
		require.IsType(t, &round.Output{}, r)
		c, ok := r.(*round.Output).Result.(*CompletedOffline)
		require.True(t, ok)
		require.NoError(t, c.Validate())
		assert.True(t, publicKey.Equal(c.PublicKey))
		assert.Equal(t, coalition, c.Coalition)
		assert.Equal(t, c.ID, coalition[c.Index-1])
		if first == nil {
			first = c
		}
		assert.True(t, first.PreSignature.R.Equal(c.PreSignature.R), "R differs")
		shares[c.ID] = c.PreSignature.SignatureShare(message[:])
	}

	for j, share := range shares {
		assert.True(t, first.PreSignature.VerifySignatureShare(j, share, message[:]), "share of %s is invalid", j)
	}
	sig := first.PreSignature.Signature(shares)
	sig.Normalize()
	assert.True(t, sig.Verify(publicKey, message[:]))
	assert.True(t, sig.VerifyStandard(publicKey, message[:]))
}

func TestOffline(t *testing.T) {
	configs, _ := test.GenerateConfig(3, 1, rand.Reader)
	publicKey := configs[1].PublicPoint()

	coalition := []party.ID{3, 2}
	rounds := startRounds(t, configs, coalition)
	runRounds(t, rounds, nil)
	checkOutput(t, rounds, coalition, publicKey)
}

func TestOffline_AllParties(t *testing.T) {
	configs, partyIDs := test.GenerateConfig(4, 2, rand.Reader)
	publicKey := configs[1].PublicPoint()

	rounds := startRounds(t, configs, partyIDs)
	runRounds(t, rounds, nil)
	checkOutput(t, rounds, partyIDs, publicKey)
}

func TestOffline_Handler(t *testing.T) {
	configs, _ := test.GenerateConfig(3, 1, rand.Reader)
	coalition := []party.ID{1, 3}

	handlers := make(map[party.ID]*protocol.Handler, len(coalition))
	for _, id := range coalition {
		h, err := protocol.NewHandler(zerolog.New(zerolog.NewTestWriter(t)), Start(configs[id], coalition, nil), []byte("offline test"))
		require.NoError(t, err)
		handlers[id] = h
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	require.NoError(t, test.RunHandlers(ctx, handlers))

	for id, h := range handlers {
		assert.Equal(t, protocolRounds, h.CurrentRound())
		result, err := h.Result()
		require.NoError(t, err)
		c := result.(*CompletedOffline)
		assert.Equal(t, id, c.ID)
	}
}

func TestStart_InvalidCoalition(t *testing.T) {
	configs, _ := test.GenerateConfig(3, 1, rand.Reader)
	tests := []struct {
		name      string
		coalition []party.ID
	}{
		{"too small", []party.ID{1}},
		{"duplicate", []party.ID{1, 1}},
		{"unknown", []party.ID{1, 4}},
		{"self missing", []party.ID{2, 3}},
		{"reserved", []party.ID{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Start(configs[1], tt.coalition, nil)(nil)
			assert.ErrorIs(t, err, ErrInvalidCoalition)
		})
	}
}

// tamper modifies the content of messages sent by a single party.
type tamper struct {
	from   party.ID
	modify func(content round.Content)
}

func (tamper) ModifyBefore(round.Session) {}
func (tamper) ModifyAfter(round.Session)  {}
func (r tamper) ModifyContent(rNext round.Session, _ party.ID, content round.Content) {
	if rNext.SelfID() == r.from {
		r.modify(content)
	}
}

func TestOffline_Cheat(t *testing.T) {
	configs, _ := test.GenerateConfig(3, 1, rand.Reader)
	coalition := []party.ID{1, 2, 3}

	t.Run("wrong Γ", func(t *testing.T) {
		rounds := startRounds(t, configs, coalition)
		var err error
		for done := false; !done && err == nil; {
			done, err = test.Rounds(rounds, tamper{from: 2, modify: func(content round.Content) {
				if body, ok := content.(*broadcast3); ok {
					body.BigGammaShare = curve.NewBasePoint()
				}
			}})
		}
		assert.ErrorIs(t, err, hash.ErrDecommit)
	})

	t.Run("wrong δ", func(t *testing.T) {
		rounds := startRounds(t, configs, coalition)
		rule := tamper{from: 3, modify: func(content round.Content) {
			if body, ok := content.(*broadcast5); ok {
				body.DeltaShare = curve.NewScalarUint32(1)
			}
		}}
		// party 3 does not detect its own cheating, so the parties end up in different rounds
		for {
			done, err := test.Rounds(rounds, rule)
			if err != nil || done {
				break
			}
		}
		for _, r := range rounds {
			if r.SelfID() == 3 {
				continue
			}
			require.IsType(t, &round.Abort{}, r)
		}
	})
}

func TestCompletedOffline_Marshal(t *testing.T) {
	configs, _ := test.GenerateConfig(2, 1, rand.Reader)
	coalition := []party.ID{2, 1}
	rounds := startRounds(t, configs, coalition)
	runRounds(t, rounds, nil)

	c := rounds[0].(*round.Output).Result.(*CompletedOffline)
	data, err := c.MarshalBinary()
	require.NoError(t, err)

	var c2 CompletedOffline
	require.NoError(t, c2.UnmarshalBinary(data))
	assert.Equal(t, c.ID, c2.ID)
	assert.Equal(t, c.Index, c2.Index)
	assert.Equal(t, c.Coalition, c2.Coalition)
	assert.True(t, c.PreSignature.R.Equal(c2.PreSignature.R))
	assert.True(t, c.PreSignature.KShare.Equal(c2.PreSignature.KShare))
	assert.False(t, c2.Erased())

	c.Erase()
	assert.True(t, c.Erased())
	assert.True(t, c.PreSignature.KShare.IsZero())
	data, err = c.MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, c2.UnmarshalBinary(data))
	assert.True(t, c2.Erased())
}
