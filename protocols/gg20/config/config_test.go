package config_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/internal/test"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/protocols/gg20/config"
)

func TestConfig_Validate(t *testing.T) {
	configs, _ := test.GenerateConfig(3, 1, rand.Reader)

	var public *curve.Point
	for _, c := range configs {
		require.NoError(t, c.Validate())
		if public == nil {
			public = c.PublicPoint()
		}
		assert.True(t, public.Equal(c.PublicPoint()), "all parties derive the same public key")
		assert.Len(t, c.PublicKeyBytes(), 65)
	}

	c := configs[1]
	c.Threshold = 3
	assert.Error(t, c.Validate(), "threshold must be at most n-1")
	c.Threshold = 1

	ecdsa := c.ECDSA
	c.ECDSA = curve.NewScalarUint32(42)
	assert.Error(t, c.Validate(), "secret does not match public share")
	c.ECDSA = ecdsa
	require.NoError(t, c.Validate())
}

func TestConfig_Marshal(t *testing.T) {
	configs, _ := test.GenerateConfig(3, 2, rand.Reader)
	c := configs[2]

	data, err := c.MarshalBinary()
	require.NoError(t, err)

	var c2 config.Config
	require.NoError(t, c2.UnmarshalBinary(data))
	assert.Equal(t, c.ID, c2.ID)
	assert.Equal(t, c.Threshold, c2.Threshold)
	assert.True(t, c.ECDSA.Equal(c2.ECDSA))
	assert.True(t, c.RID.Equal(c2.RID))
	assert.True(t, c.PublicPoint().Equal(c2.PublicPoint()))
	require.Len(t, c2.Public, len(c.Public))
	for j, p := range c.Public {
		assert.True(t, p.Equal(c2.Public[j]), "party %s", j)
	}

	assert.Error(t, c2.UnmarshalBinary(data[:len(data)/2]))
}

func TestConfig_CanSign(t *testing.T) {
	configs, _ := test.GenerateConfig(4, 2, rand.Reader)
	c := configs[2]

	assert.True(t, c.CanSign(party.NewIDSlice([]party.ID{1, 2, 3})))
	assert.True(t, c.CanSign(party.Range(4)))
	assert.False(t, c.CanSign(party.NewIDSlice([]party.ID{1, 2})), "not enough signers")
	assert.False(t, c.CanSign(party.NewIDSlice([]party.ID{1, 3, 4})), "self not included")
	assert.False(t, c.CanSign(party.NewIDSlice([]party.ID{1, 2, 5})), "unknown signer")
}

func TestConfig_Erase(t *testing.T) {
	configs, _ := test.GenerateConfig(2, 1, rand.Reader)
	c := configs[1]
	c.Erase()
	assert.True(t, c.ECDSA.IsZero())
	assert.Nil(t, c.Paillier)
	assert.Error(t, c.Validate())
}

func TestValidThreshold(t *testing.T) {
	assert.True(t, config.ValidThreshold(0, 1))
	assert.True(t, config.ValidThreshold(2, 3))
	assert.False(t, config.ValidThreshold(3, 3))
	assert.False(t, config.ValidThreshold(-1, 3))
	assert.False(t, config.ValidThreshold(0, 0))
}
