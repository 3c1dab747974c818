package hash

import (
	"io"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
)

func TestHash_WriteAny(t *testing.T) {
	testFunc := func(vs ...interface{}) error {
		h := New()
		for _, v := range vs {
			if err := h.WriteAny(v); err != nil {
				return err
			}
		}
		return nil
	}
	n := new(saferith.Nat).SetUint64(35)
	i := new(saferith.Int).SetNat(n)
	m := saferith.ModulusFromNat(n)

	assert.NoError(t, testFunc(i, n, m))
	assert.NoError(t, testFunc(curve.NewScalarUint32(5)))
	assert.NoError(t, testFunc(curve.NewBasePoint()))
	assert.NoError(t, testFunc([]byte{1, 4, 6}))
	assert.NoError(t, testFunc(BytesWithDomain{TheDomain: "test", Bytes: []byte{1}}))
	assert.Error(t, testFunc(42))
}

func TestHash_WriteAny_Collision(t *testing.T) {
	sum := func(vs ...interface{}) []byte {
		h := New()
		require.NoError(t, h.WriteAny(vs...))
		return h.Sum()
	}
	h1 := sum([]byte("ab"), []byte("c"))
	h2 := sum([]byte("a"), []byte("bc"))
	assert.NotEqual(t, h1, h2)

	h3 := sum(BytesWithDomain{TheDomain: "x", Bytes: []byte("y")})
	h4 := sum(BytesWithDomain{TheDomain: "xy", Bytes: nil})
	assert.NotEqual(t, h3, h4)
}

func TestHash_Fork(t *testing.T) {
	h := New()
	before := h.Sum()
	f := h.Fork([]byte("data"))
	assert.Equal(t, before, h.Sum(), "forking must not modify the original")
	assert.NotEqual(t, before, f.Sum())
	assert.Equal(t, f.Sum(), h.Fork([]byte("data")).Sum())
}

func TestHash_Digest(t *testing.T) {
	h := New()
	d := h.Digest()
	require.NoError(t, h.WriteAny([]byte("more")))
	out := make([]byte, DigestLengthBytes)
	_, err := io.ReadFull(d, out)
	require.NoError(t, err)
	assert.Equal(t, New().Sum(), out, "the reader is a snapshot")
	assert.Len(t, h.Sum(), DigestLengthBytes)
}

func TestCommit(t *testing.T) {
	h := New(BytesWithDomain{TheDomain: "Session ID", Bytes: []byte("session")})
	c, d, err := h.Commit(curve.NewBasePoint(), []byte("x"))
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	require.NoError(t, d.Validate())

	assert.True(t, h.Decommit(c, d, curve.NewBasePoint(), []byte("x")))
	assert.False(t, h.Decommit(c, d, curve.NewBasePoint(), []byte("y")))
	assert.False(t, New().Decommit(c, d, curve.NewBasePoint(), []byte("x")), "different hash state")
	assert.False(t, h.Decommit(c[:10], d, curve.NewBasePoint(), []byte("x")))
}
