package pool

import (
	"bytes"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Parallelize(t *testing.T) {
	for _, pl := range []*Pool{nil, NewPool(0), NewPool(3)} {
		results := pl.Parallelize(50, func(i int) interface{} { return i * i })
		require.Len(t, results, 50)
		for i, r := range results {
			assert.Equal(t, i*i, r)
		}
		pl.TearDown()
	}
}

func TestPool_Search(t *testing.T) {
	pl := NewPool(4)
	defer pl.TearDown()

	var ctr int64
	results := pl.Search(5, func() interface{} {
		if atomic.AddInt64(&ctr, 1)%3 == 0 {
			return true
		}
		return nil
	})
	require.Len(t, results, 5)
	for _, r := range results {
		assert.Equal(t, true, r)
	}
}

func TestLockedReader(t *testing.T) {
	r := NewLockedReader(bytes.NewReader([]byte{1, 2, 3}))
	buf := make([]byte, 3)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{1, 2, 3}, buf)
}
