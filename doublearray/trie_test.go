package doublearray_test

import (
	"testing"

	"github.com/iotaledger/da.go/doublearray"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixDisambiguation(t *testing.T) {
	entries := []doublearray.Entry{
		{Key: []byte("UT"), Value: int32(1)},
		{Key: []byte("UTO"), Value: int32(2)},
	}
	tr, err := doublearray.BuildMemory(entries, doublearray.DefaultConfig())
	require.NoError(t, err)

	v, ok := tr.Find([]byte("UT"))
	require.True(t, ok)
	assert.Equal(t, int32(1), v)

	v, ok = tr.Find([]byte("UTO"))
	require.True(t, ok)
	assert.Equal(t, int32(2), v)

	_, ok = tr.Find([]byte("U"))
	assert.False(t, ok)

	assert.True(t, tr.Contains([]byte("UT")))
	assert.False(t, tr.Contains([]byte("U")))
}

func TestUTF8KeysAndSubtrie(t *testing.T) {
	entries := []doublearray.Entry{
		{Key: []byte("さくら"), Value: int32(1)},
		{Key: []byte("さくらんぼ"), Value: int32(2)},
		{Key: []byte("さしみ"), Value: int32(3)},
	}
	tr, err := doublearray.BuildMemory(entries, doublearray.DefaultConfig())
	require.NoError(t, err)

	for _, e := range entries {
		v, ok := tr.Find(e.Key)
		require.True(t, ok)
		assert.Equal(t, e.Value, v)
	}

	sub, ok := tr.Subtrie([]byte("さ"))
	require.True(t, ok)

	v, ok := sub.Find([]byte("くら"))
	require.True(t, ok)
	assert.Equal(t, int32(1), v)

	v, ok = sub.Find([]byte("くらんぼ"))
	require.True(t, ok)
	assert.Equal(t, int32(2), v)

	v, ok = sub.Find([]byte("しみ"))
	require.True(t, ok)
	assert.Equal(t, int32(3), v)

	_, ok = tr.Subtrie([]byte("ぱ"))
	assert.False(t, ok)
}
