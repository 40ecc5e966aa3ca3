package doublearray_test

import (
	"bytes"
	"testing"

	"github.com/iotaledger/da.go/doublearray"
	"github.com/iotaledger/da.go/doublearray/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeKeyEntries() []doublearray.Entry {
	return []doublearray.Entry{
		{Key: []byte("SETA"), Value: int32(42)},
		{Key: []byte("UTIGOSI"), Value: int32(24)},
		{Key: []byte("UTO"), Value: int32(2424)},
	}
}

func TestBuildFindAndIterate(t *testing.T) {
	tr, err := doublearray.BuildMemory(threeKeyEntries(), doublearray.DefaultConfig())
	require.NoError(t, err)

	v, ok := tr.Find([]byte("SETA"))
	require.True(t, ok)
	assert.Equal(t, int32(42), v)

	v, ok = tr.Find([]byte("UTIGOSI"))
	require.True(t, ok)
	assert.Equal(t, int32(24), v)

	v, ok = tr.Find([]byte("UTO"))
	require.True(t, ok)
	assert.Equal(t, int32(2424), v)

	_, ok = tr.Find([]byte("NONE"))
	assert.False(t, ok)

	it := tr.Iterator()
	var got []string
	for it.Next() {
		key, _, err := it.Get()
		require.NoError(t, err)
		got = append(got, string(key))
	}
	_, _, err = it.Get()
	assert.ErrorIs(t, err, doublearray.ErrIteratorExhausted)

	assert.Equal(t, []string{"SETA", "UTIGOSI", "UTO"}, got)
}

func TestBuildRejectsZeroDensity(t *testing.T) {
	_, err := doublearray.Build(threeKeyEntries(), doublearray.Config{DensityFactor: 0})
	assert.ErrorIs(t, err, storage.ErrInvalidArgument)
}

func TestBuildRejectsUnsortedInput(t *testing.T) {
	entries := []doublearray.Entry{
		{Key: []byte("UTO"), Value: int32(1)},
		{Key: []byte("SETA"), Value: int32(2)},
	}
	_, err := doublearray.Build(entries, doublearray.DefaultConfig())
	assert.ErrorIs(t, err, storage.ErrInvalidArgument)
}

func TestBuildEmptyInput(t *testing.T) {
	mem, err := doublearray.Build(nil, doublearray.DefaultConfig())
	require.NoError(t, err)
	tr := doublearray.New(mem)

	_, ok := tr.Find([]byte("anything"))
	assert.False(t, ok)

	it := tr.Iterator()
	assert.False(t, it.Next())
}

func TestDensityFactorMonotonicity(t *testing.T) {
	loose, err := doublearray.Build(threeKeyEntries(), doublearray.Config{DensityFactor: 1})
	require.NoError(t, err)
	tight, err := doublearray.Build(threeKeyEntries(), doublearray.Config{DensityFactor: 10000})
	require.NoError(t, err)

	assert.LessOrEqual(t, tight.BaseCheckSize(), loose.BaseCheckSize())
	assert.GreaterOrEqual(t, tight.FillingRate(), loose.FillingRate())

	for _, e := range threeKeyEntries() {
		tr := doublearray.New(tight)
		v, ok := tr.Find(e.Key)
		require.True(t, ok)
		assert.Equal(t, e.Value, v)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	mem, err := doublearray.Build(threeKeyEntries(), doublearray.DefaultConfig())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, doublearray.Serialize(&buf, doublearray.New(mem), storage.Int32Serializer()))

	loaded, err := doublearray.Load(&buf, storage.Int32Deserializer())
	require.NoError(t, err)

	for _, e := range threeKeyEntries() {
		v, ok := loaded.Find(e.Key)
		require.True(t, ok)
		assert.Equal(t, e.Value, v)
	}
}

func TestBuildingObservers(t *testing.T) {
	var added []string
	done := false
	cfg := doublearray.Config{
		DensityFactor: doublearray.DefaultDensityFactor,
		BuildingObserverSet: doublearray.BuildingObserverSet{
			OnAdding: func(key []byte, valueIndex int32) { added = append(added, string(key)) },
			OnDone:   func() { done = true },
		},
	}
	_, err := doublearray.Build(threeKeyEntries(), cfg)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"SETA", "UTIGOSI", "UTO"}, added)
	assert.True(t, done)
}
