package storage_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/iotaledger/da.go/doublearray/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	m := storage.NewMemory()
	require.NoError(t, m.SetBaseAt(0, 5))
	require.NoError(t, m.SetCheckAt(5, 'a'))
	require.NoError(t, m.AddValueAt(0, int32(123)))

	var buf bytes.Buffer
	require.NoError(t, m.Serialize(&buf, storage.Int32Serializer()))

	path := filepath.Join(t.TempDir(), "trie.bin")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

// writeMultiValueFixture serializes a storage whose value table holds
// three distinct int32 values (42, 24, 2424, the values from spec.md §8
// scenario 1) at indices 0..2, with a minimal one-cell base/check block:
// only the value table matters for the eviction test below, which reads
// values directly by index rather than walking keys.
func writeMultiValueFixture(t *testing.T) string {
	t.Helper()
	m := storage.NewMemory()
	require.NoError(t, m.AddValueAt(0, int32(42)))
	require.NoError(t, m.AddValueAt(1, int32(24)))
	require.NoError(t, m.AddValueAt(2, int32(2424)))

	var buf bytes.Buffer
	require.NoError(t, m.Serialize(&buf, storage.Int32Serializer()))

	path := filepath.Join(t.TempDir(), "trie-multi.bin")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

// TestOpenMmapEvictsUnderCapacity covers spec.md §8 scenario 5: a cache
// capacity of 2 and three distinct-value lookups must evict at least one
// entry, observably via EvictionCount.
func TestOpenMmapEvictsUnderCapacity(t *testing.T) {
	path := writeMultiValueFixture(t)

	m, err := storage.OpenMmap(path, 0, storage.Int32Deserializer(), 2)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, int64(0), m.EvictionCount())

	for _, k := range []int{0, 1, 2} {
		v, ok := m.ValueAt(k)
		require.True(t, ok)
		assert.NotNil(t, v)
	}

	assert.Greater(t, m.EvictionCount(), int64(0))
}

func TestOpenMmapReadsBackEqualToSource(t *testing.T) {
	path := writeFixture(t)

	m, err := storage.OpenMmap(path, 0, storage.Int32Deserializer(), 0)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 6, m.BaseCheckSize())
	assert.Equal(t, int32(5), m.BaseAt(0))
	assert.Equal(t, byte('a'), m.CheckAt(5))
	v, ok := m.ValueAt(0)
	require.True(t, ok)
	assert.Equal(t, int32(123), v)
}

func TestOpenMmapWritesRejected(t *testing.T) {
	path := writeFixture(t)
	m, err := storage.OpenMmap(path, 0, storage.Int32Deserializer(), 0)
	require.NoError(t, err)
	defer m.Close()

	assert.ErrorIs(t, m.SetBaseAt(0, 1), storage.ErrInvalidArgument)
	assert.ErrorIs(t, m.SetCheckAt(0, 1), storage.ErrInvalidArgument)
	assert.ErrorIs(t, m.AddValueAt(0, int32(1)), storage.ErrInvalidArgument)
	assert.ErrorIs(t, m.Serialize(&bytes.Buffer{}, storage.Int32Serializer()), storage.ErrInvalidArgument)
}

func TestOpenMmapCloneIndependentCache(t *testing.T) {
	path := writeFixture(t)
	m, err := storage.OpenMmap(path, 0, storage.Int32Deserializer(), 4)
	require.NoError(t, err)
	defer m.Close()

	clone, err := m.Clone()
	require.NoError(t, err)
	defer clone.(*storage.Mmap).Close()

	v, ok := clone.ValueAt(0)
	require.True(t, ok)
	assert.Equal(t, int32(123), v)
	assert.Equal(t, int64(0), clone.(*storage.Mmap).EvictionCount())
}

func TestOpenMmapRejectsVariableSizeValues(t *testing.T) {
	m := storage.NewMemory()
	require.NoError(t, m.AddValueAt(0, "hello"))

	var buf bytes.Buffer
	require.NoError(t, m.Serialize(&buf, storage.StringSerializer(true)))

	path := filepath.Join(t.TempDir(), "variable.bin")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	_, err := storage.OpenMmap(path, 0, storage.StringDeserializer(true), 0)
	assert.ErrorIs(t, err, storage.ErrInvalidArgument)
}
