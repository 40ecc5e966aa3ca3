package storage_test

import (
	"bytes"
	"testing"

	"github.com/iotaledger/da.go/doublearray/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndLoadRoundTrip(t *testing.T) {
	m := storage.NewMemory()
	require.NoError(t, m.SetBaseAt(0, 5))
	require.NoError(t, m.SetCheckAt(5, 'a'))
	require.NoError(t, m.AddValueAt(0, int32(123)))

	var buf bytes.Buffer
	require.NoError(t, m.Serialize(&buf, storage.Int32Serializer()))

	loaded, err := storage.Load(&buf, storage.Int32Deserializer())
	require.NoError(t, err)

	assert.Equal(t, m.BaseCheckSize(), loaded.BaseCheckSize())
	for i := 0; i < m.BaseCheckSize(); i++ {
		assert.Equal(t, m.BaseAt(i), loaded.BaseAt(i))
		assert.Equal(t, m.CheckAt(i), loaded.CheckAt(i))
	}
	v, ok := loaded.ValueAt(0)
	require.True(t, ok)
	assert.Equal(t, int32(123), v)
}

func TestLoadRejectsTruncatedHeader(t *testing.T) {
	_, err := storage.Load(bytes.NewReader([]byte{0, 0}), storage.Int32Deserializer())
	assert.ErrorIs(t, err, storage.ErrIO)
}

func TestSerializeRejectsUnsetValue(t *testing.T) {
	m := storage.NewMemory()
	require.NoError(t, m.AddValueAt(1, int32(1)))

	var buf bytes.Buffer
	err := m.Serialize(&buf, storage.Int32Serializer())
	assert.ErrorIs(t, err, storage.ErrOutOfRange)
}
