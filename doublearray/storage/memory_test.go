package storage_test

import (
	"testing"

	"github.com/iotaledger/da.go/doublearray/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoryIsEmptyTrie(t *testing.T) {
	m := storage.NewMemory()
	assert.Equal(t, 1, m.BaseCheckSize())
	assert.Equal(t, storage.VacantCheck, m.CheckAt(0))
	assert.Equal(t, int32(0), m.BaseAt(0))
}

func TestMemoryGrowsOnWrite(t *testing.T) {
	m := storage.NewMemory()
	require.NoError(t, m.SetBaseAt(10, 7))
	assert.Equal(t, 11, m.BaseCheckSize())
	assert.Equal(t, int32(7), m.BaseAt(10))
	assert.Equal(t, storage.VacantCheck, m.CheckAt(5))
}

func TestMemoryOutOfRangeReadsAreVacant(t *testing.T) {
	m := storage.NewMemory()
	assert.Equal(t, int32(0), m.BaseAt(1000))
	assert.Equal(t, storage.VacantCheck, m.CheckAt(1000))
}

func TestMemoryAddValueRejectsOverwrite(t *testing.T) {
	m := storage.NewMemory()
	require.NoError(t, m.AddValueAt(0, int32(1)))
	err := m.AddValueAt(0, int32(2))
	assert.ErrorIs(t, err, storage.ErrInvalidArgument)
}

func TestMemoryFillingRate(t *testing.T) {
	m := storage.NewMemory()
	assert.Equal(t, 0.0, m.FillingRate())
	require.NoError(t, m.SetCheckAt(0, 'a'))
	assert.Equal(t, 1.0, m.FillingRate())
}

func TestMemoryCloneIsIndependent(t *testing.T) {
	m := storage.NewMemory()
	require.NoError(t, m.SetBaseAt(3, 5))
	require.NoError(t, m.AddValueAt(0, int32(9)))

	cloned, err := m.Clone()
	require.NoError(t, err)
	require.NoError(t, cloned.SetBaseAt(3, 99))

	assert.Equal(t, int32(5), m.BaseAt(3))
	assert.Equal(t, int32(99), cloned.BaseAt(3))
}
