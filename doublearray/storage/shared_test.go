package storage_test

import (
	"testing"

	"github.com/iotaledger/da.go/doublearray/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedClonesShareUnderlyingMemory(t *testing.T) {
	mem := storage.NewMemory()
	s1 := storage.NewShared(mem)
	assert.Equal(t, int32(1), s1.RefCount())

	s2, err := s1.Clone()
	require.NoError(t, err)
	assert.Equal(t, int32(2), s1.RefCount())
	assert.Equal(t, int32(2), s2.(*storage.Shared).RefCount())

	require.NoError(t, s1.SetBaseAt(2, 42))
	assert.Equal(t, int32(42), s2.BaseAt(2))
}
