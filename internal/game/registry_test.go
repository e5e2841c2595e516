package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreateAssignsUnambiguousCodes(t *testing.T) {
	reg := NewRegistry()
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		room, err := reg.Create()
		require.NoError(t, err)
		require.Len(t, room.Code(), roomCodeLength)
		for _, c := range room.Code() {
			assert.Contains(t, roomCodeAlphabet, string(c))
		}
		_, dup := seen[room.Code()]
		assert.False(t, dup, "duplicate code %s", room.Code())
		seen[room.Code()] = struct{}{}
	}
	assert.Equal(t, 50, reg.Len())
}

func TestRegistryGetAndRemove(t *testing.T) {
	reg := NewRegistry()
	room, err := reg.Create()
	require.NoError(t, err)

	got, ok := reg.Get(room.Code())
	require.True(t, ok)
	assert.Same(t, room, got)

	reg.Remove(room.Code())
	_, ok = reg.Get(room.Code())
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
}
