package lattice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWorldRejectsLonesomeAllocFunc(t *testing.T) {
	_, err := NewWorld(func(c *Config) {
		c.AllocFunc = func(size, align int) ([]byte, bool) { return make([]byte, size), true }
	})
	require.Error(t, err)
	require.Equal(t, InvalidArgument, statusOf(err))
}

func TestNewWorldRejectsLonesomeFreeFunc(t *testing.T) {
	_, err := NewWorld(func(c *Config) {
		c.FreeFunc = func([]byte) {}
	})
	require.Error(t, err)
	require.Equal(t, InvalidArgument, statusOf(err))
}

func TestWithTargetChunkBytesShapesRowCapacity(t *testing.T) {
	w, err := NewWorld(WithTargetChunkBytes(64))
	require.NoError(t, err)
	pos, err := RegisterType[position](w, "position")
	require.NoError(t, err)

	e, err := w.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, w.AddComponent(e, pos.ID(), nil))

	_, _, _, err = w.ComponentLayout(pos.ID())
	require.NoError(t, err)

	// 64 bytes / (8-byte entity handle + 24-byte position) = 2 rows.
	s, err := w.entities.resolve(e)
	require.NoError(t, err)
	require.Equal(t, 2, s.loc.chunk.capacity)
}

func TestReserveEntitiesAndComponents(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	require.NoError(t, w.ReserveEntities(256))
	require.NoError(t, w.ReserveComponents(32))

	stats := w.Stats()
	require.GreaterOrEqual(t, stats.EntityCapacity, 256)
}
