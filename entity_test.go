package lattice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntityCreateDestroyRevive(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)

	e0, err := w.CreateEntity()
	require.NoError(t, err)

	require.NoError(t, w.DestroyEntity(e0))

	e1, err := w.CreateEntity()
	require.NoError(t, err)

	require.NotEqual(t, e0, e1)
	stats := w.Stats()
	require.Equal(t, 1, stats.LiveEntities)
	require.Equal(t, 0, stats.FreeEntitySlots)
	require.False(t, w.IsAlive(e0))
	require.True(t, w.IsAlive(e1))
}

func TestEntityResolveStaleFailsOnDeadSlot(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)

	e, err := w.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, w.DestroyEntity(e))

	err = w.DestroyEntity(e)
	require.Error(t, err)
	require.Equal(t, StaleEntity, statusOf(err))
}

func TestEntityNullHandleIsInvalid(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)

	require.False(t, w.IsAlive(NullEntity))
	err = w.DestroyEntity(NullEntity)
	require.Error(t, err)
	require.Equal(t, InvalidArgument, statusOf(err))
}
