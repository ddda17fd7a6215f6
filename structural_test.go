package lattice

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

type position struct{ X, Y, Z float64 }

func registerPosition(t *testing.T, w *World) Column[position] {
	t.Helper()
	col, err := RegisterType[position](w, "position")
	require.NoError(t, err)
	return col
}

func setPosition(col Column[position], v position) []byte {
	buf := make([]byte, unsafe.Sizeof(v))
	*(*position)(unsafe.Pointer(&buf[0])) = v
	return buf
}

func TestSwapRemovePreservesNeighbor(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	pos := registerPosition(t, w)

	a, err := w.CreateEntity()
	require.NoError(t, err)
	b, err := w.CreateEntity()
	require.NoError(t, err)

	require.NoError(t, w.AddComponent(a, pos.ID(), setPosition(pos, position{11, 12, 13})))
	require.NoError(t, w.AddComponent(b, pos.ID(), setPosition(pos, position{21, 22, 23})))

	require.NoError(t, w.RemoveComponent(a, pos.ID()))

	got, err := pos.GetEntity(w, b)
	require.NoError(t, err)
	require.Equal(t, position{21, 22, 23}, *got)
}

func registerCountingResource(t *testing.T, w *World, calls *int) ComponentID {
	t.Helper()
	id, err := w.RegisterComponent(ComponentDescriptor{
		Name:  "resource",
		Size:  8,
		Align: 8,
		Dtor: func(unsafe.Pointer) {
			*calls++
		},
	})
	require.NoError(t, err)
	return id
}

func TestDtorCounting(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	var calls int
	resource := registerCountingResource(t, w, &calls)

	e, err := w.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, w.AddComponent(e, resource, nil))
	require.NoError(t, w.RemoveComponent(e, resource))
	require.Equal(t, 1, calls)

	require.NoError(t, w.AddComponent(e, resource, nil))
	require.NoError(t, w.DestroyEntity(e))
	require.Equal(t, 2, calls)

	f, err := w.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, w.AddComponent(f, resource, nil))
	w.Destroy()
	require.Equal(t, 3, calls)
}

func TestAddRemoveRoundTrip(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	pos := registerPosition(t, w)
	vel, err := RegisterType[position](w, "velocity")
	require.NoError(t, err)

	e, err := w.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, w.AddComponent(e, pos.ID(), setPosition(pos, position{1, 2, 3})))
	require.NoError(t, w.AddComponent(e, vel.ID(), setPosition(vel, position{4, 5, 6})))

	require.NoError(t, w.RemoveComponent(e, pos.ID()))
	got, err := vel.GetEntity(w, e)
	require.NoError(t, err)
	require.Equal(t, position{4, 5, 6}, *got)

	require.NoError(t, w.AddComponent(e, pos.ID(), nil))
	has, err := w.HasComponent(e, pos.ID())
	require.NoError(t, err)
	require.True(t, has)
}

func TestAddComponentAlreadyExists(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	pos := registerPosition(t, w)
	e, err := w.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, w.AddComponent(e, pos.ID(), nil))

	err = w.AddComponent(e, pos.ID(), nil)
	require.Error(t, err)
	require.Equal(t, AlreadyExists, statusOf(err))
}

func TestRemoveComponentNotFound(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	pos := registerPosition(t, w)
	e, err := w.CreateEntity()
	require.NoError(t, err)

	err = w.RemoveComponent(e, pos.ID())
	require.Error(t, err)
	require.Equal(t, NotFound, statusOf(err))
}

func TestStructuralMoveMonotonicity(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	pos := registerPosition(t, w)
	e, err := w.CreateEntity()
	require.NoError(t, err)

	before := w.Stats().StructuralMoves
	require.NoError(t, w.AddComponent(e, pos.ID(), nil))
	afterAdd := w.Stats().StructuralMoves
	require.Greater(t, afterAdd, before)

	require.NoError(t, w.RemoveComponent(e, pos.ID()))
	afterRemove := w.Stats().StructuralMoves
	require.Greater(t, afterRemove, afterAdd)

	require.NoError(t, w.DestroyEntity(e))
	afterDestroy := w.Stats().StructuralMoves
	require.Greater(t, afterDestroy, afterRemove)
}
