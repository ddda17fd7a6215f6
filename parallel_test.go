package lattice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildMotionWorld(t *testing.T, n int) (*World, Column[position], Column[position]) {
	t.Helper()
	w, err := NewWorld()
	require.NoError(t, err)
	pos, err := RegisterType[position](w, "position")
	require.NoError(t, err)
	vel, err := RegisterType[position](w, "velocity")
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		e, err := w.CreateEntity()
		require.NoError(t, err)
		require.NoError(t, w.AddComponent(e, pos.ID(), setPosition(pos, position{float64(i), 0, 0})))
		require.NoError(t, w.AddComponent(e, vel.ID(), setPosition(vel, position{1, 2, 3})))
	}
	return w, pos, vel
}

func checksumPositions(t *testing.T, w *World, pos Column[position]) float64 {
	t.Helper()
	q, err := w.NewQuery(QueryDescriptor{With: []Term{{Component: pos.ID(), Access: Read}}})
	require.NoError(t, err)
	var sum float64
	it := q.IterBegin()
	for view, ok := it.Next(); ok; view, ok = it.Next() {
		for row := 0; row < view.Count; row++ {
			p := pos.Get(view, row)
			sum += p.X + p.Y + p.Z
		}
	}
	return sum
}

func TestParallelDeterminismAcrossWorkerCounts(t *testing.T) {
	checksums := make(map[int]float64)
	for _, workers := range []int{1, 2, 4, 8} {
		w, pos, vel := buildMotionWorld(t, 97)
		q, err := w.NewQuery(QueryDescriptor{With: []Term{
			{Component: pos.ID(), Access: Write},
			{Component: vel.ID(), Access: Read},
		}})
		require.NoError(t, err)

		err = w.ForEachChunkParallel(q, workers, func(view View, _ int) error {
			for row := 0; row < view.Count; row++ {
				p := pos.Get(view, row)
				v := vel.Get(view, row)
				p.X += v.X
				p.Y += v.Y
				p.Z += v.Z
			}
			return nil
		})
		require.NoError(t, err)
		checksums[workers] = checksumPositions(t, w, pos)
	}
	for workers, sum := range checksums {
		require.Equal(t, checksums[1], sum, "worker count %d diverged", workers)
	}
}

func TestForEachChunkParallelRejectsInvalidArguments(t *testing.T) {
	w, pos, _ := buildMotionWorld(t, 1)
	q, err := w.NewQuery(QueryDescriptor{With: []Term{{Component: pos.ID(), Access: Read}}})
	require.NoError(t, err)

	err = w.ForEachChunkParallel(q, 0, func(View, int) error { return nil })
	require.Equal(t, InvalidArgument, statusOf(err))

	err = w.ForEachChunkParallel(q, 1, nil)
	require.Equal(t, InvalidArgument, statusOf(err))
}

func TestForEachChunkParallelRejectsDuringDefer(t *testing.T) {
	w, pos, _ := buildMotionWorld(t, 1)
	q, err := w.NewQuery(QueryDescriptor{With: []Term{{Component: pos.ID(), Access: Read}}})
	require.NoError(t, err)
	require.NoError(t, w.BeginDefer())

	err = w.ForEachChunkParallel(q, 1, func(View, int) error { return nil })
	require.Equal(t, Conflict, statusOf(err))
}
