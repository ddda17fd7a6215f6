package lattice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScheduleBatching(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	pos, err := RegisterType[position](w, "position")
	require.NoError(t, err)
	vel, err := RegisterType[position](w, "velocity")
	require.NoError(t, err)
	health, err := RegisterType[position](w, "health")
	require.NoError(t, err)

	e, err := w.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, w.AddComponent(e, pos.ID(), nil))
	require.NoError(t, w.AddComponent(e, vel.ID(), nil))
	require.NoError(t, w.AddComponent(e, health.ID(), nil))

	motionQuery, err := w.NewQuery(QueryDescriptor{With: []Term{
		{Component: pos.ID(), Access: Write},
		{Component: vel.ID(), Access: Read},
	}})
	require.NoError(t, err)
	healthQuery, err := w.NewQuery(QueryDescriptor{With: []Term{
		{Component: health.ID(), Access: Write},
	}})
	require.NoError(t, err)
	dampQuery, err := w.NewQuery(QueryDescriptor{With: []Term{
		{Component: vel.ID(), Access: Write},
	}})
	require.NoError(t, err)

	noop := func(View, int) error { return nil }
	entries := []ScheduleEntry{
		{Query: motionQuery, Callback: noop},
		{Query: healthQuery, Callback: noop},
		{Query: dampQuery, Callback: noop},
	}

	sched, err := NewSchedule(w, entries)
	require.NoError(t, err)
	stats := sched.Stats()
	require.Equal(t, 2, stats.BatchCount)
	require.Equal(t, 1, stats.EdgeCount)
	require.Equal(t, 2, stats.MaxBatchSize)

	for _, workers := range []int{1, 4} {
		got, err := sched.Execute(workers)
		require.NoError(t, err)
		require.Equal(t, stats, got)
	}
}

func TestScheduleRejectsMultipleWorlds(t *testing.T) {
	w1, err := NewWorld()
	require.NoError(t, err)
	w2, err := NewWorld()
	require.NoError(t, err)
	pos1, err := RegisterType[position](w1, "position")
	require.NoError(t, err)
	pos2, err := RegisterType[position](w2, "position")
	require.NoError(t, err)

	q1, err := w1.NewQuery(QueryDescriptor{With: []Term{{Component: pos1.ID(), Access: Read}}})
	require.NoError(t, err)
	q2, err := w2.NewQuery(QueryDescriptor{With: []Term{{Component: pos2.ID(), Access: Read}}})
	require.NoError(t, err)

	noop := func(View, int) error { return nil }
	_, err = NewSchedule(w1, []ScheduleEntry{
		{Query: q1, Callback: noop},
		{Query: q2, Callback: noop},
	})
	require.Error(t, err)
	require.Equal(t, Conflict, statusOf(err))
}

func TestExecuteScheduleOneShotMatchesPrecompiled(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	pos, err := RegisterType[position](w, "position")
	require.NoError(t, err)
	e, err := w.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, w.AddComponent(e, pos.ID(), nil))

	q, err := w.NewQuery(QueryDescriptor{With: []Term{{Component: pos.ID(), Access: Write}}})
	require.NoError(t, err)
	noop := func(View, int) error { return nil }
	entries := []ScheduleEntry{{Query: q, Callback: noop}}

	stats, err := ExecuteSchedule(w, entries, 2)
	require.NoError(t, err)
	require.Equal(t, 1, stats.BatchCount)
	require.Equal(t, 0, stats.EdgeCount)
	require.Equal(t, 1, stats.MaxBatchSize)
}
