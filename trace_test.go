package lattice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTraceHookSequenceForAddRemove(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	pos := registerPosition(t, w)

	var kinds []TraceEventKind
	w.SetTraceHook(func(ev TraceEvent) {
		kinds = append(kinds, ev.Kind)
	})

	e, err := w.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, w.AddComponent(e, pos.ID(), setPosition(pos, position{1, 2, 3})))
	require.NoError(t, w.RemoveComponent(e, pos.ID()))

	require.Equal(t, []TraceEventKind{
		TraceEntityCreate,
		TraceComponentAdd,
		TraceComponentRemove,
	}, kinds)
}

func TestTraceHookPayloadMatchesOperation(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	pos := registerPosition(t, w)

	var got TraceEvent
	w.SetTraceHook(func(ev TraceEvent) {
		if ev.Kind == TraceComponentAdd {
			got = ev
		}
	})

	e, err := w.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, w.AddComponent(e, pos.ID(), setPosition(pos, position{1, 2, 3})))

	require.Equal(t, TraceComponentAdd, got.Kind)
	require.Equal(t, OK, got.Status)
	require.Equal(t, e, got.Entity)
	require.Equal(t, pos.ID(), got.Component)
	require.Equal(t, 1, got.LiveEntityCount)
}

func TestTraceHookObservesDeferFlushSequence(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	pos := registerPosition(t, w)

	e, err := w.CreateEntity()
	require.NoError(t, err)

	var kinds []TraceEventKind
	w.SetTraceHook(func(ev TraceEvent) {
		kinds = append(kinds, ev.Kind)
	})

	require.NoError(t, w.BeginDefer())
	require.NoError(t, w.AddComponent(e, pos.ID(), setPosition(pos, position{1, 2, 3})))
	require.NoError(t, w.EndDefer())
	require.NoError(t, w.Flush())

	require.Equal(t, []TraceEventKind{
		TraceDeferBegin,
		TraceDeferEnqueue,
		TraceDeferEnd,
		TraceFlushBegin,
		TraceComponentAdd,
		TraceFlushApply,
		TraceFlushEnd,
	}, kinds)
}

func TestTraceHookPanicIsRecoveredAtBoundary(t *testing.T) {
	w, err := NewWorld()
	require.NoError(t, err)
	pos := registerPosition(t, w)

	w.SetTraceHook(func(TraceEvent) {
		panic("host hook exploded")
	})

	e, err := w.CreateEntity()
	require.NoError(t, err)
	require.NotPanics(t, func() {
		require.NoError(t, w.AddComponent(e, pos.ID(), setPosition(pos, position{1, 2, 3})))
	})
}
