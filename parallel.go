package lattice

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ChunkCallback processes one matched chunk. It must not perform
// structural mutations or create/refresh/iterate any query -- the
// only permitted side effects are writes to the columns exposed in
// view and to state owned by the caller, §5.
type ChunkCallback func(view View, workerIndex int) error

// ForEachChunkParallel dispatches callback across every matched
// non-empty chunk of q, bounding in-flight workers to workerCount with
// a semaphore and awaiting all of them with an errgroup, the same
// bounded-fan-out-then-barrier shape the pack's arena cache loader
// uses for its singleflight group. The query is refreshed once at
// entry; each worker is handed disjoint chunks so no two workers ever
// touch the same chunk's columns.
func (w *World) ForEachChunkParallel(q *Query, workerCount int, callback ChunkCallback) error {
	if workerCount <= 0 {
		return InvalidArgumentError{Reason: "worker_count must be > 0"}
	}
	if callback == nil {
		return InvalidArgumentError{Reason: "callback must be non-nil"}
	}
	if w.deferred.deferring() {
		return ConflictError{Reason: "parallel dispatch called inside a defer region"}
	}

	q.Refresh()
	type unit struct {
		view View
	}
	var units []unit
	for _, a := range q.matches {
		for _, ch := range a.chunks {
			if ch.count == 0 {
				continue
			}
			units = append(units, unit{view: View{
				Count:    ch.count,
				Entities: ch.entities[:ch.count],
				chunk:    ch,
			}})
		}
	}

	sem := semaphore.NewWeighted(int64(workerCount))
	g, ctx := errgroup.WithContext(context.Background())
	for i, u := range units {
		u := u
		workerIdx := i % workerCount
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			return callback(u.view, workerIdx)
		})
	}
	return g.Wait()
}

// runBatchParallel dispatches every entry in a schedule batch
// concurrently, sharing one workerCount-bounded semaphore across the
// whole batch rather than per entry, so the batch's total in-flight
// work -- not just each entry's -- is capped at workerCount.
func (w *World) runBatchParallel(entries []ScheduleEntry, workerCount int) error {
	type unit struct {
		view     View
		callback ChunkCallback
	}
	var units []unit
	for _, entry := range entries {
		entry.Query.Refresh()
		for _, a := range entry.Query.matches {
			for _, ch := range a.chunks {
				if ch.count == 0 {
					continue
				}
				units = append(units, unit{
					view: View{
						Count:    ch.count,
						Entities: ch.entities[:ch.count],
						chunk:    ch,
					},
					callback: entry.Callback,
				})
			}
		}
	}

	sem := semaphore.NewWeighted(int64(workerCount))
	g, ctx := errgroup.WithContext(context.Background())
	for i, u := range units {
		u := u
		workerIdx := i % workerCount
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			return u.callback(u.view, workerIdx)
		})
	}
	return g.Wait()
}
