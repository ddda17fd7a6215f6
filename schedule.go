package lattice

import (
	"github.com/TheBitDrifter/mask"
	"go.uber.org/zap"
)

// ScheduleEntry pairs one query with the callback that processes its
// matched chunks, §4.11. All entries given to the same Schedule must
// share one world.
type ScheduleEntry struct {
	Query    *Query
	Callback ChunkCallback
}

// ScheduleStats reports the batching outcome of a compiled schedule,
// §4.11. Stable across repeated executions of the same entry list.
type ScheduleStats struct {
	BatchCount   int
	EdgeCount    int
	MaxBatchSize int
}

// Schedule is a precompiled conflict-graph batching of a fixed entry
// list, built once by NewSchedule and replayed by Execute. Grounded on
// spec §9's worked conflict-graph example: a per-component READ/WRITE
// access map feeding Kahn's-algorithm topological layering.
type Schedule struct {
	world   *World
	entries []ScheduleEntry
	batches [][]int // entry indices, in execution order
	stats   ScheduleStats
}

// NewSchedule validates entries (non-nil query/callback, single
// world) and compiles the batch plan.
func NewSchedule(w *World, entries []ScheduleEntry) (*Schedule, error) {
	for _, e := range entries {
		if e.Query == nil || e.Callback == nil {
			return nil, InvalidArgumentError{Reason: "schedule entry requires a non-nil query and callback"}
		}
		if e.Query.world != w {
			return nil, ConflictError{Reason: "schedule entries span more than one world"}
		}
	}
	batches, stats := compileBatches(entries)
	w.config.Logger.Debug("schedule compiled",
		zap.Int("entry_count", len(entries)),
		zap.Int("batch_count", stats.BatchCount),
		zap.Int("edge_count", stats.EdgeCount),
		zap.Int("max_batch_size", stats.MaxBatchSize),
	)
	return &Schedule{world: w, entries: entries, batches: batches, stats: stats}, nil
}

// accessMasks is one entry's per-component access map compressed into
// two bitsets: Write-marked components are a subset of all declared
// components, so Read-only access for id is (all.Contains(id) &&
// !write.Contains(id)).
type accessMasks struct {
	all   mask.Mask
	write mask.Mask
}

func buildAccessMasks(e ScheduleEntry) accessMasks {
	var m accessMasks
	for _, t := range e.Query.with {
		m.all.Mark(uint32(t.Component))
		if t.Access == Write {
			m.write.Mark(uint32(t.Component))
		}
	}
	return m
}

// conflictsOn reports whether two entries' access masks conflict on
// any shared component: WRITE<->WRITE or WRITE<->READ. READ<->READ
// never conflicts. A write mask overlapping the other side's full
// access mask (read or write) is always a conflict.
func conflictsOn(a, b accessMasks) bool {
	return a.write.ContainsAny(b.all) || b.write.ContainsAny(a.all)
}

// compileBatches builds the directed conflict graph (earlier->later on
// every conflicting pair) and layers it via Kahn's algorithm: each
// batch is the current frontier of zero in-degree nodes.
func compileBatches(entries []ScheduleEntry) ([][]int, ScheduleStats) {
	n := len(entries)
	masks := make([]accessMasks, n)
	for i, e := range entries {
		masks[i] = buildAccessMasks(e)
	}

	adj := make([][]int, n)
	indegree := make([]int, n)
	edgeCount := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if conflictsOn(masks[i], masks[j]) {
				adj[i] = append(adj[i], j)
				indegree[j]++
				edgeCount++
			}
		}
	}

	remaining := indegree
	var batches [][]int
	done := make([]bool, n)
	processed := 0
	for processed < n {
		var frontier []int
		for i := 0; i < n; i++ {
			if !done[i] && remaining[i] == 0 {
				frontier = append(frontier, i)
			}
		}
		for _, i := range frontier {
			done[i] = true
		}
		for _, i := range frontier {
			for _, j := range adj[i] {
				remaining[j]--
			}
		}
		processed += len(frontier)
		batches = append(batches, frontier)
	}

	maxBatch := 0
	for _, b := range batches {
		if len(b) > maxBatch {
			maxBatch = len(b)
		}
	}
	return batches, ScheduleStats{
		BatchCount:   len(batches),
		EdgeCount:    edgeCount,
		MaxBatchSize: maxBatch,
	}
}

// Execute runs every batch in order, entries within a batch dispatched
// in parallel across up to workerCount workers, §4.11.
func (s *Schedule) Execute(workerCount int) (ScheduleStats, error) {
	if workerCount <= 0 {
		return ScheduleStats{}, InvalidArgumentError{Reason: "worker_count must be > 0"}
	}
	if s.world.deferred.deferring() {
		return ScheduleStats{}, ConflictError{Reason: "schedule executed inside a defer region"}
	}
	for batchIdx, batch := range s.batches {
		entries := make([]ScheduleEntry, len(batch))
		for i, idx := range batch {
			entries[i] = s.entries[idx]
		}
		if err := s.world.runBatchParallel(entries, workerCount); err != nil {
			s.world.config.Logger.Warn("schedule batch failed",
				zap.Int("batch_index", batchIdx),
				zap.Int("batch_size", len(entries)),
				zap.Error(err),
			)
			return s.stats, err
		}
	}
	return s.stats, nil
}

// Stats returns the batching outcome computed at compile time.
func (s *Schedule) Stats() ScheduleStats { return s.stats }

// ExecuteSchedule is the one-shot equivalent of
// NewSchedule+Execute+discard, §4.11.
func ExecuteSchedule(w *World, entries []ScheduleEntry, workerCount int) (ScheduleStats, error) {
	s, err := NewSchedule(w, entries)
	if err != nil {
		return ScheduleStats{}, err
	}
	return s.Execute(workerCount)
}
