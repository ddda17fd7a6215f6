package lattice

import "unsafe"

// View is the chunk view a chunk iterator emits. It carries the row
// count and entity column only; it holds no per-term column array, and
// component values are reached by id through Column[T].Get. Entities
// and pointers obtained from the view are valid only until the next
// structural mutation of that archetype or the next Next() call, §4.9.
type View struct {
	Count    int
	Entities []Entity
	chunk    *chunk
}

// componentPtr resolves id to a pointer at the given row of the bound
// chunk. Returns nil for a tag component or a component absent from
// the chunk's archetype.
func (v View) componentPtr(id ComponentID, row int) unsafe.Pointer {
	if v.chunk == nil {
		return nil
	}
	return v.chunk.componentPtr(id, row)
}

// ChunkIterator is a serial lazy sequence over a query's matched
// archetypes, grounded on warehouse/cursor.go's advance/Reset state
// machine.
type ChunkIterator struct {
	query        *Query
	archetypeIdx int
	chunkIdx     int
	finished     bool
}

// IterBegin starts a new chunk iterator, refreshing the query first.
func (q *Query) IterBegin() *ChunkIterator {
	q.Refresh()
	q.world.emitTrace(TraceQueryIterBegin, NullEntity, 0, OK)
	return &ChunkIterator{query: q}
}

// Next advances to the next non-empty chunk. Once exhausted, it keeps
// returning (View{}, false) without re-entering the scan, resolving
// spec §9's open question about re-entrant exhaustion.
func (it *ChunkIterator) Next() (View, bool) {
	if it.finished {
		return View{}, false
	}
	q := it.query
	for it.archetypeIdx < len(q.matches) {
		a := q.matches[it.archetypeIdx]
		for it.chunkIdx < len(a.chunks) {
			ch := a.chunks[it.chunkIdx]
			it.chunkIdx++
			if ch.count == 0 {
				continue
			}
			q.world.emitTrace(TraceQueryIterChunk, NullEntity, 0, OK)
			return View{
				Count:    ch.count,
				Entities: ch.entities[:ch.count],
				chunk:    ch,
			}, true
		}
		it.archetypeIdx++
		it.chunkIdx = 0
	}
	it.finished = true
	q.world.emitTrace(TraceQueryIterEnd, NullEntity, 0, OK)
	return View{}, false
}
