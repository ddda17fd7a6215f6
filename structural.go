package lattice

import "unsafe"

// CreateEntity inserts a new entity into the root archetype (empty
// key), §4.2.
func (w *World) CreateEntity() (Entity, error) {
	e, err := w.entities.create()
	if err != nil {
		w.emitTrace(TraceEntityCreate, NullEntity, 0, statusOf(err))
		return NullEntity, err
	}
	ch, row, err := allocRow(w.root)
	if err != nil {
		return NullEntity, err
	}
	ch.entities[row] = e
	s, _ := w.entities.resolve(e)
	s.loc = location{archetype: w.root, chunk: ch, row: row}
	w.emitTrace(TraceEntityCreate, e, 0, OK)
	return e, nil
}

// DestroyEntity destroys e outside a defer region, or enqueues the
// destruction if currently deferring, §4.6.
func (w *World) DestroyEntity(e Entity) error {
	if w.deferred.deferring() {
		if _, err := w.entities.resolve(e); err != nil {
			return err
		}
		w.deferred.enqueueDestroy(e)
		w.emitTrace(TraceDeferEnqueue, e, 0, OK)
		return nil
	}
	return w.destroyEntityDirect(e)
}

func (w *World) destroyEntityDirect(e Entity) error {
	s, err := w.entities.resolve(e)
	if err != nil {
		w.emitTrace(TraceEntityDestroy, e, 0, statusOf(err))
		return err
	}
	ch := s.loc.chunk
	row := s.loc.row
	for id, col := range ch.owner.columnIndex {
		size := ch.sizes[col]
		if size == 0 {
			continue
		}
		desc, _ := w.components.layout(id)
		if desc.Dtor != nil {
			desc.Dtor(unsafe.Pointer(&ch.columns[col][row*size]))
		}
	}
	swapRemove(w, ch, row)
	w.structuralMoves++
	w.entities.retire(e.Index())
	w.emitTrace(TraceEntityDestroy, e, 0, OK)
	return nil
}

// AddComponent adds component id to e, optionally with an initial
// value (memcpy'd from initial if non-nil, else Ctor if present, else
// zero-filled), moving the entity to the destination archetype, §4.6.
func (w *World) AddComponent(e Entity, id ComponentID, initial []byte) error {
	if w.deferred.deferring() {
		if _, err := w.entities.resolve(e); err != nil {
			return err
		}
		desc, err := w.components.layout(id)
		if err != nil {
			return err
		}
		var payload []byte
		if initial != nil {
			payload = make([]byte, desc.Size)
			copy(payload, initial)
		}
		w.deferred.enqueueAdd(e, id, payload)
		w.emitTrace(TraceDeferEnqueue, e, id, OK)
		return nil
	}
	return w.addComponentDirect(e, id, initial)
}

func (w *World) addComponentDirect(e Entity, id ComponentID, initial []byte) error {
	s, err := w.entities.resolve(e)
	if err != nil {
		w.emitTrace(TraceComponentAdd, e, id, statusOf(err))
		return err
	}
	desc, err := w.components.layout(id)
	if err != nil {
		w.emitTrace(TraceComponentAdd, e, id, statusOf(err))
		return err
	}
	src := s.loc.archetype
	if src.contains(id) {
		err := AlreadyExistsError{Reason: "component already present on entity's archetype"}
		w.emitTrace(TraceComponentAdd, e, id, statusOf(err))
		return err
	}

	dst, err := w.archetypes.transitionAdd(src, id)
	if err != nil {
		return err
	}
	dstChunk, dstRow, err := allocRow(dst)
	if err != nil {
		return err
	}
	dstChunk.entities[dstRow] = e

	srcChunk, srcRow := s.loc.chunk, s.loc.row
	for cid, dstCol := range dst.columnIndex {
		size := dstChunk.sizes[dstCol]
		if size == 0 {
			continue
		}
		dstPtr := unsafe.Pointer(&dstChunk.columns[dstCol][dstRow*size])
		if cid == id {
			if initial != nil {
				copy(dstChunk.columns[dstCol][dstRow*size:dstRow*size+size], initial)
			} else {
				clear(dstChunk.columns[dstCol][dstRow*size : dstRow*size+size])
				if desc.Ctor != nil {
					desc.Ctor(dstPtr)
				}
			}
			continue
		}
		srcCol, ok := src.columnIndex[cid]
		if !ok {
			continue
		}
		srcSize := srcChunk.sizes[srcCol]
		srcPtr := unsafe.Pointer(&srcChunk.columns[srcCol][srcRow*srcSize])
		cdesc, _ := w.components.layout(cid)
		if cdesc.Move != nil && cdesc.Flags&FlagTriviallyRelocatable == 0 {
			cdesc.Move(dstPtr, srcPtr)
		} else {
			copy(dstChunk.columns[dstCol][dstRow*size:dstRow*size+size], srcChunk.columns[srcCol][srcRow*srcSize:srcRow*srcSize+srcSize])
		}
	}

	s.loc = location{archetype: dst, chunk: dstChunk, row: dstRow}
	w.structuralMoves++
	swapRemove(w, srcChunk, srcRow)
	w.emitTrace(TraceComponentAdd, e, id, OK)
	return nil
}

// RemoveComponent removes component id from e, moving it to the
// destination archetype, §4.6.
func (w *World) RemoveComponent(e Entity, id ComponentID) error {
	if w.deferred.deferring() {
		if _, err := w.entities.resolve(e); err != nil {
			return err
		}
		w.deferred.enqueueRemove(e, id)
		w.emitTrace(TraceDeferEnqueue, e, id, OK)
		return nil
	}
	return w.removeComponentDirect(e, id)
}

func (w *World) removeComponentDirect(e Entity, id ComponentID) error {
	s, err := w.entities.resolve(e)
	if err != nil {
		w.emitTrace(TraceComponentRemove, e, id, statusOf(err))
		return err
	}
	src := s.loc.archetype
	if !src.contains(id) {
		err := NotFoundError{Reason: "component not present on entity's archetype"}
		w.emitTrace(TraceComponentRemove, e, id, statusOf(err))
		return err
	}
	dst, err := w.archetypes.transitionRemove(src, id)
	if err != nil {
		return err
	}

	srcChunk, srcRow := s.loc.chunk, s.loc.row
	if col, ok := src.columnIndex[id]; ok {
		size := srcChunk.sizes[col]
		if size > 0 {
			desc, _ := w.components.layout(id)
			if desc.Dtor != nil {
				desc.Dtor(unsafe.Pointer(&srcChunk.columns[col][srcRow*size]))
			}
		}
	}

	dstChunk, dstRow, err := allocRow(dst)
	if err != nil {
		return err
	}
	dstChunk.entities[dstRow] = e
	for cid, dstCol := range dst.columnIndex {
		srcCol, ok := src.columnIndex[cid]
		if !ok {
			continue
		}
		size := dstChunk.sizes[dstCol]
		if size == 0 {
			continue
		}
		dstPtr := unsafe.Pointer(&dstChunk.columns[dstCol][dstRow*size])
		srcPtr := unsafe.Pointer(&srcChunk.columns[srcCol][srcRow*size])
		cdesc, _ := w.components.layout(cid)
		if cdesc.Move != nil && cdesc.Flags&FlagTriviallyRelocatable == 0 {
			cdesc.Move(dstPtr, srcPtr)
		} else {
			copy(dstChunk.columns[dstCol][dstRow*size:dstRow*size+size], srcChunk.columns[srcCol][srcRow*size:srcRow*size+size])
		}
	}

	s.loc = location{archetype: dst, chunk: dstChunk, row: dstRow}
	w.structuralMoves++
	swapRemove(w, srcChunk, srcRow)
	w.emitTrace(TraceComponentRemove, e, id, OK)
	return nil
}

// HasComponent reports whether e's current archetype carries id.
func (w *World) HasComponent(e Entity, id ComponentID) (bool, error) {
	s, err := w.entities.resolve(e)
	if err != nil {
		return false, err
	}
	return s.loc.archetype.contains(id), nil
}

// getComponent returns a pointer into the chunk for id on e, or nil
// for a tag component, erroring if e is dead or lacks id.
func (w *World) getComponent(e Entity, id ComponentID) (unsafe.Pointer, error) {
	s, err := w.entities.resolve(e)
	if err != nil {
		return nil, err
	}
	if !s.loc.archetype.contains(id) {
		return nil, NotFoundError{Reason: "component not present on entity's archetype"}
	}
	return s.loc.chunk.componentPtr(id, s.loc.row), nil
}

// BeginDefer enters a defer region; structural mutations issued while
// depth > 0 are captured instead of applied, §4.7.
func (w *World) BeginDefer() error {
	err := w.deferred.begin()
	w.emitTrace(TraceDeferBegin, NullEntity, 0, statusOf(err))
	return err
}

// EndDefer leaves one level of a defer region.
func (w *World) EndDefer() error {
	err := w.deferred.end()
	w.emitTrace(TraceDeferEnd, NullEntity, 0, statusOf(err))
	return err
}

// Flush replays queued commands in enqueue order; fails Conflict while
// still deferring.
func (w *World) Flush() error {
	return w.flush()
}
