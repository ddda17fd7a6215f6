package lattice

// deferredKind tags the variant of a captured deferred command, §4.6/§9.
type deferredKind int

const (
	deferAdd deferredKind = iota
	deferRemove
	deferDestroy
)

// deferredCommand is a tagged-variant mutation captured during a
// defer region. The payload (for Add) is an owned heap buffer sized by
// the component's registered layout, freed on flush or world teardown
// regardless of outcome.
type deferredCommand struct {
	kind      deferredKind
	entity    Entity
	component ComponentID
	payload   []byte // nil unless kind == deferAdd and a value was given
}

// deferredBuffer is the scoped capture of mutations issued during
// defer regions; ordered flush replays them in enqueue order, §4.7.
// depth>0 captures instead of applying; flush only runs once depth
// has returned to 0.
type deferredBuffer struct {
	commands []deferredCommand
	depth    uint32
}

func newDeferredBuffer() *deferredBuffer {
	return &deferredBuffer{}
}

func (b *deferredBuffer) begin() error {
	if b.depth == maxSlotCapacity {
		return CapacityReachedError{Reason: "defer depth would overflow uint32"}
	}
	b.depth++
	return nil
}

func (b *deferredBuffer) end() error {
	if b.depth == 0 {
		return ConflictError{Reason: "end_defer called at depth 0"}
	}
	b.depth--
	return nil
}

func (b *deferredBuffer) deferring() bool { return b.depth > 0 }

func (b *deferredBuffer) enqueueAdd(e Entity, id ComponentID, payload []byte) {
	b.commands = append(b.commands, deferredCommand{kind: deferAdd, entity: e, component: id, payload: payload})
}

func (b *deferredBuffer) enqueueRemove(e Entity, id ComponentID) {
	b.commands = append(b.commands, deferredCommand{kind: deferRemove, entity: e, component: id})
}

func (b *deferredBuffer) enqueueDestroy(e Entity) {
	b.commands = append(b.commands, deferredCommand{kind: deferDestroy, entity: e})
}

func (b *deferredBuffer) pending() int { return len(b.commands) }

// flush iterates queued commands in enqueue order, re-executing each
// as its non-deferred operation. The first command that returns
// non-OK stops iteration; the remaining commands are discarded
// regardless. Individual results are reported only via the trace
// hook; the first failure's status is the return value.
func (w *World) flush() error {
	if w.deferred.deferring() {
		return ConflictError{Reason: "flush called while still deferring"}
	}
	cmds := w.deferred.commands
	w.deferred.commands = nil
	w.emitTrace(TraceFlushBegin, NullEntity, 0, OK)

	var firstErr error
	for _, cmd := range cmds {
		var err error
		switch cmd.kind {
		case deferAdd:
			err = w.addComponentDirect(cmd.entity, cmd.component, cmd.payload)
		case deferRemove:
			err = w.removeComponentDirect(cmd.entity, cmd.component)
		case deferDestroy:
			err = w.destroyEntityDirect(cmd.entity)
		}
		w.emitTrace(TraceFlushApply, cmd.entity, cmd.component, statusOf(err))
		if err != nil && firstErr == nil {
			firstErr = err
			break
		}
	}
	w.emitTrace(TraceFlushEnd, NullEntity, 0, statusOf(firstErr))
	return firstErr
}
