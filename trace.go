package lattice

import "go.uber.org/zap"

// TraceEventKind enumerates the lifecycle events a trace hook observes,
// §6 (1-indexed).
type TraceEventKind int

const (
	TraceDeferBegin TraceEventKind = iota + 1
	TraceDeferEnd
	TraceDeferEnqueue
	TraceFlushBegin
	TraceFlushApply
	TraceFlushEnd
	TraceEntityCreate
	TraceEntityDestroy
	TraceComponentAdd
	TraceComponentRemove
	TraceQueryIterBegin
	TraceQueryIterChunk
	TraceQueryIterEnd
)

var traceEventNames = map[TraceEventKind]string{
	TraceDeferBegin:      "DEFER_BEGIN",
	TraceDeferEnd:        "DEFER_END",
	TraceDeferEnqueue:    "DEFER_ENQUEUE",
	TraceFlushBegin:      "FLUSH_BEGIN",
	TraceFlushApply:      "FLUSH_APPLY",
	TraceFlushEnd:        "FLUSH_END",
	TraceEntityCreate:    "ENTITY_CREATE",
	TraceEntityDestroy:   "ENTITY_DESTROY",
	TraceComponentAdd:    "COMPONENT_ADD",
	TraceComponentRemove: "COMPONENT_REMOVE",
	TraceQueryIterBegin:  "QUERY_ITER_BEGIN",
	TraceQueryIterChunk:  "QUERY_ITER_CHUNK",
	TraceQueryIterEnd:    "QUERY_ITER_END",
}

func (k TraceEventKind) String() string {
	if name, ok := traceEventNames[k]; ok {
		return name
	}
	return "UNKNOWN_EVENT"
}

// TraceEvent is the payload delivered synchronously to a world's trace
// hook, §4.12.
type TraceEvent struct {
	Kind            TraceEventKind
	Status          Status
	Entity          Entity
	Component       ComponentID
	Op              string // auxiliary operation tag; emitTrace never sets it, so it is always ""
	LiveEntityCount int
	PendingCommands int
	DeferDepth      int
}

// TraceHook is a single synchronous observer. It must not call back
// into the world that invoked it.
type TraceHook func(TraceEvent)

// SetTraceHook installs (or, with nil, disables) the world's trace
// hook.
func (w *World) SetTraceHook(hook TraceHook) {
	w.traceHook = hook
}

// callTraceHook invokes the hook under a recover so a panicking host
// callback cannot unwind into the structural engine mid-mutation; the
// panic is logged at the boundary and swallowed.
func (w *World) callTraceHook(ev TraceEvent) {
	defer func() {
		if r := recover(); r != nil {
			w.config.Logger.Error("trace hook panicked",
				zap.Any("recovered", r),
				zap.Stringer("event_kind", ev.Kind),
			)
		}
	}()
	w.traceHook(ev)
}

func (w *World) emitTrace(kind TraceEventKind, e Entity, c ComponentID, status Status) {
	if w.traceHook == nil {
		return
	}
	w.callTraceHook(TraceEvent{
		Kind:            kind,
		Status:          status,
		Entity:          e,
		Component:       c,
		LiveEntityCount: w.entities.liveCnt,
		PendingCommands: w.deferred.pending(),
		DeferDepth:      int(w.deferred.depth),
	})
}
