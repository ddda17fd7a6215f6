package lattice

// World owns every piece of state named in spec §3: allocator, target
// chunk bytes, trace hook, entity table, component registry,
// archetype table, root archetype, deferred-command buffer, depth
// counter, structural-move counter, total-chunk counter. Grounded on
// warehouse/storage.go's struct shape, generalized from a single
// schema+archetypes pair into the full spec'd state.
type World struct {
	config    Config
	allocator Allocator

	entities   *entityTable
	components *componentRegistry
	archetypes *archetypeStore
	root       *Archetype
	deferred   *deferredBuffer

	traceHook TraceHook

	structuralMoves int
	totalChunkCount int

	metrics *MetricsRecorder

	namedQueries *SimpleCache[*Query]
}

const defaultNamedQueryCapacity = 64

// NewWorld constructs a World per Config, §6. Supplying exactly one of
// AllocFunc/FreeFunc fails with InvalidArgument.
func NewWorld(opts ...Option) (*World, error) {
	cfg, alloc, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	w := &World{
		config:       cfg,
		allocator:    alloc,
		entities:     newEntityTable(cfg.InitialEntityCapacity),
		components:   newComponentRegistry(cfg.InitialComponentCapacity),
		deferred:     newDeferredBuffer(),
		namedQueries: NewSimpleCache[*Query](defaultNamedQueryCapacity),
	}
	w.archetypes = newArchetypeStore(w)
	root, err := w.archetypes.findOrCreate(nil)
	if err != nil {
		return nil, err
	}
	w.root = root
	if cfg.metricsRegistry != nil {
		w.metrics = NewMetricsRecorder(cfg.metricsRegistry)
	}
	return w, nil
}

// ReserveEntities pre-grows the entity slot table to at least n slots.
func (w *World) ReserveEntities(n int) error {
	return w.entities.reserve(n)
}

// ReserveComponents pre-grows the component registry to at least n
// entries.
func (w *World) ReserveComponents(n int) error {
	return w.components.reserve(n)
}

// RegisterComponent validates and registers a component descriptor,
// §4.3.
func (w *World) RegisterComponent(desc ComponentDescriptor) (ComponentID, error) {
	return w.components.register(desc)
}

// FindComponent looks a component up by its registered name.
func (w *World) FindComponent(name string) (ComponentID, error) {
	return w.components.findByName(name)
}

// ComponentName returns a registered component's name.
func (w *World) ComponentName(id ComponentID) (string, error) {
	return w.components.name(id)
}

// ComponentLayout returns a registered component's size/align/flags.
func (w *World) ComponentLayout(id ComponentID) (size, align int, flags ComponentFlags, err error) {
	desc, err := w.components.layout(id)
	if err != nil {
		return 0, 0, 0, err
	}
	return desc.Size, desc.Align, desc.Flags, nil
}

// WorldStats mirrors world_get_stats, §6.
type WorldStats struct {
	LiveEntities         int
	EntityCapacity       int
	AllocatedEntitySlots int
	FreeEntitySlots      int
	RegisteredComponents int
	ArchetypeCount       int
	ChunkCount           int
	PendingCommands      int
	DeferDepth           int
	StructuralMoves      int
}

// Stats reports the observable world-level counters.
func (w *World) Stats() WorldStats {
	s := WorldStats{
		LiveEntities:         w.entities.liveCnt,
		EntityCapacity:       cap(w.entities.slots),
		AllocatedEntitySlots: len(w.entities.slots),
		FreeEntitySlots:      w.entities.freeSlotCount(),
		RegisteredComponents: w.components.count(),
		ArchetypeCount:       len(w.archetypes.byList),
		ChunkCount:           w.archetypes.chunkCount(),
		PendingCommands:      w.deferred.pending(),
		DeferDepth:           int(w.deferred.depth),
		StructuralMoves:      w.structuralMoves,
	}
	w.metrics.observe(s)
	return s
}

// IsAlive reports whether e still refers to a live slot.
func (w *World) IsAlive(e Entity) bool { return w.entities.isAlive(e) }

// Destroy tears the world down, invoking every live entity's
// component destructors exactly once before releasing chunk storage.
// There is no persisted state to flush (§6) and no background thread
// to stop; Destroy exists purely to run the dtor sweep the teardown
// path of §8 scenario 3 depends on.
func (w *World) Destroy() {
	for idx := range w.entities.slots {
		s := &w.entities.slots[idx]
		if !s.alive {
			continue
		}
		ch := s.loc.chunk
		row := s.loc.row
		for id, col := range ch.owner.columnIndex {
			size := ch.sizes[col]
			if size == 0 {
				continue
			}
			desc, err := w.components.layout(id)
			if err != nil || desc.Dtor == nil {
				continue
			}
			desc.Dtor(ch.componentPtr(id, row))
		}
	}
	for _, a := range w.archetypes.byList {
		for _, ch := range a.chunks {
			ch.free()
		}
	}
}

// CopyComponentIDs copies every registered component id into dst,
// returning the number written. Fails CapacityReached if dst is too
// small. Supplements spec §6's operation list (world_copy_component_ids).
func (w *World) CopyComponentIDs(dst []ComponentID) (int, error) {
	n := w.components.count()
	if len(dst) < n {
		return 0, CapacityReachedError{Reason: "destination slice too small for component ids"}
	}
	for i := 0; i < n; i++ {
		dst[i] = ComponentID(i + 1)
	}
	return n, nil
}

// CopyEntities copies every live entity handle into dst, in slot-table
// order, returning the number written. Supplements §6's
// world_copy_entities.
func (w *World) CopyEntities(dst []Entity) (int, error) {
	if len(dst) < w.entities.liveCnt {
		return 0, CapacityReachedError{Reason: "destination slice too small for live entity count"}
	}
	n := 0
	for idx, s := range w.entities.slots {
		if s.alive {
			dst[n] = newEntity(uint32(idx), s.generation)
			n++
		}
	}
	return n, nil
}

// CopyEntityComponents copies the component ids attached to e into
// dst, returning the number written. Supplements §6's
// world_copy_entity_components.
func (w *World) CopyEntityComponents(e Entity, dst []ComponentID) (int, error) {
	s, err := w.entities.resolve(e)
	if err != nil {
		return 0, err
	}
	key := s.loc.archetype.key
	if len(dst) < len(key) {
		return 0, CapacityReachedError{Reason: "destination slice too small for entity's component set"}
	}
	copy(dst, key)
	return len(key), nil
}

// RegisterNamedQuery compiles desc and registers the resulting Query
// under name so host code can look it up again without rebuilding or
// re-validating the descriptor every frame. Fails AlreadyExists if
// name is taken, CapacityReached once the named-query cache is full.
func (w *World) RegisterNamedQuery(name string, desc QueryDescriptor) (*Query, error) {
	q, err := w.NewQuery(desc)
	if err != nil {
		return nil, err
	}
	if _, err := w.namedQueries.Register(name, q); err != nil {
		return nil, err
	}
	return q, nil
}

// NamedQuery looks up a query previously registered with
// RegisterNamedQuery.
func (w *World) NamedQuery(name string) (*Query, bool) {
	q, ok := w.namedQueries.Get(name)
	if !ok {
		return nil, false
	}
	return *q, true
}
