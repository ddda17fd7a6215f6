package lattice

import "github.com/TheBitDrifter/mask"

// archetypeRowLimit clamps rows_per_chunk regardless of the computed
// byte budget, §3.
const archetypeRowLimit = 4096

// Archetype is the set of component IDs attached to a group of
// entities, identified by a sorted component-id key. It owns an
// ordered slice of chunks.
type Archetype struct {
	id           uint32
	key          []ComponentID // sorted, strictly increasing
	signature    mask.Mask
	columnIndex  map[ComponentID]int // position of each non-tag component's column
	chunks       []*chunk
	rowsPerChunk int
	world        *World

	// addEdges/removeEdges cache key_with_add/key_with_remove
	// transitions to the destination archetype, per spec §9.
	addEdges    map[ComponentID]*Archetype
	removeEdges map[ComponentID]*Archetype
}

func (a *Archetype) contains(id ComponentID) bool {
	for _, k := range a.key {
		if k == id {
			return true
		}
		if k > id {
			break
		}
	}
	return false
}

// keyWithAdd returns a new sorted key with id merged in (pure; does
// not mutate key).
func keyWithAdd(key []ComponentID, id ComponentID) []ComponentID {
	out := make([]ComponentID, 0, len(key)+1)
	inserted := false
	for _, k := range key {
		if !inserted && id < k {
			out = append(out, id)
			inserted = true
		}
		out = append(out, k)
	}
	if !inserted {
		out = append(out, id)
	}
	return out
}

// keyWithRemove returns a new sorted key with id omitted (pure).
func keyWithRemove(key []ComponentID, id ComponentID) []ComponentID {
	out := make([]ComponentID, 0, len(key))
	for _, k := range key {
		if k != id {
			out = append(out, k)
		}
	}
	return out
}

func maskFor(key []ComponentID) mask.Mask {
	var m mask.Mask
	for _, id := range key {
		m.Mark(uint32(id))
	}
	return m
}

// archetypeStore is the set of archetypes keyed by signature, §4.4.
type archetypeStore struct {
	world  *World
	byList []*Archetype
	byMask map[mask.Mask]*Archetype
	nextID uint32
}

func newArchetypeStore(w *World) *archetypeStore {
	return &archetypeStore{
		world:  w,
		byMask: make(map[mask.Mask]*Archetype),
	}
}

// findOrCreate returns the existing archetype for the given sorted key
// or allocates and appends a new one.
func (s *archetypeStore) findOrCreate(key []ComponentID) (*Archetype, error) {
	sig := maskFor(key)
	if existing, ok := s.byMask[sig]; ok {
		return existing, nil
	}
	a := &Archetype{
		id:          s.nextID,
		key:         key,
		signature:   sig,
		columnIndex: make(map[ComponentID]int, len(key)),
		world:       s.world,
		addEdges:    make(map[ComponentID]*Archetype),
		removeEdges: make(map[ComponentID]*Archetype),
	}
	col := 0
	for _, id := range key {
		desc, err := s.world.components.layout(id)
		if err != nil {
			return nil, err
		}
		if !desc.isTag() {
			a.columnIndex[id] = col
			col++
		}
	}
	a.rowsPerChunk = computeRowsPerChunk(s.world, key)
	s.nextID++
	s.byList = append(s.byList, a)
	s.byMask[sig] = a
	return a, nil
}

func computeRowsPerChunk(w *World, key []ComponentID) int {
	rowBytes := 8 // sizeof(Entity)
	for _, id := range key {
		desc, err := w.components.layout(id)
		if err != nil {
			continue
		}
		rowBytes += desc.Size
	}
	if rowBytes <= 0 {
		rowBytes = 8
	}
	rows := w.config.TargetChunkBytes / rowBytes
	if rows < 1 {
		rows = 1
	}
	if rows > archetypeRowLimit {
		rows = archetypeRowLimit
	}
	return rows
}

// transitionAdd returns (and caches) the destination archetype for
// adding id to src.
func (s *archetypeStore) transitionAdd(src *Archetype, id ComponentID) (*Archetype, error) {
	if dst, ok := src.addEdges[id]; ok {
		return dst, nil
	}
	dst, err := s.findOrCreate(keyWithAdd(src.key, id))
	if err != nil {
		return nil, err
	}
	src.addEdges[id] = dst
	return dst, nil
}

// transitionRemove returns (and caches) the destination archetype for
// removing id from src.
func (s *archetypeStore) transitionRemove(src *Archetype, id ComponentID) (*Archetype, error) {
	if dst, ok := src.removeEdges[id]; ok {
		return dst, nil
	}
	dst, err := s.findOrCreate(keyWithRemove(src.key, id))
	if err != nil {
		return nil, err
	}
	src.removeEdges[id] = dst
	return dst, nil
}

func (s *archetypeStore) chunkCount() int {
	total := 0
	for _, a := range s.byList {
		total += len(a.chunks)
	}
	return total
}
