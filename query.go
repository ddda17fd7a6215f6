// Package lattice provides query mechanisms for component-based entity systems.
package lattice

import "github.com/TheBitDrifter/mask"

// Access marks how a query's with-term intends to touch a component --
// used only by the scheduler's conflict analysis (§4.11); the query
// planner itself treats READ and WRITE identically when matching
// archetypes.
type Access int

const (
	Read Access = iota
	Write
)

// Term is one with-set entry: a component id plus its declared access.
type Term struct {
	Component ComponentID
	Access    Access
}

// QueryDescriptor is the filter a Query compiles: every with-term must
// be present on a matching archetype and no without-id may be, §4.8.
// The order of With affects no View: a View exposes no column list.
type QueryDescriptor struct {
	With    []Term
	Without []ComponentID
}

// Query owns a copy of its filter and the array of matched archetypes,
// refreshed on every IterBegin/Execute. Bound to one World for its
// lifetime.
type Query struct {
	world   *World
	with    []Term
	without []ComponentID
	matches []*Archetype
}

// NewQuery validates desc (every id registered, with/without disjoint,
// no duplicates) and performs the initial archetype scan, §4.8.
func (w *World) NewQuery(desc QueryDescriptor) (*Query, error) {
	if err := validateDescriptor(w, desc); err != nil {
		return nil, err
	}
	q := &Query{
		world:   w,
		with:    append([]Term(nil), desc.With...),
		without: append([]ComponentID(nil), desc.Without...),
	}
	q.Refresh()
	return q, nil
}

func validateDescriptor(w *World, desc QueryDescriptor) error {
	seen := make(map[ComponentID]bool, len(desc.With))
	withoutSet := make(map[ComponentID]bool, len(desc.Without))
	for _, id := range desc.Without {
		if _, err := w.components.layout(id); err != nil {
			return NotFoundError{Reason: "query without-term references unregistered component"}
		}
		if withoutSet[id] {
			return InvalidArgumentError{Reason: "duplicate without-term"}
		}
		withoutSet[id] = true
	}
	for _, t := range desc.With {
		if _, err := w.components.layout(t.Component); err != nil {
			return NotFoundError{Reason: "query with-term references unregistered component"}
		}
		if seen[t.Component] {
			return InvalidArgumentError{Reason: "duplicate with-term"}
		}
		seen[t.Component] = true
		if withoutSet[t.Component] {
			return ConflictError{Reason: "with-set and without-set overlap"}
		}
	}
	return nil
}

// withMask/withoutMask compute the bitset form of the filter lazily,
// matched against an archetype's signature with ContainsAll/
// ContainsNone.
func (q *Query) withMask() mask.Mask {
	var m mask.Mask
	for _, t := range q.with {
		m.Mark(uint32(t.Component))
	}
	return m
}

func (q *Query) withoutMask() mask.Mask {
	var m mask.Mask
	for _, id := range q.without {
		m.Mark(uint32(id))
	}
	return m
}

func (a *Archetype) matches(withM, withoutM mask.Mask) bool {
	if !a.signature.ContainsAll(withM) {
		return false
	}
	return a.signature.ContainsNone(withoutM)
}

// Refresh rescans all archetypes; implicitly called at the start of
// every iteration or schedule execution so structural changes between
// frames are picked up.
func (q *Query) Refresh() {
	withM := q.withMask()
	withoutM := q.withoutMask()
	matches := make([]*Archetype, 0, len(q.world.archetypes.byList))
	for _, a := range q.world.archetypes.byList {
		if a.matches(withM, withoutM) {
			matches = append(matches, a)
		}
	}
	q.matches = matches
}
