/*
Package lattice is an embeddable archetype-based entity-component
runtime. Entities are generational handles into a slot table;
components are registered at runtime by name and raw size/alignment
and stored column-major in fixed-capacity chunks, one chunk list per
archetype.

Core Concepts:

  - Entity: a generational handle returned by CreateEntity.
  - Component: a raw byte layout registered with RegisterComponent, or
    a Go type registered with RegisterType for typed access.
  - Archetype: the set of components attached to a group of entities;
    entities move between archetypes when components are added or
    removed.
  - Query: a with-set/without-set filter matched against archetypes.

Basic Usage:

	w, _ := lattice.NewWorld()
	position, _ := lattice.RegisterType[Position](w, "position")
	velocity, _ := lattice.RegisterType[Velocity](w, "velocity")

	e, _ := w.CreateEntity()
	w.AddComponent(e, position.ID(), nil)
	w.AddComponent(e, velocity.ID(), nil)

	q, _ := w.NewQuery(lattice.QueryDescriptor{
		With: []lattice.Term{
			{Component: position.ID(), Access: lattice.Write},
			{Component: velocity.ID(), Access: lattice.Read},
		},
	})

	it := q.IterBegin()
	for view, ok := it.Next(); ok; view, ok = it.Next() {
		for row := 0; row < view.Count; row++ {
			pos := position.Get(view, row)
			vel := velocity.Get(view, row)
			pos.X += vel.X
			pos.Y += vel.Y
		}
	}

Structural mutations (AddComponent, RemoveComponent, DestroyEntity)
may be deferred inside a BeginDefer/EndDefer region and replayed in
enqueue order by Flush, so callbacks iterating a query can queue
mutations without invalidating the iteration they're inside.
*/
package lattice
