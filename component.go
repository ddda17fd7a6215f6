package lattice

import (
	"reflect"
	"unsafe"
)

// ComponentID is a small positive integer assigned densely at
// registration. Zero is reserved as invalid.
type ComponentID uint32

// ComponentFlags recognized at registration.
type ComponentFlags uint8

const (
	FlagNone ComponentFlags = 0
	// FlagTag marks a zero-size, presence-only component. Size must be 0.
	FlagTag ComponentFlags = 1 << (iota - 1)
	// FlagTriviallyRelocatable allows the structural engine to move the
	// component with a raw byte copy instead of calling Move.
	FlagTriviallyRelocatable
)

// CtorFunc initializes a freshly allocated row's storage for this
// component. dst points at Size bytes of zeroed, addressable column
// storage.
type CtorFunc func(dst unsafe.Pointer)

// DtorFunc releases any resources owned by a component value before
// its row is discarded.
type DtorFunc func(ptr unsafe.Pointer)

// MoveFunc relocates a component value from src to dst, both pointing
// at Size bytes of column storage, and leaves src in a state where
// Dtor (if any) is a no-op-safe call (or is simply never invoked on
// the stale source by the caller).
type MoveFunc func(dst, src unsafe.Pointer)

// ComponentDescriptor is the registration input for a component type.
type ComponentDescriptor struct {
	Name  string
	Size  int // bytes; 0 for a tag
	Align int // power of two; 0 or 1 for a tag
	Flags ComponentFlags
	Ctor  CtorFunc
	Dtor  DtorFunc
	Move  MoveFunc
}

func (d ComponentDescriptor) isTag() bool { return d.Flags&FlagTag != 0 }

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

func (d ComponentDescriptor) validate() error {
	if d.Name == "" {
		return InvalidArgumentError{Reason: "component name must be non-empty"}
	}
	if d.isTag() {
		if d.Size != 0 {
			return InvalidArgumentError{Reason: "tag component must have size 0"}
		}
		if d.Align != 0 && d.Align != 1 {
			return InvalidArgumentError{Reason: "tag component must have align 0 or 1"}
		}
		return nil
	}
	if d.Size <= 0 {
		return InvalidArgumentError{Reason: "non-tag component must have size > 0"}
	}
	if !isPowerOfTwo(d.Align) {
		return InvalidArgumentError{Reason: "non-tag component must have a power-of-two align"}
	}
	return nil
}

// componentEntry is the registry's per-id bookkeeping.
type componentEntry struct {
	desc ComponentDescriptor
}

// componentRegistry is the name-keyed table of per-type layout and
// lifecycle hooks, §4.3.
type componentRegistry struct {
	byName  map[string]ComponentID
	entries []componentEntry // index 0 unused; ids start at 1
}

func newComponentRegistry(initialCapacity int) *componentRegistry {
	return &componentRegistry{
		byName:  make(map[string]ComponentID, initialCapacity),
		entries: make([]componentEntry, 1, initialCapacity+1),
	}
}

func (r *componentRegistry) reserve(n int) error {
	if cap(r.entries) >= n+1 {
		return nil
	}
	if n > maxSlotCapacity-1 {
		return CapacityReachedError{Reason: "component id capacity would exceed uint32 range"}
	}
	grown := make([]componentEntry, len(r.entries), n+1)
	copy(grown, r.entries)
	r.entries = grown
	return nil
}

func (r *componentRegistry) register(desc ComponentDescriptor) (ComponentID, error) {
	if err := desc.validate(); err != nil {
		return 0, err
	}
	if _, exists := r.byName[desc.Name]; exists {
		return 0, AlreadyExistsError{Reason: "component name already registered: " + desc.Name}
	}
	id := ComponentID(len(r.entries))
	r.entries = append(r.entries, componentEntry{desc: desc})
	r.byName[desc.Name] = id
	return id, nil
}

func (r *componentRegistry) findByName(name string) (ComponentID, error) {
	id, ok := r.byName[name]
	if !ok {
		return 0, NotFoundError{Reason: "unknown component name: " + name}
	}
	return id, nil
}

func (r *componentRegistry) layout(id ComponentID) (ComponentDescriptor, error) {
	if id == 0 || int(id) >= len(r.entries) {
		return ComponentDescriptor{}, NotFoundError{Reason: "unknown component id"}
	}
	return r.entries[id].desc, nil
}

func (r *componentRegistry) name(id ComponentID) (string, error) {
	desc, err := r.layout(id)
	if err != nil {
		return "", err
	}
	return desc.Name, nil
}

func (r *componentRegistry) count() int { return len(r.entries) - 1 }

// ---- generic sugar over the raw size/align/hook registry ----

// Column is a typed handle to a registered component, giving host code
// a type-safe way to read/write a component's value from a View or an
// Entity without manual unsafe.Pointer arithmetic. It is the
// typed-slice wrapper spec §9's design notes call for, grounded on
// warehouse/factory.go's AccessibleComponent[T] idiom.
type Column[T any] struct {
	id ComponentID
}

// ID returns the underlying ComponentID.
func (c Column[T]) ID() ComponentID { return c.id }

// RegisterType registers a component using a Go type's natural size
// and alignment, with Ctor/Dtor no-ops and Move implemented as a typed
// assignment (safe under Go's GC, since the backing array is ordinary
// Go-heap memory).
func RegisterType[T any](w *World, name string) (Column[T], error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	align := int(reflect.TypeOf(zero).Align())
	flags := FlagNone
	if size == 0 {
		flags = FlagTag
		align = 0
	}
	move := MoveFunc(func(dst, src unsafe.Pointer) {
		*(*T)(dst) = *(*T)(src)
	})
	id, err := w.RegisterComponent(ComponentDescriptor{
		Name:  name,
		Size:  size,
		Align: align,
		Flags: flags,
		Move:  move,
	})
	if err != nil {
		return Column[T]{}, err
	}
	return Column[T]{id: id}, nil
}

// Get returns a pointer into the chunk's column for the given row. The
// pointer is valid only until the next structural mutation of the
// owning archetype.
func (c Column[T]) Get(v View, row int) *T {
	ptr := v.componentPtr(c.id, row)
	if ptr == nil {
		return nil
	}
	return (*T)(ptr)
}

// GetEntity returns a pointer to this component's value on the given
// entity, or nil for a tag component. It fails NotFound if the entity
// does not carry the component.
func (c Column[T]) GetEntity(w *World, e Entity) (*T, error) {
	ptr, err := w.getComponent(e, c.id)
	if err != nil {
		return nil, err
	}
	if ptr == nil {
		return nil, nil
	}
	return (*T)(ptr), nil
}

// Set returns a function that writes value into the component storage
// its argument points at. AddComponent takes raw bytes, not this
// function.
func (c Column[T]) Set(value T) func(unsafe.Pointer) {
	return func(dst unsafe.Pointer) {
		*(*T)(dst) = value
	}
}
