package lattice

import "fmt"

// LatticeError is implemented by every typed error this package
// returns, mapping it back to the stable Status taxonomy of §7.
type LatticeError interface {
	error
	Status() Status
}

// InvalidArgumentError covers nil worlds/outputs, nil entities, invalid
// descriptors, a zero worker_count, a nil callback, and duplicate terms
// in a query descriptor.
type InvalidArgumentError struct {
	Reason string
}

func (e InvalidArgumentError) Error() string  { return fmt.Sprintf("invalid argument: %s", e.Reason) }
func (e InvalidArgumentError) Status() Status { return InvalidArgument }

// NotFoundError covers an unknown component id and removal of an
// absent component.
type NotFoundError struct {
	Reason string
}

func (e NotFoundError) Error() string  { return fmt.Sprintf("not found: %s", e.Reason) }
func (e NotFoundError) Status() Status { return NotFound }

// AlreadyExistsError covers a duplicate component name at registration
// and adding a component already present on the entity's archetype.
type AlreadyExistsError struct {
	Reason string
}

func (e AlreadyExistsError) Error() string  { return fmt.Sprintf("already exists: %s", e.Reason) }
func (e AlreadyExistsError) Status() Status { return AlreadyExists }

// CapacityReachedError covers u32 counters/capacities that would
// overflow.
type CapacityReachedError struct {
	Reason string
}

func (e CapacityReachedError) Error() string { return fmt.Sprintf("capacity reached: %s", e.Reason) }
func (e CapacityReachedError) Status() Status { return CapacityReached }

// AllocationFailedError covers an allocator returning nil.
type AllocationFailedError struct {
	Reason string
}

func (e AllocationFailedError) Error() string {
	return fmt.Sprintf("allocation failed: %s", e.Reason)
}
func (e AllocationFailedError) Status() Status { return AllocationFailed }

// StaleEntityError covers a handle whose generation or index no longer
// refers to a live slot.
type StaleEntityError struct {
	Entity Entity
}

func (e StaleEntityError) Error() string {
	return fmt.Sprintf("stale entity: index=%d generation=%d", e.Entity.Index(), e.Entity.Generation())
}
func (e StaleEntityError) Status() Status { return StaleEntity }

// ConflictError covers defer/flush nesting violations, parallel or
// schedule calls issued while deferring, with/without overlap in a
// query descriptor, and multi-world schedule entries.
type ConflictError struct {
	Reason string
}

func (e ConflictError) Error() string  { return fmt.Sprintf("conflict: %s", e.Reason) }
func (e ConflictError) Status() Status { return Conflict }

// statusOf extracts the Status from any error produced by this
// package, defaulting to InvalidArgument for foreign errors -- this
// should never be reached from inside the package itself.
func statusOf(err error) Status {
	if err == nil {
		return OK
	}
	if le, ok := err.(LatticeError); ok {
		return le.Status()
	}
	return InvalidArgument
}
