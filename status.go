package lattice

// Status is the stable result code returned by every fallible core
// operation. Output parameters are only written when Status is OK.
type Status int

const (
	OK Status = iota
	InvalidArgument
	NotFound
	AlreadyExists
	CapacityReached
	AllocationFailed
	StaleEntity
	Conflict
	NotImplemented
)

var statusNames = [...]string{
	OK:               "OK",
	InvalidArgument:  "INVALID_ARGUMENT",
	NotFound:         "NOT_FOUND",
	AlreadyExists:    "ALREADY_EXISTS",
	CapacityReached:  "CAPACITY_REACHED",
	AllocationFailed: "ALLOCATION_FAILED",
	StaleEntity:      "STALE_ENTITY",
	Conflict:         "CONFLICT",
	NotImplemented:   "NOT_IMPLEMENTED",
}

// String returns the stable human-readable name for the status.
func (s Status) String() string {
	if int(s) < 0 || int(s) >= len(statusNames) {
		return "UNKNOWN_STATUS"
	}
	return statusNames[s]
}
