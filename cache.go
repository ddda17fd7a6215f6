package lattice

import "fmt"

// SimpleCache is a name-keyed, append-only cache with a fixed maximum
// capacity, kept close to warehouse/cache.go's shape and retargeted
// here to cache named Query instances so a host can look a
// frequently-used query back up by name instead of rebuilding its
// descriptor every frame.
type SimpleCache[T any] struct {
	items       []T
	itemIndices map[string]int
	maxCapacity int
}

// NewSimpleCache creates a cache bounded to cap entries.
func NewSimpleCache[T any](cap int) *SimpleCache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: cap,
	}
}

// GetIndex returns the slot index registered under key, if any.
func (c *SimpleCache[T]) GetIndex(key string) (int, bool) {
	index, ok := c.itemIndices[key]
	return index, ok
}

// GetItem returns a pointer to the item at index.
func (c *SimpleCache[T]) GetItem(index int) *T {
	return &c.items[index]
}

// Get looks an item up directly by key.
func (c *SimpleCache[T]) Get(key string) (*T, bool) {
	idx, ok := c.itemIndices[key]
	if !ok {
		return nil, false
	}
	return &c.items[idx], true
}

// Register appends item under key, failing once the cache is full.
func (c *SimpleCache[T]) Register(key string, item T) (int, error) {
	if _, exists := c.itemIndices[key]; exists {
		return -1, AlreadyExistsError{Reason: fmt.Sprintf("cache key already registered: %s", key)}
	}
	if len(c.itemIndices) >= c.maxCapacity {
		return -1, CapacityReachedError{Reason: fmt.Sprintf("cache at maximum capacity (%d)", c.maxCapacity)}
	}
	idx := len(c.items)
	c.itemIndices[key] = idx
	c.items = append(c.items, item)
	return idx, nil
}

// Clear empties the cache.
func (c *SimpleCache[T]) Clear() {
	c.items = nil
	c.itemIndices = make(map[string]int)
}
