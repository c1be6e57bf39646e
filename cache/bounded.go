package cache

import (
	"context"
	"slices"
	"sync"
)

// Bounded is an in-memory store holding at most a fixed number of entries.
// Inserting a new key at capacity evicts the oldest inserted entry.
type Bounded struct {
	mu       sync.Mutex
	entries  map[any]any
	order    []any // insertion order, oldest first
	capacity int
}

// NewBounded creates a Bounded store with the given capacity.
func NewBounded(capacity int) (*Bounded, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Bounded{
		entries:  make(map[any]any, capacity),
		order:    make([]any, 0, capacity),
		capacity: capacity,
	}, nil
}

// Get retrieves a value. Returns (nil, false) on miss or after eviction.
func (b *Bounded) Get(_ context.Context, key any) (any, bool) {
	b.mu.Lock()
	v, ok := b.entries[key]
	b.mu.Unlock()
	return v, ok
}

// Set stores a value, evicting the oldest entry if key is new and the store is full.
// Overwriting an existing key neither evicts nor changes its position.
func (b *Bounded) Set(_ context.Context, key any, value any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.entries[key]; ok {
		b.entries[key] = value
		return nil
	}

	if len(b.entries) >= b.capacity {
		oldest := b.order[0]
		b.order = b.order[1:]
		delete(b.entries, oldest)
	}

	b.entries[key] = value
	b.order = append(b.order, key)
	return nil
}

// Delete removes a value. Idempotent - no error on miss.
func (b *Bounded) Delete(_ context.Context, key any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.entries[key]; !ok {
		return nil
	}
	delete(b.entries, key)
	if i := slices.Index(b.order, key); i >= 0 {
		b.order = slices.Delete(b.order, i, i+1)
	}
	return nil
}

// Len returns the number of live entries.
func (b *Bounded) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Cap returns the configured capacity.
func (b *Bounded) Cap() int {
	return b.capacity
}

// Clear removes every entry.
func (b *Bounded) Clear() {
	b.mu.Lock()
	clear(b.entries)
	b.order = b.order[:0]
	b.mu.Unlock()
}

// Ensure Bounded implements Store
var _ Store = (*Bounded)(nil)
