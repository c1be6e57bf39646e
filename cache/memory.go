package cache

import (
	"context"
	"sync"
)

// Map is the default in-memory store: an unbounded map guarded by a RWMutex.
// Keys must be comparable.
type Map struct {
	mu      sync.RWMutex
	entries map[any]any
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{entries: make(map[any]any)}
}

// Get retrieves a value. Returns (nil, false) on miss.
func (m *Map) Get(_ context.Context, key any) (any, bool) {
	m.mu.RLock()
	v, ok := m.entries[key]
	m.mu.RUnlock()
	return v, ok
}

// Set stores a value. It never fails.
func (m *Map) Set(_ context.Context, key any, value any) error {
	m.mu.Lock()
	m.entries[key] = value
	m.mu.Unlock()
	return nil
}

// Fetch returns the value stored under key, computing and storing it on a
// miss. A compute error is returned and nothing is stored.
//
// The lock is not held while compute runs, so compute may itself call Fetch
// (recursive memoization). Concurrent misses for one key may each compute;
// the last store wins.
func (m *Map) Fetch(key any, compute func() (any, error)) (any, error) {
	m.mu.RLock()
	v, ok := m.entries[key]
	m.mu.RUnlock()
	if ok {
		return v, nil
	}

	v, err := compute()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.entries[key] = v
	m.mu.Unlock()
	return v, nil
}

// Delete removes a value. Idempotent - no error on miss.
func (m *Map) Delete(_ context.Context, key any) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Clear removes every entry.
func (m *Map) Clear() {
	m.mu.Lock()
	clear(m.entries)
	m.mu.Unlock()
}

// Ensure Map implements Store
var _ Store = (*Map)(nil)
