package cache

import (
	"context"
	"errors"
)

// Sentinel errors for cache operations.
var (
	ErrNilStore        = errors.New("cache: store is nil")
	ErrNilClient       = errors.New("cache: client is nil")
	ErrInvalidCapacity = errors.New("cache: capacity must be positive")
	ErrUnencodable     = errors.New("cache: value cannot be encoded")
	ErrCyclicValue     = errors.New("cache: value contains a cycle")
)

// Store is the backing mapping for memoized results.
//
// Contract:
// - Concurrency: the built-in stores are safe for concurrent use; a
// caller-supplied store chooses its own discipline.
// - Context: methods should honor cancellation/deadlines where applicable.
// - Errors: Get never errors; it returns (nil, false) on miss. Set may fail,
// and a Get right after a Set may still miss (bounded stores evict).
// - Keys: keys are produced by a single key strategy per memoized function
// and are comparable unless the store documents otherwise.
type Store interface {
	// Get retrieves a stored value. Returns (nil, false) on miss.
	Get(ctx context.Context, key any) (any, bool)

	// Set stores value under key.
	Set(ctx context.Context, key any, value any) error
}

// Lener is implemented by stores that can report how many entries they hold.
type Lener interface {
	Len() int
}

// Raw is a stored value returned in encoded (JSON) form. Stores that cannot
// keep Go values, such as Redis, return Raw from Get; the reader decodes it.
type Raw []byte
