// Package cache provides the stores that back memoized functions.
//
// It defines the Store contract, a default unbounded in-memory Map with a
// fused compute-on-miss primitive, caller-supplied stores (Bounded, Sharded,
// Redis), Guarded for remote stores that may go away, and Encode, the
// deterministic encoding used for keys that cannot be compared directly.
package cache
