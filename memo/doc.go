// Package memo memoizes callables.
//
// Memoize inspects a callable's declared parameter list once, selects the
// cheapest key strategy that is correct for that shape and the caller's
// options, and returns a wrapper that caches results in a cache.Store.
// Zero- and one-parameter functions on the default store take fast paths
// that skip composite key construction; functions with defaults or named
// parameters key on positional values plus a name-sorted set of named
// values; unhashable arguments fall back to a canonical encoding.
//
// Wrap applies the same machinery to plain Go functions and returns a
// function of the original type.
package memo
