package memo

import "errors"

// Sentinel errors for memoization.
var (
	// ErrConfiguration indicates options that cannot produce a wrapper.
	ErrConfiguration = errors.New("memo: invalid configuration")

	// ErrPreserverUnavailable indicates signature preservation was requested
	// without a preserver. It is always reported wrapped in ErrConfiguration.
	ErrPreserverUnavailable = errors.New("memo: signature preservation is unavailable")

	// ErrNilCallable indicates Memoize was given a nil callable.
	ErrNilCallable = errors.New("memo: callable is nil")

	// ErrUnhashable indicates an argument cannot be used in a comparable key.
	// It is reported inside a *signature.ArgumentError.
	ErrUnhashable = errors.New("memo: argument is not hashable")
)
