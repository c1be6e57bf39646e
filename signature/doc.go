// Package signature describes callables by their declared parameter lists.
//
// A Signature is an ordered list of named positional parameters, some of which
// may carry defaults, optionally followed by a variadic positional collector
// (*args) and a variadic named collector (**kwargs). Its Shape is the summary
// used to pick a memoization strategy.
//
// Calls carry Args: positional values plus named values. Bind maps Args onto a
// Signature the way a dynamic language would, rejecting surplus, duplicate,
// unknown or missing arguments with an ArgumentError.
//
// Callables can be declared directly (New, Parse) or derived from plain Go
// functions (FromFunc). Preserve produces a Callable that exposes another
// Callable's declared parameter list while delegating execution elsewhere.
package signature
