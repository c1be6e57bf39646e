package signature

import (
	"errors"
	"fmt"
)

// Sentinel errors for signature operations.
var (
	// ErrArgument is matched by every ArgumentError.
	ErrArgument = errors.New("signature: invalid call arguments")

	// ErrInvalidSignature indicates a malformed parameter list.
	ErrInvalidSignature = errors.New("signature: invalid parameter list")

	// ErrNotFunc indicates FromFunc was given something other than a function.
	ErrNotFunc = errors.New("signature: value is not a function")

	// ErrNilBody indicates New was given a nil body.
	ErrNilBody = errors.New("signature: body is nil")

	// ErrNilCallable indicates Preserve was given a nil callable or call function.
	ErrNilCallable = errors.New("signature: callable is nil")
)

// ArgumentError reports a call whose arguments do not fit a declared
// parameter list. errors.Is(err, ErrArgument) holds for every ArgumentError;
// Err, when set, is also reachable through errors.Is/As.
type ArgumentError struct {
	Func   string
	Reason string
	Err    error
}

// Argf builds an ArgumentError for the named callable.
func Argf(fn, format string, args ...any) *ArgumentError {
	return &ArgumentError{Func: fn, Reason: fmt.Sprintf(format, args...)}
}

func (e *ArgumentError) Error() string {
	name := e.Func
	if name == "" {
		name = "<callable>"
	}
	return fmt.Sprintf("signature: %s(): %s", name, e.Reason)
}

func (e *ArgumentError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrArgument, e.Err}
	}
	return []error{ErrArgument}
}
