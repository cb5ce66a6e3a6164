// Package rtcerr implements the flat error taxonomy shared by all rtcpeer
// operations. Errors are returned synchronously from the call that detects
// them; asynchronous operations report them through completion callbacks.
// None of them are retried automatically.
package rtcerr

import (
	"fmt"
)

// InvalidParameterError indicates a malformed argument, such as a transceiver
// name that is not a valid SDP token, or a required value that is missing.
type InvalidParameterError struct {
	Err error
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *InvalidParameterError) Unwrap() error { return e.Err }

// InvalidOperationError indicates an operation that is not legal in the
// object's current state, such as associating a track of the wrong media kind
// or mutating a closed connection.
type InvalidOperationError struct {
	Err error
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid operation: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *InvalidOperationError) Unwrap() error { return e.Err }

// InvalidHandleError indicates a stale or unknown object handle, for example
// a nil transceiver or a remote track whose last reference was released.
type InvalidHandleError struct {
	Err error
}

func (e *InvalidHandleError) Error() string {
	return fmt.Sprintf("invalid native handle: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *InvalidHandleError) Unwrap() error { return e.Err }

// NotFoundError indicates a lookup failure.
type NotFoundError struct {
	Err error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NotFoundError) Unwrap() error { return e.Err }

// WrongThreadError indicates a platform thread-affinity violation.
type WrongThreadError struct {
	Err error
}

func (e *WrongThreadError) Error() string {
	return fmt.Sprintf("wrong thread: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *WrongThreadError) Unwrap() error { return e.Err }

// OutOfRangeError indicates an index outside the valid range, such as a
// media-line index with no registered transceiver.
type OutOfRangeError struct {
	Err error
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("out of range: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *OutOfRangeError) Unwrap() error { return e.Err }
