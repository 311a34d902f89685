package bigtable

import (
	"errors"
	"fmt"
)

var (
	// ErrCredential indicates the token source could not produce a usable
	// token; the call was aborted before any network I/O.
	ErrCredential = errors.New("credential failure")
	// ErrTransport indicates channel construction or TLS setup failed.
	ErrTransport = errors.New("transport failure")
	// ErrTimeout indicates the overall streaming exchange exceeded the
	// configured bound. Nothing is returned, including completed rows.
	ErrTimeout = errors.New("read timed out")
	// ErrRowNotFound indicates a single-row read matched nothing.
	ErrRowNotFound = errors.New("row not found")

	// ErrObjectNotFound and ErrObjectCorrupt are reserved for callers that
	// interpret decoded rows as structured objects. The decoder itself
	// never raises them.
	ErrObjectNotFound = errors.New("object not found")
	ErrObjectCorrupt  = errors.New("object is corrupt")
)

// Error wraps a sentinel error with additional context
type Error struct {
	Err     error  // The underlying sentinel error
	Context string // Additional error context
}

// Error satisfies the error interface
func (e *Error) Error() string {
	if e.Context == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Context)
}

// Unwrap implements the errors.Unwrap interface for compatibility with errors.Is/As
func (e *Error) Unwrap() error {
	return e.Err
}

// newError creates a new client error with context
func newError(err error, format string, args ...interface{}) *Error {
	return &Error{
		Err:     err,
		Context: fmt.Sprintf(format, args...),
	}
}
