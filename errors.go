package posixrt

import (
	"errors"
)

var (
	// ErrInvalidHandler is returned when a handler is neither a callback nor
	// one of the pseudo handlers.
	ErrInvalidHandler = errors.New("handler must be a callback or one of ignore, cdefault, default")
	// ErrInvalidHow is returned for an unknown masking method.
	ErrInvalidHow = errors.New("invalid masking method")
	// ErrInvalidInit is returned for an unknown signal set initializer.
	ErrInvalidInit = errors.New("invalid sigset initializer")
	// ErrClosed is returned by operations on a closed Bridge.
	ErrClosed = errors.New("bridge is closed")
)

// OSError is a failed system call. Its text is the platform's description
// of the error.
type OSError struct {
	Op  string
	Err error
}

func (e *OSError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *OSError) Unwrap() error {
	return e.Err
}
