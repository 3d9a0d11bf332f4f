package quizerr

import (
	"fmt"
)

// ErrNotFound indicates a required backing resource (question bank, file)
// does not exist.
type ErrNotFound struct {
	What string
	Path string
	Err  error
}

func (e *ErrNotFound) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s not found at %s", e.What, e.Path)
	}
	return fmt.Sprintf("%s not found", e.What)
}

func (e *ErrNotFound) Unwrap() error { return e.Err }

// ErrInvalidState indicates an operation was attempted in a session state
// that does not allow it.
type ErrInvalidState struct {
	Op    string
	State string
	// Reason is optional extra context, e.g. "question already answered".
	Reason string
}

func (e *ErrInvalidState) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid state: cannot %s while %s: %s", e.Op, e.State, e.Reason)
	}
	return fmt.Sprintf("invalid state: cannot %s while %s", e.Op, e.State)
}

// ErrMalformedRecord describes a single unreadable row or entry. Readers skip
// it and keep going.
type ErrMalformedRecord struct {
	Source string
	Line   int
	Err    error
}

func (e *ErrMalformedRecord) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed record in %s line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("malformed record in %s: %v", e.Source, e.Err)
}

func (e *ErrMalformedRecord) Unwrap() error { return e.Err }

// ErrPersistence indicates a write to one sink failed. It is a warning: the
// computed session result is still valid.
type ErrPersistence struct {
	Sink string
	Err  error
}

func (e *ErrPersistence) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Sink, e.Err)
}

func (e *ErrPersistence) Unwrap() error { return e.Err }
