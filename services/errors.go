package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies workflow failures so controllers can map them to
// HTTP statuses in one place.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalid
	KindForbidden
	KindNotFound
	KindConflict
	KindInvalidTransition
)

// WorkflowError carries a taxonomy kind and a human-readable reason.
type WorkflowError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *WorkflowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, format string, args ...interface{}) error {
	return &WorkflowError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func ErrInvalid(format string, args ...interface{}) error {
	return newError(KindInvalid, format, args...)
}

func ErrForbidden(format string, args ...interface{}) error {
	return newError(KindForbidden, format, args...)
}

func ErrNotFound(format string, args ...interface{}) error {
	return newError(KindNotFound, format, args...)
}

func ErrConflict(format string, args ...interface{}) error {
	return newError(KindConflict, format, args...)
}

func ErrInvalidTransition(format string, args ...interface{}) error {
	return newError(KindInvalidTransition, format, args...)
}

// ErrInternal wraps an unexpected store failure. The original error is
// kept for logs; controllers never expose it in production responses.
func ErrInternal(err error, format string, args ...interface{}) error {
	return &WorkflowError{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the taxonomy kind, defaulting to KindInternal for
// errors produced outside the workflow services.
func KindOf(err error) ErrorKind {
	var werr *WorkflowError
	if errors.As(err, &werr) {
		return werr.Kind
	}
	return KindInternal
}
