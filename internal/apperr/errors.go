// Package apperr defines the error kinds surfaced to API callers. Services
// return *Error values; handlers map the kind to a status code.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindForbidden         Kind = "forbidden"
	KindUnauthenticated   Kind = "unauthenticated"
	KindInvalidState      Kind = "invalid_state"
	KindInvalidTransition Kind = "invalid_transition"
	KindPayloadMismatch   Kind = "payload_mismatch"
	KindValidation        Kind = "validation"
)

type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func NotFound(format string, args ...any) *Error { return New(KindNotFound, format, args...) }
func Conflict(format string, args ...any) *Error { return New(KindConflict, format, args...) }
func Forbidden(format string, args ...any) *Error { return New(KindForbidden, format, args...) }
func Unauthenticated(format string, args ...any) *Error {
	return New(KindUnauthenticated, format, args...)
}
func InvalidState(format string, args ...any) *Error { return New(KindInvalidState, format, args...) }
func InvalidTransition(format string, args ...any) *Error {
	return New(KindInvalidTransition, format, args...)
}
func PayloadMismatch(format string, args ...any) *Error {
	return New(KindPayloadMismatch, format, args...)
}

// Validation carries per-field messages from the struct validator.
func Validation(fields map[string]string, format string, args ...any) *Error {
	e := New(KindValidation, format, args...)
	e.Fields = fields
	return e
}

// KindOf returns the kind of the first *Error in err's chain, or "" when the
// error is not an application error.
func KindOf(err error) Kind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
