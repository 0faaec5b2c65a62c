// Package apperr classifies domain failures so the HTTP layer can map them
// onto status codes without knowing which service produced them.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a failure category surfaced to API callers as the "error" code.
type Kind string

const (
	Validation         Kind = "VALIDATION"
	NotFound           Kind = "NOT_FOUND"
	Forbidden          Kind = "FORBIDDEN"
	Conflict           Kind = "CONFLICT"
	StateError         Kind = "STATE_ERROR"
	PreconditionFailed Kind = "PRECONDITION_FAILED"
	Internal           Kind = "INTERNAL"
)

// Error carries a Kind, a machine readable code and a human message.  Code
// defaults to the Kind when empty.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	// Status overrides the default HTTP status for Kind when non-zero.
	Status int
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.code()
	}
	return fmt.Sprintf("%s: %s", e.code(), e.Message)
}

func (e *Error) code() string {
	if e.Code != "" {
		return e.Code
	}
	return string(e.Kind)
}

// Is matches two *Error values by Kind and Code so sentinels declared with
// New can be compared with errors.Is after wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.code() == t.code()
}

// New declares a sentinel error.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// WithStatus declares a sentinel error with an explicit HTTP status.
func WithStatus(kind Kind, code, message string, status int) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Status: status}
}

// Invalid builds a one-off validation error.
func Invalid(message string) *Error {
	return &Error{Kind: Validation, Message: message}
}

// As extracts the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// HTTPStatus returns the response status for err.  Unclassified errors are
// internal failures.
func HTTPStatus(err error) int {
	e, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case Validation, StateError:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	case Conflict:
		return http.StatusConflict
	case PreconditionFailed:
		return http.StatusPreconditionFailed
	}
	return http.StatusInternalServerError
}
