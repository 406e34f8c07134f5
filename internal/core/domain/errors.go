package domain

import (
	"fmt"
	"net/http"
)

// Kind is the machine-readable category of an API error.
type Kind string

const (
	KindInvalidToken   Kind = "InvalidToken"
	KindUnauthorized   Kind = "Unauthorized"
	KindValidation     Kind = "ValidationError"
	KindEntityNotFound Kind = "EntityNotFoundError"
	KindInternal       Kind = "InternalError"
)

// Status returns the HTTP status associated with the kind.
func (k Kind) Status() int {
	switch k {
	case KindInvalidToken, KindUnauthorized:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindEntityNotFound:
		return http.StatusNotFound
	default:
		return http.StatusServiceUnavailable
	}
}

// Error is a categorised failure that is rendered once at the request boundary.
type Error struct {
	Kind    Kind
	Message string
	Data    map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrValidation)
// holds for every validation failure regardless of message or data.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidToken   = &Error{Kind: KindInvalidToken, Message: "invalid token"}
	ErrUnauthorized   = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrValidation     = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrEntityNotFound = &Error{Kind: KindEntityNotFound, Message: "entity not found"}
	ErrInternal       = &Error{Kind: KindInternal, Message: "service temporarily unavailable"}
)

func InvalidToken(msg string) *Error {
	return &Error{Kind: KindInvalidToken, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Validation(msg string, data map[string]any) *Error {
	return &Error{Kind: KindValidation, Message: msg, Data: data}
}

func EntityNotFound(msg string, data map[string]any) *Error {
	return &Error{Kind: KindEntityNotFound, Message: msg, Data: data}
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: ErrInternal.Message, Err: err}
}
