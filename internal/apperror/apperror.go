// Package apperror defines the request error taxonomy shared by all services.
// Services return these errors; HTTP handlers map them to status codes.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies a request failure.
type Kind int

const (
	// KindInternal is any failure not covered by the taxonomy (DB errors etc.).
	KindInternal Kind = iota
	// KindUnauthenticated means the token is missing, malformed, or expired.
	KindUnauthenticated
	// KindForbidden means the caller is authenticated but lacks the role or ownership.
	KindForbidden
	// KindNotFound means the entity is absent or outside the caller's visibility.
	KindNotFound
	// KindValidation means malformed input or an invariant violation.
	KindValidation
	// KindConflict means a uniqueness conflict (e.g. duplicate registration).
	KindConflict
)

// Error is a classified request error.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Unauthenticated returns a KindUnauthenticated error.
func Unauthenticated(msg string) *Error { return &Error{Kind: KindUnauthenticated, Message: msg} }

// Forbidden returns a KindForbidden error.
func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

// NotFound returns a KindNotFound error.
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

// Validation returns a KindValidation error.
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

// Conflict returns a KindConflict error.
func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

// KindOf returns the kind of err, or KindInternal if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps err to the HTTP status code of its kind.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
