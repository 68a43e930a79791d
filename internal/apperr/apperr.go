// Package apperr defines the error taxonomy surfaced to API callers.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindNotAuthorized
	KindAlreadyExists
	KindValidationFailed
	KindNotAuthenticated
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindNotAuthorized:
		return "not_authorized"
	case KindAlreadyExists:
		return "already_exists"
	case KindValidationFailed:
		return "validation_failed"
	case KindNotAuthenticated:
		return "not_authenticated"
	default:
		return "internal"
	}
}

// Error is an application error with a stable code and a message that is
// safe to show to the user.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message)
}

func NotAuthorized(code, message string) *Error {
	return New(KindNotAuthorized, code, message)
}

func AlreadyExists(code, message string) *Error {
	return New(KindAlreadyExists, code, message)
}

func Validation(code, message string) *Error {
	return New(KindValidationFailed, code, message)
}

func NotAuthenticated(code, message string) *Error {
	return New(KindNotAuthenticated, code, message)
}

// Internal wraps an unexpected failure. The cause is kept for logging but the
// message never reaches the client.
func Internal(message string, err error) *Error {
	return Wrap(KindInternal, "INTERNAL", message, err)
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// CodeOf reports the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindNotAuthorized:
		return http.StatusForbidden
	case KindAlreadyExists:
		return http.StatusConflict
	case KindValidationFailed:
		return http.StatusBadRequest
	case KindNotAuthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message to show the client. Internal errors are
// replaced with a generic message.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "Internal server error"
}
