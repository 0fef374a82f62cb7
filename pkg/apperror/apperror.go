// Package apperror is the error taxonomy shared by the application layer and
// the HTTP responder. Services construct typed failures; the transport maps
// them to status codes with StatusOf.
package apperror

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies a failure.
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindInvalidInput  Kind = "invalid_input"
	KindUnprocessable Kind = "unprocessable_entity"
)

// Error is a typed failure carrying a client-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Code returns a machine friendly code, e.g. "UNPROCESSABLE_ENTITY".
func (e *Error) Code() string {
	return strings.ToUpper(string(e.Kind))
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func InvalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

// Unprocessable wraps cause (may be nil) as an unprocessable-entity failure.
func Unprocessable(message string, cause error) *Error {
	return &Error{Kind: KindUnprocessable, Message: message, Err: cause}
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// StatusOf maps an error to the HTTP status used in the response.
// NotFound deliberately shares 422 with Unprocessable.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	ae, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case KindNotFound, KindUnprocessable:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	case KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
