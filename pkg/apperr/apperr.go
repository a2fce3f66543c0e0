package apperr

import (
	"errors"
	"net/http"
)

// Error is a domain error carrying the HTTP status it should surface as.
// Services return these; the handler layer maps them once.
type Error struct {
	Status  int
	Message string
	Details any
}

func (e *Error) Error() string { return e.Message }

func New(status int, msg string) *Error {
	return &Error{Status: status, Message: msg}
}

func BadRequest(msg string) *Error   { return New(http.StatusBadRequest, msg) }
func Unauthorized(msg string) *Error { return New(http.StatusUnauthorized, msg) }
func Forbidden(msg string) *Error    { return New(http.StatusForbidden, msg) }
func NotFound(msg string) *Error     { return New(http.StatusNotFound, msg) }
func Conflict(msg string) *Error     { return New(http.StatusConflict, msg) }
func Internal(msg string) *Error     { return New(http.StatusInternalServerError, msg) }

// Validation builds a 422 carrying field-level details.
func Validation(details any) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Message: "validation failed", Details: details}
}

// From extracts an *Error from err, or nil if err is not a domain error.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// IsNotFound reports whether err is a domain NotFound error.
func IsNotFound(err error) bool {
	e := From(err)
	return e != nil && e.Status == http.StatusNotFound
}

// StatusOf returns the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	if e := From(err); e != nil {
		return e.Status
	}
	return http.StatusInternalServerError
}
