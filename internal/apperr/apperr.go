// Package apperr defines the error taxonomy shared by the services and the
// HTTP layer. Every kind maps to exactly one HTTP status code.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBadRequest
	KindConflict
	KindAuth
	KindNotFound
	KindProcessing
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ", " + e.Err.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error { return &Error{Kind: KindValidation, Message: msg} }
func BadRequest(msg string) error { return &Error{Kind: KindBadRequest, Message: msg} }
func Conflict(msg string) error   { return &Error{Kind: KindConflict, Message: msg} }
func Auth(msg string) error       { return &Error{Kind: KindAuth, Message: msg} }
func NotFound(msg string) error   { return &Error{Kind: KindNotFound, Message: msg} }

// Processing wraps a failure to handle user supplied content, e.g. an
// upload that isn't a decodable image
func Processing(msg string, err error) error {
	return &Error{Kind: KindProcessing, Message: msg, Err: err}
}

// Status returns the HTTP status for err. Errors that don't belong to
// the taxonomy are internal errors.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}

	switch e.Kind {
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that is safe to show to a client.
// Internal errors never leak their cause.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		return "Server error"
	}

	return e.Message
}

// Is reports whether err belongs to the given kind
func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
