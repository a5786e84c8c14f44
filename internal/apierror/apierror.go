// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
//
// Services return *Error values carrying a machine-readable Kind; handlers map
// the Kind to an HTTP status via Status(). Unknown error values are treated as
// internal so persistence failures never leak SQL to clients.
package apierror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for HTTP mapping and client branching.
type Kind string

const (
	KindNotFound     Kind = "not_found"     // missing compra/linea/cuenta/config
	KindInvalidState Kind = "invalid_state" // operation outside the allowed lifecycle state
	KindValidation   Kind = "validation"    // out-of-range fields, malformed enums
	KindConflict     Kind = "conflict"      // duplicate key, saldo insuficiente, lock timeout
	KindInternal     Kind = "internal"      // unexpected persistence failure
)

// Error is the typed error services return. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func InvalidState(msg string) *Error { return &Error{Kind: KindInvalidState, Message: msg} }
func Validation(msg string) *Error   { return &Error{Kind: KindValidation, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }
func Internal(msg string) *Error     { return &Error{Kind: KindInternal, Message: msg} }

// Status returns the HTTP status code for err. Non-*Error values map to 500.
func Status(err error) int {
	var ae *Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState, KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Reason string `json:"reason"`
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Reason: string(KindValidation), Detail: msg}
}

// FromError builds the response envelope for a service error.
// Internal errors get a generic message — the real cause stays in the logs.
func FromError(err error) *APIError {
	var ae *Error
	if !errors.As(err, &ae) || ae.Kind == KindInternal {
		return &APIError{Reason: string(KindInternal), Detail: "Error interno del servidor"}
	}
	return &APIError{Reason: string(ae.Kind), Detail: ae.Message}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Reason string            `json:"reason"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Reason: string(KindValidation), Detail: "Error de validacion", Fields: fields}
}
