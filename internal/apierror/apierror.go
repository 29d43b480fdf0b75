// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Code: "VALIDATION_ERROR", Fields: fields}
}

// Status maps a domain error to its HTTP status code.
// Errors that are not *Error are treated as internal.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindExternal:
		if e.Code == ErrProcessorUnavailable.Code {
			return http.StatusServiceUnavailable
		}
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// FromError converts any error into a status code and a client-safe envelope.
// Internal errors never expose their message.
func FromError(err error) (int, *APIError) {
	status := Status(err)
	var e *Error
	if status == http.StatusInternalServerError || !errors.As(err, &e) {
		return http.StatusInternalServerError, &APIError{Detail: "internal server error", Code: ErrInternal.Code}
	}
	return status, &APIError{Detail: e.Message, Code: e.Code}
}
