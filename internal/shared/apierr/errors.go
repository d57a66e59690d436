// Package apierr defines the external error taxonomy and maps engine errors
// onto the HTTP wire format. Services return *Error values; controllers hand
// them to Respond, which renders the error envelope.
package apierr

import (
	"context"
	"errors"
	"net/http"

	"gatherly/pkg/retry"
)

// Code identifies an error kind in the external taxonomy.
type Code string

const (
	CodeValidation           Code = "VALIDATION_ERROR"
	CodeUserNotFound         Code = "USER_NOT_FOUND"
	CodeEventNotFound        Code = "EVENT_NOT_FOUND"
	CodeRegistrationNotFound Code = "REGISTRATION_NOT_FOUND"
	CodeDuplicateUser        Code = "DUPLICATE_USER"
	CodeDuplicateEvent       Code = "DUPLICATE_EVENT"
	CodeAlreadyRegistered    Code = "ALREADY_REGISTERED"
	CodeAlreadyOnWaitlist    Code = "ALREADY_ON_WAITLIST"
	CodeEventFull            Code = "EVENT_FULL"
	CodeContention           Code = "CONTENTION"
	CodeInternal             Code = "INTERNAL_ERROR"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
)

// FieldDetail describes a single field-level validation failure.
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a typed application error carrying its taxonomy code.
type Error struct {
	Code    Code          `json:"code"`
	Message string        `json:"message"`
	Details []FieldDetail `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// New creates a typed error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewValidation creates a VALIDATION_ERROR with per-field details.
func NewValidation(details []FieldDetail) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: "request validation failed",
		Details: details,
	}
}

// Status returns the HTTP status for the error's code.
func (e *Error) Status() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUserNotFound, CodeEventNotFound, CodeRegistrationNotFound:
		return http.StatusNotFound
	case CodeDuplicateUser, CodeDuplicateEvent, CodeAlreadyRegistered, CodeAlreadyOnWaitlist, CodeEventFull, CodeContention:
		return http.StatusConflict
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// From classifies an arbitrary error into the taxonomy. Transient store
// failures that survived their retry budget become SERVICE_UNAVAILABLE, and
// everything else unknown becomes INTERNAL_ERROR; the underlying message is
// never surfaced to clients.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if retry.IsTransient(err) || errors.Is(err, context.DeadlineExceeded) {
		return New(CodeServiceUnavailable, "the service is temporarily unavailable, please retry")
	}
	return New(CodeInternal, "an unexpected error occurred")
}
