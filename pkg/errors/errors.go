package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so clones match their sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if e == nil || !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrDuplicateKey       = New("DUPLICATE_KEY", http.StatusConflict, "entity already present")
	ErrStoreNotFound      = New("STORE_NOT_FOUND", http.StatusConflict, "entity not present in store")
	ErrSubmitInFlight     = New("SUBMIT_IN_FLIGHT", http.StatusConflict, "a submit is already pending")
	ErrFormClosed         = New("FORM_CLOSED", http.StatusConflict, "no form is open")
	ErrGateway            = New("GATEWAY_ERROR", http.StatusBadGateway, "gateway rejected the request")
	ErrTransport          = New("TRANSPORT_ERROR", http.StatusServiceUnavailable, "gateway unreachable")
	ErrGatewayTimeout     = New("GATEWAY_TIMEOUT", http.StatusGatewayTimeout, "gateway timed out")
	ErrSave               = New("SAVE_ERROR", http.StatusBadGateway, "failed to save")
	ErrSimulationDisabled = New("SIMULATION_DISABLED", http.StatusNotFound, "enrollment simulation is disabled")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	var mapper interface{ AppError() *Error }
	if errors.As(err, &mapper) {
		if mapped := mapper.AppError(); mapped != nil {
			return mapped
		}
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
