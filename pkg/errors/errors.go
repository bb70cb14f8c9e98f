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
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusInternalServerError, "cache miss")
)

// Check-in flow errors. Each kind is machine-distinguishable so clients can
// render a specific message and decide whether a retry makes sense.
var (
	ErrSessionNotFound  = New("SESSION_NOT_FOUND", http.StatusNotFound, "no attendance session matches this token")
	ErrSessionExpired   = New("SESSION_EXPIRED", http.StatusGone, "this attendance session has expired")
	ErrAlreadyCheckedIn = New("ALREADY_CHECKED_IN", http.StatusConflict, "attendance already recorded for this session")
	ErrOutOfRange       = New("OUT_OF_RANGE", http.StatusUnprocessableEntity, "you are too far from the class location to check in")
)

// Geolocation failure kinds, mirroring the W3C Geolocation error taxonomy.
// All are recoverable by the caller re-acquiring a position.
var (
	ErrLocationPermissionDenied = New("LOCATION_PERMISSION_DENIED", http.StatusBadRequest, "location permission was denied")
	ErrLocationUnavailable      = New("LOCATION_UNAVAILABLE", http.StatusBadRequest, "device location is unavailable")
	ErrLocationTimeout          = New("LOCATION_TIMEOUT", http.StatusBadRequest, "timed out acquiring device location")
	ErrLocationUnknown          = New("LOCATION_UNKNOWN", http.StatusBadRequest, "failed to acquire device location")
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
