package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Ingestion (ING) ----

// ErrMalformedPayload signals that a structurally required top-level field
// set is absent from the payload. The event is fatal and not retried.
func ErrMalformedPayload(source string, err error) *AppError {
	return Wrap("ING_001", fmt.Sprintf("Malformed %s payload", source), http.StatusBadRequest, err)
}

func ErrUnknownSource(source string) *AppError {
	return New("ING_002", fmt.Sprintf("Unknown webhook source: %s", source), http.StatusNotFound)
}

func ErrInvalidBody() *AppError {
	return New("ING_003", "Request body is not valid JSON", http.StatusBadRequest)
}

// ---- Query (QRY) ----

func ErrInvalidQueryParam(name string) *AppError {
	return New("QRY_001", fmt.Sprintf("Invalid query parameter: %s", name), http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("QRY_002", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Authentication (AUTH) ----

func ErrInvalidAPIKey() *AppError {
	return New("AUTH_001", "Invalid API key", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_002", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// ErrPersistenceFailure wraps a storage write error. In direct mode it
// propagates to the caller; in batched mode it is absorbed by the
// accumulator's re-queue and never reaches the original caller.
func ErrPersistenceFailure(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns an ING_003-style validation error.
func Validation(message string) *AppError {
	return New("ING_003", message, http.StatusBadRequest)
}
