package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases.
// Use errors.Is() to check against these.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrConfigMissing  = errors.New("configuration missing")
	ErrUpstreamError  = errors.New("upstream error")
	ErrRateLimited    = errors.New("rate limited")
	ErrCatalogBroken  = errors.New("catalog misconfigured")
	ErrUnsupported    = errors.New("operation not supported")
)

// APIError represents a structured error for webhook responses.
// Implements error interface and supports unwrapping.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"` // HTTP status, not serialized
	Err        error  `json:"-"` // Wrapped error, not serialized
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a 404 error for missing resources.
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: 404,
		Err:        ErrNotFound,
	}
}

// NewValidationError creates a 400 error for invalid input.
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Code:       "VALIDATION_ERROR",
		Message:    fmt.Sprintf("invalid %s: %s", field, reason),
		StatusCode: 400,
		Err:        ErrInvalidRequest,
	}
}

// NewConfigError creates a 503 error for missing credentials or settings.
// The webhook contract requires Service Unavailable when the integration
// itself is not configured, before any payload processing happens.
func NewConfigError(setting string) *APIError {
	return &APIError{
		Code:       "CONFIG_MISSING",
		Message:    fmt.Sprintf("%s is not configured", setting),
		StatusCode: 503,
		Err:        ErrConfigMissing,
	}
}

// NewUpstreamError creates a 500 error for provider/network failures.
// Provider failures surface to the cart platform as internal errors,
// never as raw upstream responses.
func NewUpstreamError(service string, err error) *APIError {
	return &APIError{
		Code:       "UPSTREAM_ERROR",
		Message:    fmt.Sprintf("%s request failed", service),
		StatusCode: 500,
		Err:        fmt.Errorf("%w: %v", ErrUpstreamError, err),
	}
}

// NewInternalError creates a 500 error for unexpected failures.
func NewInternalError(err error) *APIError {
	return &APIError{
		Code:       "INTERNAL_ERROR",
		Message:    "an internal error occurred",
		StatusCode: 500,
		Err:        err,
	}
}

// NewRateLimitError creates a 429 error for rate limiting.
func NewRateLimitError(service string) *APIError {
	return &APIError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("%s rate limit exceeded, please retry later", service),
		StatusCode: 429,
		Err:        ErrRateLimited,
	}
}

// NewCatalogError creates a 500 error for a misconfigured catalog.
// Distinct from NotFound: a catalog whose items lack the configured code
// field cannot validate any cart, so the message names the broken field.
func NewCatalogError(message string) *APIError {
	return &APIError{
		Code:       "CATALOG_MISCONFIGURED",
		Message:    message,
		StatusCode: 500,
		Err:        ErrCatalogBroken,
	}
}
