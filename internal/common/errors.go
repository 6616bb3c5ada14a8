package common

import (
	"errors"
	"fmt"
	"time"
)

// Common error types used across the application
var (
	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrTimeout indicates an operation timed out
	ErrTimeout = errors.New("operation timed out")
	// ErrNetworkFailure indicates network connectivity issues
	ErrNetworkFailure = errors.New("network failure")
	// ErrInvalidResponse indicates a peer answered with an unusable payload
	ErrInvalidResponse = errors.New("invalid response")
	// ErrInvalidConfiguration indicates configuration issues
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrPersistence indicates the key-value store could not be read or written
	ErrPersistence = errors.New("persistence failure")
)

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return fmt.Errorf("%s: <nil>", message)
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context information
func WrapErrorf(err error, format string, args ...interface{}) error {
	return WrapError(err, fmt.Sprintf(format, args...))
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// ValidationError represents validation errors with field-specific information.
// Message is safe to show to the user as is.
type ValidationError struct {
	Field   string
	Value   any
	Message string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Wrapped != nil {
		return e.Wrapped
	}
	return ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ConfigurationError represents configuration-related errors
type ConfigurationError struct {
	Section string
	Field   string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Section != "" && e.Field != "" {
		return fmt.Sprintf("configuration error in section '%s', field '%s': %s", e.Section, e.Field, e.Reason)
	} else if e.Section != "" {
		return fmt.Sprintf("configuration error in section '%s': %s", e.Section, e.Reason)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(section, field, reason string) *ConfigurationError {
	return &ConfigurationError{
		Section: section,
		Field:   field,
		Reason:  reason,
	}
}

// NetworkError represents network-related errors
type NetworkError struct {
	URL     string
	Reason  string
	Wrapped error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error for URL '%s': %s", e.URL, e.Reason)
}

func (e *NetworkError) Unwrap() error {
	return e.Wrapped
}

// Is lets errors.Is(err, ErrNetworkFailure) match any NetworkError.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetworkFailure
}

// NewNetworkError creates a new network error
func NewNetworkError(url, reason string, wrapped error) *NetworkError {
	return &NetworkError{
		URL:     url,
		Reason:  reason,
		Wrapped: wrapped,
	}
}

// HTTPError represents HTTP-related errors
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *HTTPError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("HTTP %d error for URL '%s': %s", e.StatusCode, e.URL, e.Message)
	}
	return fmt.Sprintf("HTTP %d error: %s", e.StatusCode, e.Message)
}

// NewHTTPErrorWithURL creates a new HTTP error with URL context
func NewHTTPErrorWithURL(statusCode int, message, url string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		URL:        url,
	}
}

// TimeoutError is returned when a request did not settle before its deadline.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to '%s' timed out after %s", e.URL, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(url string, timeout time.Duration) *TimeoutError {
	return &TimeoutError{URL: url, Timeout: timeout}
}

// ProtocolError represents a response whose body does not follow the expected contract
type ProtocolError struct {
	URL     string
	Reason  string
	Wrapped error
}

func (e *ProtocolError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("protocol error for URL '%s': %s: %v", e.URL, e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("protocol error for URL '%s': %s", e.URL, e.Reason)
}

func (e *ProtocolError) Unwrap() error {
	return e.Wrapped
}

// Is lets errors.Is(err, ErrInvalidResponse) match any ProtocolError.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrInvalidResponse
}

// NewProtocolError creates a new protocol error
func NewProtocolError(url, reason string, wrapped error) *ProtocolError {
	return &ProtocolError{
		URL:     url,
		Reason:  reason,
		Wrapped: wrapped,
	}
}

// PersistenceError represents a failed read or write against the state store
type PersistenceError struct {
	Op      string
	Keys    []string
	Wrapped error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed for keys %v: %v", e.Op, e.Keys, e.Wrapped)
}

func (e *PersistenceError) Unwrap() error {
	return e.Wrapped
}

// Is lets errors.Is(err, ErrPersistence) match any PersistenceError.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// NewPersistenceError creates a new persistence error
func NewPersistenceError(op string, keys []string, wrapped error) *PersistenceError {
	return &PersistenceError{
		Op:      op,
		Keys:    keys,
		Wrapped: wrapped,
	}
}

// GetRootCause returns the root cause of an error by unwrapping all wrapped errors
func GetRootCause(err error) error {
	for {
		wrapped := errors.Unwrap(err)
		if wrapped == nil {
			return err
		}
		err = wrapped
	}
}
