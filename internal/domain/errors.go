package domain

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of domain error
type ErrorType string

const (
	// ValidationError represents validation failures
	ValidationError ErrorType = "VALIDATION_ERROR"
	// NotFoundError represents resource not found
	NotFoundError ErrorType = "NOT_FOUND_ERROR"
	// ConflictError represents resource conflicts
	ConflictError ErrorType = "CONFLICT_ERROR"
	// AuthenticationError represents authentication failures
	AuthenticationError ErrorType = "AUTHENTICATION_ERROR"
	// AuthorizationError represents authorization failures
	AuthorizationError ErrorType = "AUTHORIZATION_ERROR"
	// StoreUnavailableError represents document store connection or transport failures
	StoreUnavailableError ErrorType = "STORE_UNAVAILABLE_ERROR"
	// InternalError represents internal system errors
	InternalError ErrorType = "INTERNAL_ERROR"
)

// Error represents a domain-specific error with additional context
type Error struct {
	Type    ErrorType              `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail attaches a detail entry and returns the error for chaining.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewValidationError creates a new validation error
func NewValidationError(code, message string, details map[string]interface{}) *Error {
	return &Error{
		Type:    ValidationError,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewNotFoundError creates a new not found error. The identifying key is echoed back in details.
func NewNotFoundError(code, message string, key map[string]interface{}) *Error {
	return &Error{
		Type:    NotFoundError,
		Code:    code,
		Message: message,
		Details: key,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(code, message string) *Error {
	return &Error{
		Type:    ConflictError,
		Code:    code,
		Message: message,
	}
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(code, message string) *Error {
	return &Error{
		Type:    AuthenticationError,
		Code:    code,
		Message: message,
	}
}

// NewAuthorizationError creates a new authorization error
func NewAuthorizationError(code, message string) *Error {
	return &Error{
		Type:    AuthorizationError,
		Code:    code,
		Message: message,
	}
}

// NewStoreUnavailableError creates a new store unavailable error
func NewStoreUnavailableError(code, message string, cause error) *Error {
	return &Error{
		Type:    StoreUnavailableError,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(code, message string, cause error) *Error {
	return &Error{
		Type:    InternalError,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsErrorType reports whether err is a domain error of the given type.
func IsErrorType(err error, errorType ErrorType) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Type == errorType
	}
	return false
}

// IsNotFound reports whether err is a NotFound domain error.
func IsNotFound(err error) bool {
	return IsErrorType(err, NotFoundError)
}

// IsConflict reports whether err is a Conflict domain error.
func IsConflict(err error) bool {
	return IsErrorType(err, ConflictError)
}
