// Package domain provides the issue tracker's entities, identity scheme and error types.
package domain

import (
	"errors"
	"net/http"
)

// StatusCode maps an error to the HTTP status code it is surfaced with.
// Conflicts are reported as 400 to keep the status the tracker has always returned.
func StatusCode(err error) int {
	var domainErr *Error
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError
	}
	return StatusCodeForType(domainErr.Type)
}

// StatusCodeForType maps a domain error type to an HTTP status code.
func StatusCodeForType(errorType ErrorType) int {
	switch errorType {
	case ValidationError, ConflictError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case AuthenticationError:
		return http.StatusUnauthorized
	case AuthorizationError:
		return http.StatusForbidden
	case StoreUnavailableError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
