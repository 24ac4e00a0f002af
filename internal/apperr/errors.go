// Package apperr defines the error taxonomy shared by every layer of the
// service. Handlers never inspect concrete errors; they wrap one of the
// sentinels below with %w and the HTTP layer maps it to a status code and
// the wire error shape.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrConflict       = errors.New("resource conflict")
	ErrAuthentication = errors.New("authentication failed")
	ErrAuthorization  = errors.New("insufficient privileges")
	ErrRateLimited    = errors.New("too many requests")
	ErrNotFound       = errors.New("resource not found")
)

// Response is the error body every failing endpoint returns.
type Response struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	ErrorKey string `json:"errorKey,omitempty"`
}

func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func Key(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrAuthentication):
		return "authentication_failed"
	case errors.Is(err, ErrAuthorization):
		return "forbidden"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	}
	return ""
}
