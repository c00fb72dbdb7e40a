package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/siteadmin/internal/auth/service"
	"github.com/aussiebroadwan/siteadmin/pkg/httpx"
	"github.com/aussiebroadwan/siteadmin/pkg/slogx"
)

var (
	ErrInvalidRequest = &httpx.APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        "invalid_request",
		Description: "the request is missing a required parameter or is malformed",
	}
	ErrUnsupportedGrantType = &httpx.APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        "unsupported_grant_type",
		Description: "grant_type must be password or refresh_token",
	}
	ErrMethodNotAllowed = &httpx.APIError{
		StatusCode:  http.StatusMethodNotAllowed,
		Code:        "method_not_allowed",
		Description: "method not allowed",
	}
	ErrInvalidCredentials = &httpx.APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        "invalid_credentials",
		Description: "invalid credentials",
	}
	ErrTooManyAttempts = &httpx.APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        "too_many_attempts",
		Description: "too many failed login attempts, try again later",
	}
	ErrValidationFailed = &httpx.APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        "validation_failed",
		Description: "request validation failed",
	}
	ErrInvalidRefreshToken = &httpx.APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        "invalid_refresh_token",
		Description: "the refresh token is invalid, expired or already used",
	}
	ErrServerError = &httpx.APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        "server_error",
		Description: "internal server error",
	}
)

// invalidRequest returns ErrInvalidRequest with a specific description.
func invalidRequest(desc string) *httpx.APIError {
	e := *ErrInvalidRequest
	e.Description = desc
	return &e
}

// writeServiceError maps a session service error onto its HTTP reply.
// retryAfter is sent with lockouts.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, retryAfter time.Duration) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrTooManyAttempts):
		if retryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		}
		ErrTooManyAttempts.WriteError(w)
	case errors.Is(err, service.ErrValidationFailed):
		ErrValidationFailed.WriteError(w)
	case errors.Is(err, service.ErrInvalidRefresh):
		ErrInvalidRefreshToken.WriteError(w)
	case errors.Is(err, service.ErrConfiguration):
		httpx.ErrMisconfigured.WriteError(w)
	case errors.Is(err, service.ErrStoreUnavailable):
		httpx.ErrStoreUnavailable.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", "err", err)
		ErrServerError.WriteError(w)
	}
}

// methodNotAllowed answers any method a path does not register.
func methodNotAllowed(allow string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		ErrMethodNotAllowed.WriteError(w)
	}
}
