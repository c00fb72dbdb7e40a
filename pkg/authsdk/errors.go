package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Error codes returned by the service.
const (
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeUnsupportedGrantType = "unsupported_grant_type"
	ErrorCodeInvalidCredentials   = "invalid_credentials"
	ErrorCodeTooManyAttempts      = "too_many_attempts"
	ErrorCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrorCodeValidationFailed     = "validation_failed"
	ErrorCodeInvalidRefreshToken  = "invalid_refresh_token"
	ErrorCodeUnauthenticated      = "unauthenticated"
	ErrorCodeServerMisconfigured  = "server_misconfigured"
	ErrorCodeStoreUnavailable     = "store_unavailable"
	ErrorCodeMethodNotAllowed     = "method_not_allowed"
	ErrorCodeServerError          = "server_error"
)

// APIError is a non-2xx reply from the service.
type APIError struct {
	StatusCode  int
	Code        string
	Description string

	// RetryAfter is set from the Retry-After header on 429 replies.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// IsLockedOut reports whether err is a login lockout.
func IsLockedOut(err error) bool {
	return hasCode(err, ErrorCodeTooManyAttempts)
}

// IsRateLimited reports whether err is a route budget rejection.
func IsRateLimited(err error) bool {
	return hasCode(err, ErrorCodeRateLimitExceeded)
}

// IsUnauthenticated reports whether the access token was refused.
func IsUnauthenticated(err error) bool {
	return hasCode(err, ErrorCodeUnauthenticated)
}

func hasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// parseErrorResponse turns an error reply into an *APIError. Bodies that are
// not the service's JSON error shape fall back to the status text.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		apiErr.Code = errResp.Error
		apiErr.Description = errResp.ErrorDescription
	}

	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		apiErr.RetryAfter = time.Duration(secs) * time.Second
	}

	return apiErr
}
