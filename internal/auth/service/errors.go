package service

import "errors"

// Outcomes the HTTP layer maps to status codes. Credential and token errors
// deliberately never say which check failed.
var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrTooManyAttempts    = errors.New("too_many_attempts")
	ErrValidationFailed   = errors.New("validation_failed")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrConfiguration      = errors.New("server_misconfigured")
	ErrStoreUnavailable   = errors.New("store_unavailable")
)
