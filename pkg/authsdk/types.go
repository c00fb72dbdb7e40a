package authsdk

import "time"

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Token Types
// ============================================================================

// LoginRequest is the password grant. Only Password is required; the rest
// depend on how the server is configured.
type LoginRequest struct {
	Password     string
	TwoFACode    string
	CaptchaToken string
}

type authAdminRequest struct {
	GrantType    string `json:"grant_type"`
	Password     string `json:"password,omitempty"`
	TwoFACode    string `json:"twofa_code,omitempty"`
	CaptchaToken string `json:"captcha_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// TokenPair is an access token and the single-use refresh token minted with it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is returned by POST /auth-admin for both grants.
type TokenResponse struct {
	Tokens    TokenPair `json:"tokens"`
	TokenType string    `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expires_in"`
}

// ============================================================================
// Login Audit Types
// ============================================================================

type LoginAttempt struct {
	ID        string    `json:"id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Success   bool      `json:"success"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginAttemptStats struct {
	TotalAttempts int64 `json:"total_attempts"`
	SuccessCount  int64 `json:"success_count"`
	FailedCount   int64 `json:"failed_count"`
}

type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// LoginLogsResponse is one page of GET /admin-login-logs.
type LoginLogsResponse struct {
	Logs       []LoginAttempt    `json:"logs"`
	Stats      LoginAttemptStats `json:"stats"`
	Pagination Pagination        `json:"pagination"`
}

// ============================================================================
// Health Types
// ============================================================================

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database      string `json:"database"`
	KV            string `json:"kv"`
	Signer        string `json:"signer"`
	RefreshSecret string `json:"refresh_secret"`
}

// LogsHealthResponse answers the unauthenticated logs probe.
type LogsHealthResponse struct {
	Status      string  `json:"status"`
	DBLatencyMS float64 `json:"db_latency_ms"`
}
