package http

import "github.com/aussiebroadwan/siteadmin/internal/auth/domain"

// AuthAdminRequest is the POST /auth-admin body.
type AuthAdminRequest struct {
	GrantType    string `json:"grant_type,omitempty" enums:"password,refresh_token"`
	Password     string `json:"password,omitempty"`
	TwoFACode    string `json:"twofa_code,omitempty"`
	CaptchaToken string `json:"captcha_token,omitempty"`
	Honeypot     string `json:"honeypot,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// TokenResponse is returned by a successful login or refresh.
type TokenResponse struct {
	Tokens    domain.TokenPair `json:"tokens"`
	TokenType string           `json:"token_type"`
	ExpiresIn int64            `json:"expires_in"`
}

// LoginLogsResponse is one page of the login audit log.
type LoginLogsResponse struct {
	Logs       []domain.LoginAttempt    `json:"logs"`
	Stats      domain.LoginAttemptStats `json:"stats"`
	Pagination Pagination               `json:"pagination"`
}

type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// LoginLogsExport is the body of export=json.
type LoginLogsExport struct {
	ExportedAt string                `json:"exported_at"`
	Count      int                   `json:"count"`
	Logs       []domain.LoginAttempt `json:"logs"`
}

// LogsHealthResponse answers GET /admin-login-logs?health=1.
type LogsHealthResponse struct {
	Status      string  `json:"status"`
	DBLatencyMS float64 `json:"db_latency_ms"`
}

// HealthResponse is used by /livez and /readyz (readyz includes Checks).
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports each dependency readyz looks at.
type HealthChecks struct {
	Database string `json:"database"`
	KV       string `json:"kv"`
	Signer   string `json:"signer"`

	// RefreshSecret is "dedicated" or "shared_with_access". Sharing does not
	// fail readiness but should be fixed.
	RefreshSecret string `json:"refresh_secret"`
}
