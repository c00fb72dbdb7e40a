package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/siteadmin/internal/auth/domain"
	authhttp "github.com/aussiebroadwan/siteadmin/internal/auth/http"
	"github.com/stretchr/testify/require"
)

func TestLoginSuccess(t *testing.T) {
	s := newTestServer(t, "access-secret")

	rec := s.do(t, http.MethodPost, "/auth-admin", map[string]string{
		"password":   correctPassword,
		"twofa_code": "",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Contains(t, raw, "tokens")

	var resp authhttp.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Tokens.AccessToken)
	require.NotEmpty(t, resp.Tokens.RefreshToken)
	require.Equal(t, "Bearer", resp.TokenType)
	require.EqualValues(t, 900, resp.ExpiresIn)
	require.NotContains(t, string(raw["tokens"]), "ExpiresIn")
}

func TestLoginRequestErrors(t *testing.T) {
	s := newTestServer(t, "access-secret")

	tests := []struct {
		name     string
		body     any
		wantCode int
		wantErr  string
	}{
		{"empty password", map[string]string{"password": ""}, http.StatusBadRequest, "invalid_request"},
		{"no body fields", map[string]string{}, http.StatusBadRequest, "invalid_request"},
		{"unknown grant", map[string]string{"grant_type": "client_credentials", "password": "x"}, http.StatusBadRequest, "unsupported_grant_type"},
		{"refresh without token", map[string]string{"grant_type": "refresh_token"}, http.StatusBadRequest, "invalid_request"},
		{"wrong password", map[string]string{"password": "nope"}, http.StatusUnauthorized, "invalid_credentials"},
		{"honeypot", map[string]string{"password": correctPassword, "honeypot": "x"}, http.StatusBadRequest, "validation_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/auth-admin", tt.body, nil)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			require.Equal(t, tt.wantErr, errorCode(t, rec))
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		req := strings.NewReader("{not json")
		r, _ := http.NewRequest(http.MethodPost, "/auth-admin", req)
		r.RemoteAddr = clientAddr
		r.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, r)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "invalid_request", errorCode(t, rec))
	})
}

func TestLockoutOverHTTP(t *testing.T) {
	s := newTestServer(t, "access-secret")

	for i := range 5 {
		rec := s.login(t, "wrong")
		require.Equal(t, http.StatusUnauthorized, rec.Code, "attempt %d", i+1)
	}

	rec := s.login(t, correctPassword)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "too_many_attempts", errorCode(t, rec))
	require.Equal(t, "300", rec.Header().Get("Retry-After"))

	rows, total, err := s.store.LoginAttempts().ListLoginAttempts(bg, domain.LoginAttemptFilter{IPAddress: "1.2.3.4"}, domain.Page{
		Limit:  10,
		SortBy: domain.SortByCreatedAt,
		Desc:   true,
	})
	require.NoError(t, err)
	require.EqualValues(t, 6, total)
	for _, r := range rows {
		require.False(t, r.Success)
	}
}

func TestLockoutIgnoresForwardedFor(t *testing.T) {
	s := newTestServer(t, "access-secret")

	for i := range 6 {
		rec := s.do(t, http.MethodPost, "/auth-admin", map[string]string{"password": "wrong"}, map[string]string{
			"X-Forwarded-For": "10.0.0." + string(rune('1'+i)),
		})
		if i < 5 {
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		} else {
			require.Equal(t, http.StatusTooManyRequests, rec.Code, "spoofed header must not reset the budget")
		}
	}
}

func TestRefreshOverHTTP(t *testing.T) {
	s := newTestServer(t, "access-secret")
	first := s.mustLogin(t)

	refresh := func(token string) (int, authhttp.TokenResponse) {
		rec := s.do(t, http.MethodPost, "/auth-admin", map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": token,
		}, nil)
		var resp authhttp.TokenResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		return rec.Code, resp
	}

	code, second := refresh(first.Tokens.RefreshToken)
	require.Equal(t, http.StatusOK, code)
	require.NotEqual(t, first.Tokens.RefreshToken, second.Tokens.RefreshToken)

	code, _ = refresh(first.Tokens.RefreshToken)
	require.Equal(t, http.StatusUnauthorized, code, "refresh tokens are single use")

	code, _ = refresh(second.Tokens.AccessToken)
	require.Equal(t, http.StatusUnauthorized, code, "access token is not a refresh token")
}

func TestRevokeOverHTTP(t *testing.T) {
	s := newTestServer(t, "access-secret")
	pair := s.mustLogin(t)

	rec := s.do(t, http.MethodDelete, "/auth-admin", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodDelete, "/auth-admin", nil, bearer(pair.Tokens.AccessToken))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth-admin", map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": pair.Tokens.RefreshToken,
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid_refresh_token", errorCode(t, rec))
}

func TestAuthAdminMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, "access-secret")

	rec := s.do(t, http.MethodPut, "/auth-admin", nil, nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "method_not_allowed", errorCode(t, rec))
	require.Contains(t, rec.Header().Get("Allow"), "POST")
}

func TestPreflight(t *testing.T) {
	s := newTestServer(t, "access-secret")

	for _, path := range []string{"/auth-admin", "/admin-login-logs", "/anything"} {
		rec := s.do(t, http.MethodOptions, path, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		require.Empty(t, rec.Body.String())
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	}
}

func TestLoginWithoutSigningSecret(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.login(t, correctPassword)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "server_misconfigured", errorCode(t, rec))
}
