package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aussiebroadwan/siteadmin/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *Application {
	t.Helper()

	hash, err := cryptox.HashPassword("correct", cryptox.MinCost)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.JWTSecret = "access-secret"
	cfg.AdminPasswordHash = hash
	cfg.KVBackend = "memory"
	cfg.DatabaseFile = filepath.Join(t.TempDir(), "siteadmin.db")
	cfg.LogLevel = "error"

	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })
	return application
}

func TestApplicationServesLogin(t *testing.T) {
	application := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/auth-admin", strings.NewReader(`{"password":"correct"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	application.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	req = httptest.NewRequest(http.MethodGet, "/admin-login-logs", nil)
	req.Header.Set("Authorization", "Bearer "+body.Tokens.AccessToken)
	rec = httptest.NewRecorder()
	application.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total_attempts":1`)
}

func TestApplicationReadyzFlagsSharedRefreshSecret(t *testing.T) {
	application := newTestApp(t)

	rec := httptest.NewRecorder()
	application.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"refresh_secret":"shared_with_access"`)
}
