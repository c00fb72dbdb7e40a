package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	authhttp "github.com/aussiebroadwan/siteadmin/internal/auth/http"
	"github.com/aussiebroadwan/siteadmin/internal/auth/service"
	"github.com/aussiebroadwan/siteadmin/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/siteadmin/pkg/cryptox"
	"github.com/aussiebroadwan/siteadmin/pkg/httpx"
	"github.com/aussiebroadwan/siteadmin/pkg/jwtx"
	"github.com/aussiebroadwan/siteadmin/pkg/kv"
	"github.com/stretchr/testify/require"
)

const (
	correctPassword = "correct"
	clientAddr      = "1.2.3.4:5555"
)

var (
	hashOnce  sync.Once
	adminHash string
)

func testHash() string {
	hashOnce.Do(func() {
		h, err := cryptox.HashPassword(correctPassword, cryptox.MinCost)
		if err != nil {
			panic(err)
		}
		adminHash = h
	})
	return adminHash
}

type testServer struct {
	router *authhttp.Router
	store  *sqlite.Store
	kv     *kv.Memory
	svc    *service.SessionService
}

type option func(*testServer)

func withRouteLimit(n int) option {
	return func(s *testServer) {
		s.router.RouteLimit.Config = httpx.RateLimitConfig{RequestsPerWindow: n, Window: time.Minute}
	}
}

func newTestServer(t *testing.T, accessSecret string, opts ...option) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	mem := kv.NewMemory()
	access := jwtx.NewHS256([]byte(accessSecret), "siteadmin")

	svc := &service.SessionService{
		AccessCodec:  access,
		RefreshCodec: jwtx.NewHS256([]byte("refresh-secret"), "siteadmin"),
		Subject:      "admin",
		AccessTTL:    jwtx.DefaultAccessTokenTTL,
		RefreshTTL:   jwtx.DefaultRefreshTokenTTL,
		Credentials: service.CredentialChain{
			service.StoreCredentialSource{Store: st},
			service.StaticCredentialSource{Hash: testHash()},
		},
		Attempts: &service.AttemptTracker{
			KV:        mem,
			Purpose:   "login",
			Threshold: service.DefaultMaxAttempts,
			Window:    service.DefaultAttemptWindow,
			LockTTL:   service.DefaultLockoutDuration,
			Timeout:   time.Second,
		},
		Audit:   service.NewAuditSink(st, 1, time.Second),
		KV:      mem,
		Timeout: time.Second,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := authhttp.NewRouter(access, "test", st, mem, logger)
	r.Sessions = svc

	s := &testServer{router: r, store: st, kv: mem, svc: svc}
	for _, opt := range opts {
		opt(s)
	}
	r.ApplyRoutes()
	return s
}

func (s *testServer) do(t *testing.T, method, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, rdr)
	req.RemoteAddr = clientAddr
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, password string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, http.MethodPost, "/auth-admin", map[string]string{"password": password}, nil)
}

// mustLogin returns a fresh token response.
func (s *testServer) mustLogin(t *testing.T) authhttp.TokenResponse {
	t.Helper()
	rec := s.login(t, correctPassword)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp authhttp.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body httpx.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error
}

var bg = context.Background()
