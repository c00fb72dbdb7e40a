package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/siteadmin/internal/auth/domain"
	"github.com/aussiebroadwan/siteadmin/internal/auth/service"
	"github.com/aussiebroadwan/siteadmin/internal/auth/store"
	"github.com/aussiebroadwan/siteadmin/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/siteadmin/pkg/cryptox"
	"github.com/aussiebroadwan/siteadmin/pkg/jwtx"
	"github.com/aussiebroadwan/siteadmin/pkg/kv"
	"github.com/stretchr/testify/require"
)

const (
	correctPassword = "correct"
	testIP          = "1.2.3.4"
)

var (
	hashOnce  sync.Once
	adminHash string
)

// testHash is computed once; bcrypt is slow even at the minimum cost.
func testHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		h, err := cryptox.HashPassword(correctPassword, cryptox.MinCost)
		if err != nil {
			panic(err)
		}
		adminHash = h
	})
	return adminHash
}

// clock is a manually advanced time source shared by every component in a
// harness.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	svc   *service.SessionService
	kv    *kv.Memory
	store *sqlite.Store
	clock *clock
}

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	clk := &clock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	mem := kv.NewMemory(kv.WithClock(clk.Now))
	st := newStore(t)

	audit := service.NewAuditSink(st, 2, time.Second)
	audit.Now = clk.Now
	audit.Backoff = time.Millisecond

	svc := &service.SessionService{
		AccessCodec:  jwtx.NewHS256([]byte("access-secret"), "siteadmin", jwtx.WithClock(clk.Now)),
		RefreshCodec: jwtx.NewHS256([]byte("refresh-secret"), "siteadmin", jwtx.WithClock(clk.Now)),
		Subject:      "admin",
		AccessTTL:    jwtx.DefaultAccessTokenTTL,
		RefreshTTL:   jwtx.DefaultRefreshTokenTTL,
		Credentials: service.CredentialChain{
			service.StoreCredentialSource{Store: st},
			service.StaticCredentialSource{Hash: testHash(t)},
		},
		Attempts: &service.AttemptTracker{
			KV:        mem,
			Purpose:   "login",
			Threshold: service.DefaultMaxAttempts,
			Window:    service.DefaultAttemptWindow,
			LockTTL:   service.DefaultLockoutDuration,
			Timeout:   time.Second,
		},
		Audit:   audit,
		KV:      mem,
		Timeout: time.Second,
		Now:     clk.Now,
	}

	return &harness{svc: svc, kv: mem, store: st, clock: clk}
}

func (h *harness) login(password string) (domain.TokenPair, error) {
	return h.svc.Login(context.Background(), service.LoginRequest{
		Password:  password,
		IP:        testIP,
		UserAgent: "test-agent",
	})
}

// auditRows returns every audit row, oldest first.
func (h *harness) auditRows(t *testing.T) []domain.LoginAttempt {
	t.Helper()
	rows, _, err := h.store.LoginAttempts().ListLoginAttempts(context.Background(),
		domain.LoginAttemptFilter{},
		domain.Page{Limit: 500, SortBy: domain.SortByCreatedAt},
	)
	require.NoError(t, err)
	return rows
}

var errDown = errors.New("connection refused")

// downKV is a key-value store that cannot be reached.
type downKV struct{ kv.Store }

func (downKV) IncrWithExpiry(context.Context, string, time.Duration) (int64, error) {
	return 0, errDown
}
func (downKV) Set(context.Context, string, string, time.Duration) error { return errDown }
func (downKV) Get(context.Context, string) (string, error)              { return "", errDown }
func (downKV) GetDel(context.Context, string) (string, error)           { return "", errDown }
func (downKV) Delete(context.Context, ...string) error                  { return errDown }
func (downKV) Exists(context.Context, string) (bool, error)             { return false, errDown }

// flakyStore fails the first `failures` audit appends.
type flakyStore struct {
	store.Store
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyStore) LoginAttempts() store.LoginAttempts {
	return flakyAttempts{LoginAttempts: f.Store.LoginAttempts(), parent: f}
}

type flakyAttempts struct {
	store.LoginAttempts
	parent *flakyStore
}

func (f flakyAttempts) AppendLoginAttempt(ctx context.Context, a domain.LoginAttempt) error {
	f.parent.mu.Lock()
	f.parent.calls++
	fail := f.parent.calls <= f.parent.failures
	f.parent.mu.Unlock()
	if fail {
		return errDown
	}
	return f.LoginAttempts.AppendLoginAttempt(ctx, a)
}

// failingAudit always refuses.
type failingAudit struct{ calls int }

func (f *failingAudit) Record(context.Context, domain.LoginAttempt) error {
	f.calls++
	return errDown
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
