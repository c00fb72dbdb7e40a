package siteadmin_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/siteadmin/internal/auth/app"
	"github.com/aussiebroadwan/siteadmin/pkg/authsdk"
	"github.com/aussiebroadwan/siteadmin/pkg/cryptox"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * End-to-end tests run real siteadmin instances in process against a Redis
 * container, so lockouts and refresh records go through the production
 * key-value path. Each instance gets its own SQLite file.
 */

const adminPassword = "Admin123!"

var (
	hashOnce  sync.Once
	adminHash string
)

func passwordHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		h, err := cryptox.HashPassword(adminPassword, cryptox.MinCost)
		require.NoError(t, err)
		adminHash = h
	})
	return adminHash
}

// setupRedisContainer starts a throwaway Redis and returns its URL.
func setupRedisContainer(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s/0", host, mappedPort.Port())
}

// startInstance runs one siteadmin instance against redisURL and returns a
// client for it. modify adjusts the config before the app is built.
func startInstance(t *testing.T, redisURL string, modify ...func(*app.Config)) *authsdk.SDKClient {
	t.Helper()

	cfg := app.DefaultConfig()
	cfg.JWTSecret = "e2e-access-secret"
	cfg.JWTRefreshSecret = "e2e-refresh-secret"
	cfg.AdminPasswordHash = passwordHash(t)
	cfg.KVBackend = "redis"
	cfg.RedisURL = redisURL
	cfg.DatabaseFile = filepath.Join(t.TempDir(), "siteadmin.db")
	cfg.Env = "test"
	cfg.LogLevel = "error"
	for _, m := range modify {
		m(&cfg)
	}
	require.NoError(t, cfg.Validate())

	application, err := app.New(cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = application.Close()
	})

	return authsdk.NewSDKClient(srv.URL)
}
