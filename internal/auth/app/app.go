package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/siteadmin/internal/auth/http"
	"github.com/aussiebroadwan/siteadmin/internal/auth/service"
	"github.com/aussiebroadwan/siteadmin/internal/auth/store"
	"github.com/aussiebroadwan/siteadmin/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/siteadmin/pkg/httpx"
	"github.com/aussiebroadwan/siteadmin/pkg/jwtx"
	"github.com/aussiebroadwan/siteadmin/pkg/kv"
	"github.com/aussiebroadwan/siteadmin/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X ...".
var BuildVersion = "v0.1.0"

// Application encapsulates the admin auth service and its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db store.Store
	kv kv.Store

	access  *jwtx.HS256Codec
	refresh *jwtx.HS256Codec

	// Services
	sessionService      *service.SessionService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg:    cfg,
		logger: newLogger(cfg),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initKV(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initSigners()
	app.initServices()
	app.initHTTP()

	return app, nil
}

func newLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "siteadmin",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		File:    cfg.LogFile,
	})
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("siteadmin starting", "port", app.cfg.Port, "version", BuildVersion, "kv_backend", app.cfg.KVBackend)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			app.closeStores()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down siteadmin...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("siteadmin stopped")
	return nil
}

// Handler returns the fully wired HTTP handler without starting a server.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Close releases the stores of an application that was never Run.
func (app *Application) Close() error {
	return app.closeStores()
}

func (app *Application) closeStores() error {
	var errs []error
	if err := app.kv.Close(); err != nil {
		app.logger.Error("error closing key-value store", "error", err)
		errs = append(errs, err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// initDatabase opens the record store and applies migrations
func (app *Application) initDatabase() error {
	db, err := openStore(app.cfg.DatabaseFile)
	if err != nil {
		return err
	}
	app.db = db

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

func openStore(file string) (*sqlite.Store, error) {
	db, err := sqlite.NewStore(fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", file))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return db, nil
}

// initKV connects the attempt tracker, refresh records and route budgets to
// their shared store.
func (app *Application) initKV() error {
	switch app.cfg.KVBackend {
	case "memory":
		app.logger.Warn("using in-memory key-value store; lockouts and refresh tokens are not shared between instances")
		app.kv = kv.NewMemory()
		return nil
	default:
		r, err := kv.NewRedis(app.cfg.RedisURL, app.cfg.StoreTimeout)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}

		// Unreachable at startup is logged, not fatal. Requests fail closed
		// and /readyz reports it until the server comes back.
		ctx, cancel := context.WithTimeout(context.Background(), app.cfg.StoreTimeout)
		defer cancel()
		if err := r.Ping(ctx); err != nil {
			app.logger.Error("redis unreachable at startup", "error", err)
		}

		app.kv = r
		return nil
	}
}

func (app *Application) initSigners() {
	app.access = jwtx.NewHS256([]byte(app.cfg.JWTSecret), app.cfg.Issuer)
	if !app.access.Configured() {
		app.logger.Error("JWT_SECRET is not set; login and admin routes will answer server_misconfigured")
	}

	secret, shared := app.cfg.RefreshSecret()
	if shared && app.access.Configured() {
		app.logger.Warn("JWT_REFRESH_SECRET is not set; refresh tokens are signed with the access secret")
	}
	app.refresh = jwtx.NewHS256(secret, app.cfg.Issuer)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	credentials := service.CredentialChain{
		service.StoreCredentialSource{Store: app.db},
		service.StaticCredentialSource{Hash: app.cfg.AdminPasswordHash},
	}

	app.sessionService = &service.SessionService{
		AccessCodec:  app.access,
		RefreshCodec: app.refresh,
		Subject:      app.cfg.AdminSubject,
		AccessTTL:    app.cfg.AccessTokenTTL,
		RefreshTTL:   app.cfg.RefreshTokenTTL,
		Credentials:  credentials,
		Attempts: &service.AttemptTracker{
			KV:        app.kv,
			Purpose:   "login",
			Threshold: app.cfg.LoginMaxAttempts,
			Window:    app.cfg.LoginAttemptWindow,
			LockTTL:   app.cfg.LoginLockoutDuration,
			Timeout:   app.cfg.StoreTimeout,
		},
		Audit:         service.NewAuditSink(app.db, app.cfg.AuditRetries, app.cfg.AuditTimeout),
		TOTPSecret:    app.cfg.AdminTOTPSecret,
		CaptchaSecret: app.cfg.AdminCaptchaSecret,
		KV:            app.kv,
		Timeout:       app.cfg.StoreTimeout,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.LoginLogRetention,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.access,
		BuildVersion,
		app.db,
		app.kv,
		app.logger,
	)

	router.Sessions = app.sessionService
	router.TrustProxy = app.cfg.TrustProxyHeaders
	_, router.RefreshSecretShared = app.cfg.RefreshSecret()
	router.RouteLimit = httpapi.RateLimit{
		Config: httpx.RateLimitConfig{
			RequestsPerWindow: app.cfg.RouteLimitLogs,
			Window:            app.cfg.RouteLimitWindow,
		},
		Timeout: app.cfg.StoreTimeout,
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
