package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/aussiebroadwan/siteadmin/pkg/cryptox"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the environment variable holding an optional YAML
// config path. Environment variables override values from the file.
const ConfigFileEnv = "SITEADMIN_CONFIG"

type Config struct {
	JWTSecret        string `yaml:"jwt_secret"`         // Access token secret. Login and the gate answer 500 without it.
	JWTRefreshSecret string `yaml:"jwt_refresh_secret"` // Falls back to JWTSecret with a warning.
	Issuer           string `yaml:"issuer"`
	AdminSubject     string `yaml:"admin_subject"`

	AdminPasswordHash  string `yaml:"admin_password_hash"` // Static credential, used when the record store has none
	AdminTOTPSecret    string `yaml:"admin_totp_secret"`
	AdminCaptchaSecret string `yaml:"admin_captcha_secret"`

	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`

	LoginMaxAttempts     int64         `yaml:"login_max_attempts"`
	LoginAttemptWindow   time.Duration `yaml:"login_attempt_window"`
	LoginLockoutDuration time.Duration `yaml:"login_lockout_duration"`
	BcryptCost           int           `yaml:"bcrypt_cost"`

	KVBackend    string        `yaml:"kv_backend"` // redis or memory
	RedisURL     string        `yaml:"redis_url"`
	StoreTimeout time.Duration `yaml:"store_timeout"`

	AuditRetries int           `yaml:"audit_retries"`
	AuditTimeout time.Duration `yaml:"audit_timeout"`

	DatabaseFile         string        `yaml:"database_file"`
	LoginLogRetention    time.Duration `yaml:"login_log_retention"`
	HousekeepingInterval time.Duration `yaml:"housekeeping_interval"`

	RouteLimitLogs    int           `yaml:"route_limit_logs"`
	RouteLimitWindow  time.Duration `yaml:"route_limit_window"`
	TrustProxyHeaders bool          `yaml:"trust_proxy_headers"` // Take client IPs from X-Forwarded-For/X-Real-IP

	Env                 string        `yaml:"env"`        // dev, staging, prod
	LogLevel            string        `yaml:"log_level"`  // debug, info, warn, error
	LogFormat           string        `yaml:"log_format"` // json, text
	LogFile             string        `yaml:"log_file"`   // Optional rotated log file
	Port                int           `yaml:"port"`
	ShutdownGracePeriod time.Duration `yaml:"shutdown_grace_period"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Issuer:               "siteadmin",
		AdminSubject:         "admin",
		AccessTokenTTL:       15 * time.Minute,
		RefreshTokenTTL:      7 * 24 * time.Hour,
		LoginMaxAttempts:     5,
		LoginAttemptWindow:   60 * time.Second,
		LoginLockoutDuration: 300 * time.Second,
		BcryptCost:           cryptox.DefaultCost,
		KVBackend:            "redis",
		RedisURL:             "redis://localhost:6379/0",
		StoreTimeout:         2 * time.Second,
		AuditRetries:         3,
		AuditTimeout:         2 * time.Second,
		DatabaseFile:         "siteadmin.db",
		LoginLogRetention:    90 * 24 * time.Hour,
		HousekeepingInterval: time.Hour,
		RouteLimitLogs:       40,
		RouteLimitWindow:     60 * time.Second,
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
	}
}

// LoadConfig resolves the process configuration: defaults, then the YAML
// file named by SITEADMIN_CONFIG, then environment variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() {
	envString(&c.JWTSecret, "JWT_SECRET")
	envString(&c.JWTRefreshSecret, "JWT_REFRESH_SECRET")
	envString(&c.Issuer, "AUTH_ISSUER")
	envString(&c.AdminSubject, "ADMIN_SUBJECT")
	envString(&c.AdminPasswordHash, "ADMIN_PASSWORD_HASH")
	envString(&c.AdminTOTPSecret, "ADMIN_TOTP_SECRET")
	envString(&c.AdminCaptchaSecret, "ADMIN_CAPTCHA_SECRET")

	envDuration(&c.AccessTokenTTL, "ACCESS_TOKEN_TTL")
	envDuration(&c.RefreshTokenTTL, "REFRESH_TOKEN_TTL")

	envInt64(&c.LoginMaxAttempts, "LOGIN_MAX_ATTEMPTS")
	envDuration(&c.LoginAttemptWindow, "LOGIN_ATTEMPT_WINDOW")
	envDuration(&c.LoginLockoutDuration, "LOGIN_LOCKOUT_DURATION")
	envInt(&c.BcryptCost, "BCRYPT_COST")

	envString(&c.KVBackend, "KV_BACKEND")
	envString(&c.RedisURL, "REDIS_URL")
	envDuration(&c.StoreTimeout, "STORE_TIMEOUT")

	envInt(&c.AuditRetries, "AUDIT_RETRIES")
	envDuration(&c.AuditTimeout, "AUDIT_TIMEOUT")

	envString(&c.DatabaseFile, "DATABASE_FILE")
	envDuration(&c.LoginLogRetention, "LOGIN_LOG_RETENTION")
	envDuration(&c.HousekeepingInterval, "HOUSEKEEPING_INTERVAL")

	envInt(&c.RouteLimitLogs, "ROUTE_LIMIT_LOGS")
	envDuration(&c.RouteLimitWindow, "ROUTE_LIMIT_WINDOW")
	envBool(&c.TrustProxyHeaders, "TRUST_PROXY_HEADERS")

	envString(&c.Env, "ENV")
	envString(&c.LogLevel, "LOG_LEVEL")
	envString(&c.LogFormat, "LOG_FORMAT")
	envString(&c.LogFile, "LOG_FILE")
	envInt(&c.Port, "PORT")
	envDuration(&c.ShutdownGracePeriod, "SHUTDOWN_GRACE_PERIOD")
}

// Validate rejects values the service cannot run with. A missing signing
// secret or credential is not an error here; those fail the affected
// requests instead.
func (c Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.LoginMaxAttempts < 1 {
		errs = append(errs, errors.New("login_max_attempts must be at least 1"))
	}
	if c.BcryptCost < cryptox.MinCost {
		errs = append(errs, fmt.Errorf("bcrypt_cost must be at least %d", cryptox.MinCost))
	}
	if c.RouteLimitLogs < 1 {
		errs = append(errs, errors.New("route_limit_logs must be at least 1"))
	}
	switch c.KVBackend {
	case "redis", "memory":
	default:
		errs = append(errs, fmt.Errorf("kv_backend %q must be redis or memory", c.KVBackend))
	}

	for name, d := range map[string]time.Duration{
		"access_token_ttl":       c.AccessTokenTTL,
		"refresh_token_ttl":      c.RefreshTokenTTL,
		"login_attempt_window":   c.LoginAttemptWindow,
		"login_lockout_duration": c.LoginLockoutDuration,
		"store_timeout":          c.StoreTimeout,
		"audit_timeout":          c.AuditTimeout,
		"login_log_retention":    c.LoginLogRetention,
		"housekeeping_interval":  c.HousekeepingInterval,
		"route_limit_window":     c.RouteLimitWindow,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}

	return errors.Join(errs...)
}

// RefreshSecret returns the refresh token secret and whether it is borrowed
// from the access secret.
func (c Config) RefreshSecret() (secret []byte, shared bool) {
	if c.JWTRefreshSecret != "" {
		return []byte(c.JWTRefreshSecret), false
	}
	return []byte(c.JWTSecret), true
}

func envString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func envInt(dst *int, key string) {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = n
	}
}

func envInt64(dst *int64, key string) {
	if n, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		*dst = n
	}
}

func envBool(dst *bool, key string) {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		*dst = b
	}
}

func envDuration(dst *time.Duration, key string) {
	value := os.Getenv(key)
	if value == "" {
		return
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if d, err := time.ParseDuration(value); err == nil {
		*dst = d
		return
	}

	// Bare integers are seconds, matching the LOGIN_* defaults.
	if secs, err := strconv.Atoi(value); err == nil {
		*dst = time.Duration(secs) * time.Second
	}
}
