package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"

	"github.com/aussiebroadwan/siteadmin/internal/auth/domain"
	"github.com/aussiebroadwan/siteadmin/internal/auth/store"
	"github.com/aussiebroadwan/siteadmin/pkg/idx"
	"github.com/microcosm-cc/bluemonday"
)

const (
	DefaultAuditRetries = 3
	DefaultAuditTimeout = 2 * time.Second

	maxUserAgentLen = 512
	auditBackoff    = 50 * time.Millisecond
)

// AuditRecorder accepts login attempts for the audit log.
type AuditRecorder interface {
	Record(ctx context.Context, attempt domain.LoginAttempt) error
}

// AuditSink writes login attempts to the record store with bounded retries
// under a hard deadline. Delivery is at least once: a retry after an
// ambiguous failure reuses the same row id, so the primary key absorbs
// duplicates.
type AuditSink struct {
	Store     store.Store
	Retries   int
	Timeout   time.Duration
	Backoff   time.Duration
	Sanitizer *bluemonday.Policy
	Now       func() time.Time
}

// NewAuditSink returns a sink with the strict sanitiser and given limits.
// Non-positive values fall back to the defaults.
func NewAuditSink(st store.Store, retries int, timeout time.Duration) *AuditSink {
	if retries <= 0 {
		retries = DefaultAuditRetries
	}
	if timeout <= 0 {
		timeout = DefaultAuditTimeout
	}
	return &AuditSink{
		Store:     st,
		Retries:   retries,
		Timeout:   timeout,
		Backoff:   auditBackoff,
		Sanitizer: bluemonday.StrictPolicy(),
		Now:       time.Now,
	}
}

// Record stamps, sanitises and appends attempt. The returned error is the
// last store error; the caller decides whether to log it.
func (a *AuditSink) Record(ctx context.Context, attempt domain.LoginAttempt) error {
	now := a.Now().UTC()
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = now
	}
	if attempt.ID == "" {
		attempt.ID = idx.NewAt(attempt.CreatedAt).String()
	}
	if attempt.IPAddress == "" {
		attempt.IPAddress = "unknown"
	}
	attempt.UserAgent = a.sanitize(attempt.UserAgent)

	// The audit row must be written even if the client has gone away.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Timeout)
	defer cancel()

	var err error
	tries := 0
	for tries < a.Retries {
		tries++
		if err = a.Store.LoginAttempts().AppendLoginAttempt(ctx, attempt); err == nil {
			return nil
		}
		if tries == a.Retries {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("audit: append login attempt after %d tries: %w", tries, err)
		case <-time.After(a.Backoff * time.Duration(tries)):
		}
	}
	return fmt.Errorf("audit: append login attempt after %d tries: %w", tries, err)
}

// sanitize strips markup and control characters. The sanitiser entity-encodes
// its output, so that is undone: the log keeps the client's text, and escaping
// happens wherever it is rendered.
func (a *AuditSink) sanitize(ua string) string {
	if a.Sanitizer != nil {
		ua = html.UnescapeString(a.Sanitizer.Sanitize(ua))
	}
	ua = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, ua)
	ua = strings.TrimSpace(ua)

	if r := []rune(ua); len(r) > maxUserAgentLen {
		ua = string(r[:maxUserAgentLen])
	}
	if ua == "" {
		return "unknown"
	}
	return ua
}
