package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/siteadmin/internal/auth/domain"
)

var (
	ErrNotFound = errors.New("store: not found")
)

// Store is the record store. Concrete drivers (sqlite for now) implement
// this. It exposes sub-repositories to keep concerns tidy and testable, and
// so callers cannot start a transaction from inside one.
type Store interface {
	Credentials() Credentials
	LoginAttempts() LoginAttempts

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped view of the same repositories.
type Tx interface {
	Credentials() Credentials
	LoginAttempts() LoginAttempts
}

type Credentials interface {
	// GetCredential returns the stored hash for principal or ErrNotFound.
	GetCredential(ctx context.Context, principal string) (domain.Credential, error)

	// UpsertCredential inserts or replaces the hash and bumps updated_at.
	UpsertCredential(ctx context.Context, c domain.Credential) error
}

type LoginAttempts interface {
	// AppendLoginAttempt writes one audit row. Rows are never updated.
	AppendLoginAttempt(ctx context.Context, a domain.LoginAttempt) error

	// ListLoginAttempts returns one page of rows matching f and the total
	// number of matching rows.
	ListLoginAttempts(ctx context.Context, f domain.LoginAttemptFilter, p domain.Page) ([]domain.LoginAttempt, int64, error)

	// LoginAttemptStats aggregates success and failure counts over f.
	LoginAttemptStats(ctx context.Context, f domain.LoginAttemptFilter) (domain.LoginAttemptStats, error)

	// DeleteLoginAttemptsBefore is retention housekeeping. It returns the
	// number of rows removed.
	DeleteLoginAttemptsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
