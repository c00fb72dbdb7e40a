package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/siteadmin/internal/auth/domain"
)

type credentialsRepo struct {
	db dbtx
}

func (r *credentialsRepo) GetCredential(ctx context.Context, principal string) (domain.Credential, error) {
	var (
		c         domain.Credential
		updatedAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT principal, password_hash, updated_at FROM admin_credentials WHERE principal = ?`,
		principal,
	).Scan(&c.Principal, &c.PasswordHash, &updatedAt)
	if err != nil {
		return domain.Credential{}, mapNotFound(err)
	}
	c.UpdatedAt = fromMillis(updatedAt)
	return c, nil
}

func (r *credentialsRepo) UpsertCredential(ctx context.Context, c domain.Credential) error {
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_credentials (principal, password_hash, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (principal) DO UPDATE SET
			password_hash = excluded.password_hash,
			updated_at    = excluded.updated_at`,
		c.Principal, c.PasswordHash, toMillis(c.UpdatedAt),
	)
	return err
}
