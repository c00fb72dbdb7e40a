package sqlite

import (
	"database/sql"

	"github.com/aussiebroadwan/siteadmin/internal/auth/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Credentials() store.Credentials { return &credentialsRepo{db: t.tx} }

// Inside a transaction there is nothing further to begin; list and count
// already share the caller's snapshot.
func (t *txStore) LoginAttempts() store.LoginAttempts { return &loginAttemptsRepo{db: t.tx} }
