package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/siteadmin/internal/auth/domain"
)

// sortColumns is the only route from a request parameter into SQL text.
var sortColumns = map[domain.SortField]string{
	domain.SortByCreatedAt: "created_at",
	domain.SortByIPAddress: "ip_address",
	domain.SortBySuccess:   "success",
}

type loginAttemptsRepo struct {
	db dbtx

	// begin opens a read snapshot for list+count. Nil inside a transaction.
	begin func(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

func (r *loginAttemptsRepo) AppendLoginAttempt(ctx context.Context, a domain.LoginAttempt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO login_attempts (id, ip_address, user_agent, success, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.IPAddress, a.UserAgent, boolToInt(a.Success), toMillis(a.CreatedAt),
	)
	return err
}

func (r *loginAttemptsRepo) ListLoginAttempts(
	ctx context.Context,
	f domain.LoginAttemptFilter,
	p domain.Page,
) ([]domain.LoginAttempt, int64, error) {
	col, ok := sortColumns[p.SortBy]
	if !ok {
		col = sortColumns[domain.SortByCreatedAt]
	}
	dir := "ASC"
	if p.Desc {
		dir = "DESC"
	}

	where, args := whereClause(f)

	q := r.db
	if r.begin != nil {
		tx, err := r.begin(ctx, nil)
		if err != nil {
			return nil, 0, err
		}
		defer func() { _ = tx.Rollback() }()
		q = tx
	}

	var total int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM login_attempts`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count login attempts: %w", err)
	}

	// id breaks ties so pages never overlap.
	query := fmt.Sprintf(
		`SELECT id, ip_address, user_agent, success, created_at FROM login_attempts%s ORDER BY %s %s, id %s LIMIT ? OFFSET ?`,
		where, col, dir, dir,
	)
	rows, err := q.QueryContext(ctx, query, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list login attempts: %w", err)
	}
	defer rows.Close()

	out := make([]domain.LoginAttempt, 0, p.Limit)
	for rows.Next() {
		var (
			a         domain.LoginAttempt
			success   int
			createdAt int64
		)
		if err := rows.Scan(&a.ID, &a.IPAddress, &a.UserAgent, &success, &createdAt); err != nil {
			return nil, 0, err
		}
		a.Success = success == 1
		a.CreatedAt = fromMillis(createdAt)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (r *loginAttemptsRepo) LoginAttemptStats(
	ctx context.Context,
	f domain.LoginAttemptFilter,
) (domain.LoginAttemptStats, error) {
	where, args := whereClause(f)

	var s domain.LoginAttemptStats
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(success), 0) FROM login_attempts`+where, args...,
	).Scan(&s.TotalAttempts, &s.SuccessCount)
	if err != nil {
		return domain.LoginAttemptStats{}, fmt.Errorf("login attempt stats: %w", err)
	}
	s.FailedCount = s.TotalAttempts - s.SuccessCount
	return s, nil
}

func (r *loginAttemptsRepo) DeleteLoginAttemptsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM login_attempts WHERE created_at < ?`, toMillis(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// whereClause renders f as " WHERE ..." with positional arguments, or "" when
// f has no constraints.
func whereClause(f domain.LoginAttemptFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if !f.Start.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, toMillis(f.Start))
	}
	if !f.End.IsZero() {
		conds = append(conds, "created_at < ?")
		args = append(args, toMillis(f.End))
	}
	if f.IPAddress != "" {
		conds = append(conds, "ip_address = ?")
		args = append(args, f.IPAddress)
	}
	if f.Success != nil {
		conds = append(conds, "success = ?")
		args = append(args, boolToInt(*f.Success))
	}
	if f.UserAgent != "" {
		// instr avoids LIKE wildcard escaping.
		conds = append(conds, "instr(user_agent, ?) > 0")
		args = append(args, f.UserAgent)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
