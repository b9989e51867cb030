package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onetwonaz-bit/cointap/internal/domain/enums"
	"github.com/onetwonaz-bit/cointap/internal/domain/model"
)

var (
	ErrWithdrawalNotFound = errors.New("withdrawal not found")

	// ErrWithdrawalNotPending is returned when a decision is applied to
	// a request that was already processed.
	ErrWithdrawalNotPending = errors.New("withdrawal is not pending")
)

type WithdrawalRepo struct {
	pool *pgxpool.Pool
}

type WithdrawalStats struct {
	PendingCount  int64
	PendingAmount int64
}

func NewWithdrawalRepo(pool *pgxpool.Pool) *WithdrawalRepo {
	return &WithdrawalRepo{pool: pool}
}

// Create opens a pending request inside the caller's transaction.
func (r *WithdrawalRepo) Create(ctx context.Context, tx pgx.Tx, userID, amount int64) (model.Withdrawal, error) {
	if tx == nil {
		return model.Withdrawal{}, fmt.Errorf("tx is nil")
	}

	var w model.Withdrawal
	err := tx.QueryRow(ctx, `
INSERT INTO withdrawals (user_id, amount)
VALUES ($1, $2)
RETURNING id, user_id, amount, status, created_at, processed_at
`, userID, amount).Scan(&w.ID, &w.UserID, &w.Amount, &w.Status, &w.CreatedAt, &w.ProcessedAt)
	if err != nil {
		return model.Withdrawal{}, fmt.Errorf("create withdrawal: %w", err)
	}

	return w, nil
}

// SetStatus moves a pending request to a terminal status inside the
// caller's transaction. The status guard makes a second decision on the
// same request fail instead of silently rewriting it.
func (r *WithdrawalRepo) SetStatus(ctx context.Context, tx pgx.Tx, withdrawalID int64, status enums.WithdrawalStatus) (model.Withdrawal, error) {
	if tx == nil {
		return model.Withdrawal{}, fmt.Errorf("tx is nil")
	}

	var w model.Withdrawal
	err := tx.QueryRow(ctx, `
UPDATE withdrawals
SET status = $2, processed_at = NOW()
WHERE id = $1 AND status = 'pending'
RETURNING id, user_id, amount, status, created_at, processed_at
`, withdrawalID, status).Scan(&w.ID, &w.UserID, &w.Amount, &w.Status, &w.CreatedAt, &w.ProcessedAt)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Withdrawal{}, fmt.Errorf("set withdrawal status: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM withdrawals WHERE id = $1)
`, withdrawalID).Scan(&exists); err != nil {
		return model.Withdrawal{}, fmt.Errorf("check withdrawal exists: %w", err)
	}
	if exists {
		return model.Withdrawal{}, ErrWithdrawalNotPending
	}
	return model.Withdrawal{}, ErrWithdrawalNotFound
}

func (r *WithdrawalRepo) ListPending(ctx context.Context) ([]model.PendingWithdrawal, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT w.id, w.user_id, w.amount, w.status, w.created_at, w.processed_at,
	u.telegram_id, u.username, u.first_name
FROM withdrawals w
JOIN users u ON u.id = w.user_id
WHERE w.status = 'pending'
ORDER BY w.created_at
`)
	if err != nil {
		return nil, fmt.Errorf("list pending withdrawals: %w", err)
	}
	defer rows.Close()

	var pending []model.PendingWithdrawal
	for rows.Next() {
		var p model.PendingWithdrawal
		err := rows.Scan(
			&p.ID, &p.UserID, &p.Amount, &p.Status, &p.CreatedAt, &p.ProcessedAt,
			&p.TelegramID, &p.Username, &p.FirstName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pending withdrawal row: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending withdrawal rows: %w", err)
	}

	return pending, nil
}

func (r *WithdrawalRepo) PendingStats(ctx context.Context) (WithdrawalStats, error) {
	if r.pool == nil {
		return WithdrawalStats{}, fmt.Errorf("postgres pool is nil")
	}

	var stats WithdrawalStats
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*), COALESCE(SUM(amount), 0)
FROM withdrawals
WHERE status = 'pending'
`).Scan(&stats.PendingCount, &stats.PendingAmount)
	if err != nil {
		return WithdrawalStats{}, fmt.Errorf("withdrawal stats: %w", err)
	}

	return stats, nil
}
