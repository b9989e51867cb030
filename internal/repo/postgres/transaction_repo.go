package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onetwonaz-bit/cointap/internal/domain/model"
)

type TransactionRepo struct {
	pool *pgxpool.Pool
}

func NewTransactionRepo(pool *pgxpool.Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Append writes a ledger entry inside the caller's transaction.
func (r *TransactionRepo) Append(ctx context.Context, tx pgx.Tx, entry model.Transaction) error {
	if tx == nil {
		return fmt.Errorf("tx is nil")
	}

	_, err := tx.Exec(ctx, `
INSERT INTO transactions (user_id, type, amount, description, status, withdrawal_id)
VALUES ($1, $2, $3, $4, $5, $6)
`, entry.UserID, entry.Type, entry.Amount, entry.Description, entry.Status, entry.WithdrawalID)
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}

	return nil
}

func (r *TransactionRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Transaction, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, type, amount, description, status, withdrawal_id, created_at
FROM transactions
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var entries []model.Transaction
	for rows.Next() {
		var e model.Transaction
		if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &e.Amount, &e.Description, &e.Status, &e.WithdrawalID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return entries, nil
}
