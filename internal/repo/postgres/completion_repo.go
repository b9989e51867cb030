package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CompletionRepo struct {
	pool *pgxpool.Pool
}

func NewCompletionRepo(pool *pgxpool.Pool) *CompletionRepo {
	return &CompletionRepo{pool: pool}
}

func (r *CompletionRepo) Exists(ctx context.Context, userID, taskID int64) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1
	FROM completed_tasks
	WHERE user_id = $1 AND task_id = $2
)
`, userID, taskID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check task completion: %w", err)
	}

	return exists, nil
}

func (r *CompletionRepo) CompletedTaskIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT task_id
FROM completed_tasks
WHERE user_id = $1
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list completed task ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan completed task id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completed task ids: %w", err)
	}

	return ids, nil
}

// Insert records a completion inside the caller's transaction. It
// reports false when the pair already exists; the unique constraint
// makes concurrent duplicates lose the race.
func (r *CompletionRepo) Insert(ctx context.Context, tx pgx.Tx, userID, taskID int64) (bool, error) {
	if tx == nil {
		return false, fmt.Errorf("tx is nil")
	}

	tag, err := tx.Exec(ctx, `
INSERT INTO completed_tasks (user_id, task_id)
VALUES ($1, $2)
ON CONFLICT (user_id, task_id) DO NOTHING
`, userID, taskID)
	if err != nil {
		return false, fmt.Errorf("insert task completion: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
