package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onetwonaz-bit/cointap/internal/domain/model"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

const taskColumns = `id, type, title, description, link, channel_id, reward, is_active, created_at`

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	err := row.Scan(
		&t.ID, &t.Type, &t.Title, &t.Description, &t.Link,
		&t.ChannelID, &t.Reward, &t.IsActive, &t.CreatedAt,
	)
	return t, err
}

func (r *TaskRepo) listWhere(ctx context.Context, clause string) ([]model.Task, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+taskColumns+`
FROM tasks
`+clause+`
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task rows: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepo) ListActive(ctx context.Context) ([]model.Task, error) {
	return r.listWhere(ctx, "WHERE is_active")
}

func (r *TaskRepo) ListAll(ctx context.Context) ([]model.Task, error) {
	return r.listWhere(ctx, "")
}

// FindByID looks a task up regardless of its active flag.
func (r *TaskRepo) FindByID(ctx context.Context, taskID int64) (model.Task, error) {
	if r.pool == nil {
		return model.Task{}, fmt.Errorf("postgres pool is nil")
	}

	task, err := scanTask(r.pool.QueryRow(ctx, `
SELECT `+taskColumns+`
FROM tasks
WHERE id = $1
`, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Task{}, ErrTaskNotFound
		}
		return model.Task{}, fmt.Errorf("find task by id: %w", err)
	}

	return task, nil
}

func (r *TaskRepo) Create(ctx context.Context, task model.Task) (model.Task, error) {
	if r.pool == nil {
		return model.Task{}, fmt.Errorf("postgres pool is nil")
	}

	created, err := scanTask(r.pool.QueryRow(ctx, `
INSERT INTO tasks (type, title, description, link, channel_id, reward)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+taskColumns+`
`, task.Type, strings.TrimSpace(task.Title), strings.TrimSpace(task.Description),
		strings.TrimSpace(task.Link), strings.TrimSpace(task.ChannelID), task.Reward))
	if err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}

	return created, nil
}

func (r *TaskRepo) SetActive(ctx context.Context, taskID int64, active bool) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE tasks
SET is_active = $2
WHERE id = $1
`, taskID, active)
	if err != nil {
		return fmt.Errorf("set task active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

func (r *TaskRepo) CountActive(ctx context.Context) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int64
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM tasks
WHERE is_active
`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active tasks: %w", err)
	}

	return count, nil
}
