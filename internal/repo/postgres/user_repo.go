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

var (
	ErrUserNotFound = errors.New("user not found")

	// ErrBalanceTooLow is returned by SweepBalance when the held
	// balance is below the requested minimum (or the user is missing).
	ErrBalanceTooLow = errors.New("balance too low")
)

type UserRepo struct {
	pool *pgxpool.Pool
}

type UserStats struct {
	TotalUsers   int64
	BannedUsers  int64
	TotalBalance int64
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, telegram_id, username, first_name, last_name, balance, is_banned, ban_reason, created_at, updated_at`

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName,
		&u.Balance, &u.IsBanned, &u.BanReason, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

// Upsert registers a telegram account on first contact and returns the
// stored row afterwards. Names recorded at registration are never
// overwritten by later calls.
func (r *UserRepo) Upsert(ctx context.Context, telegramID int64, username, firstName, lastName string) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if telegramID <= 0 {
		return model.User{}, fmt.Errorf("invalid telegram_id")
	}

	user, err := scanUser(r.pool.QueryRow(ctx, `
INSERT INTO users (telegram_id, username, first_name, last_name)
VALUES ($1, $2, $3, $4)
ON CONFLICT (telegram_id) DO UPDATE SET
	updated_at = NOW()
RETURNING `+userColumns+`
`, telegramID, strings.TrimSpace(username), strings.TrimSpace(firstName), strings.TrimSpace(lastName)))
	if err != nil {
		return model.User{}, fmt.Errorf("upsert user: %w", err)
	}

	return user, nil
}

func (r *UserRepo) FindByTelegramID(ctx context.Context, telegramID int64) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if telegramID <= 0 {
		return model.User{}, fmt.Errorf("invalid telegram_id")
	}

	user, err := scanUser(r.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE telegram_id = $1
`, telegramID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("find user by telegram_id: %w", err)
	}

	return user, nil
}

func (r *UserRepo) FindByID(ctx context.Context, userID int64) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}

	user, err := scanUser(r.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = $1
`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+userColumns+`
FROM users
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}

	return users, nil
}

func (r *UserRepo) SetBanned(ctx context.Context, userID int64, banned bool, reason string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if !banned {
		reason = ""
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET is_banned = $2, ban_reason = $3, updated_at = NOW()
WHERE id = $1
`, userID, banned, strings.TrimSpace(reason))
	if err != nil {
		return fmt.Errorf("set user banned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *UserRepo) Stats(ctx context.Context) (UserStats, error) {
	if r.pool == nil {
		return UserStats{}, fmt.Errorf("postgres pool is nil")
	}

	var stats UserStats
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*), COUNT(*) FILTER (WHERE is_banned), COALESCE(SUM(balance), 0)
FROM users
`).Scan(&stats.TotalUsers, &stats.BannedUsers, &stats.TotalBalance)
	if err != nil {
		return UserStats{}, fmt.Errorf("user stats: %w", err)
	}

	return stats, nil
}

// Credit adds amount to the balance inside the caller's transaction and
// returns the resulting balance.
func (r *UserRepo) Credit(ctx context.Context, tx pgx.Tx, userID, amount int64) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("tx is nil")
	}

	var balance int64
	err := tx.QueryRow(ctx, `
UPDATE users
SET balance = balance + $2, updated_at = NOW()
WHERE id = $1
RETURNING balance
`, userID, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("credit user balance: %w", err)
	}

	return balance, nil
}

// SweepBalance zeroes the balance inside the caller's transaction and
// returns what was held, provided the balance was at least minimum. The
// row is locked so concurrent sweeps cannot double-pay.
func (r *UserRepo) SweepBalance(ctx context.Context, tx pgx.Tx, userID, minimum int64) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("tx is nil")
	}

	var held int64
	err := tx.QueryRow(ctx, `
UPDATE users u
SET balance = 0, updated_at = NOW()
FROM (
	SELECT id, balance
	FROM users
	WHERE id = $1
	FOR UPDATE
) prev
WHERE u.id = prev.id AND prev.balance >= $2
RETURNING prev.balance
`, userID, minimum).Scan(&held)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrBalanceTooLow
		}
		return 0, fmt.Errorf("sweep user balance: %w", err)
	}

	return held, nil
}
