package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onetwonaz-bit/cointap/internal/domain/enums"
	"github.com/onetwonaz-bit/cointap/internal/domain/model"
	"github.com/onetwonaz-bit/cointap/internal/domain/rules"
	pgrepo "github.com/onetwonaz-bit/cointap/internal/repo/postgres"
)

const historyLimit = 50

var (
	ErrValidation           = errors.New("validation error")
	ErrUserNotFound         = errors.New("user not found")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrWithdrawalNotFound   = errors.New("withdrawal not found")
	ErrWithdrawalNotPending = errors.New("withdrawal is not pending")
)

type UserStore interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (model.User, error)
	FindByID(ctx context.Context, userID int64) (model.User, error)
	SweepBalance(ctx context.Context, tx pgx.Tx, userID, minimum int64) (int64, error)
}

type WithdrawalStore interface {
	Create(ctx context.Context, tx pgx.Tx, userID, amount int64) (model.Withdrawal, error)
	SetStatus(ctx context.Context, tx pgx.Tx, withdrawalID int64, status enums.WithdrawalStatus) (model.Withdrawal, error)
	ListPending(ctx context.Context) ([]model.PendingWithdrawal, error)
	PendingStats(ctx context.Context) (pgrepo.WithdrawalStats, error)
}

// LedgerStore is append-only: entries are written once and never
// updated. The withdrawal row, not the ledger, carries the evolving
// request status.
type LedgerStore interface {
	Append(ctx context.Context, tx pgx.Tx, entry model.Transaction) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]model.Transaction, error)
}

// Notifier pushes a message to the admin account. Delivery is best
// effort; a failure never rolls back the request.
type Notifier interface {
	NotifyAdmin(ctx context.Context, text string) error
}

// Messenger delivers a plain message to a telegram chat.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

type Service struct {
	users       UserStore
	withdrawals WithdrawalStore
	ledger      LedgerStore
	notifier    Notifier
	messenger   Messenger
	runTx       func(context.Context, func(context.Context, pgx.Tx) error) error
}

type Dependencies struct {
	Pool        *pgxpool.Pool
	Users       UserStore
	Withdrawals WithdrawalStore
	Ledger      LedgerStore
	Notifier    Notifier
	Messenger   Messenger
}

type RequestResult struct {
	WithdrawalID int64
	Amount       int64
	NewBalance   int64
}

func NewService(deps Dependencies) *Service {
	return &Service{
		users:       deps.Users,
		withdrawals: deps.Withdrawals,
		ledger:      deps.Ledger,
		notifier:    deps.Notifier,
		messenger:   deps.Messenger,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, deps.Pool, fn)
		},
	}
}

// History returns the latest ledger entries of the user, newest first.
func (s *Service) History(ctx context.Context, telegramID int64) ([]model.Transaction, error) {
	if telegramID <= 0 {
		return nil, ErrValidation
	}
	if s.users == nil || s.ledger == nil {
		return nil, fmt.Errorf("wallet dependencies are not configured")
	}

	user, err := s.users.FindByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return s.ledger.ListByUser(ctx, user.ID, historyLimit)
}

// RequestWithdrawal opens a pending cash-out. The whole balance is
// taken off the account immediately; the recorded amount is the
// requested sum capped by the balance. Requires at least the minimum
// balance.
func (s *Service) RequestWithdrawal(ctx context.Context, telegramID, requested int64) (RequestResult, error) {
	if telegramID <= 0 {
		return RequestResult{}, ErrValidation
	}
	if s.users == nil || s.withdrawals == nil || s.ledger == nil {
		return RequestResult{}, fmt.Errorf("wallet dependencies are not configured")
	}

	user, err := s.users.FindByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return RequestResult{}, ErrUserNotFound
		}
		return RequestResult{}, err
	}

	var created model.Withdrawal
	err = s.runTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		held, err := s.users.SweepBalance(ctx, tx, user.ID, rules.MinWithdrawalUnits)
		if err != nil {
			if errors.Is(err, pgrepo.ErrBalanceTooLow) {
				return ErrInsufficientBalance
			}
			return err
		}

		amount := rules.ClampWithdrawal(requested, held)
		created, err = s.withdrawals.Create(ctx, tx, user.ID, amount)
		if err != nil {
			return err
		}

		return s.ledger.Append(ctx, tx, model.Transaction{
			UserID:       user.ID,
			Type:         enums.TransactionTypeWithdraw,
			Amount:       amount,
			Description:  fmt.Sprintf("Виведення %s$", rules.Dollars(amount)),
			Status:       enums.TransactionStatusPending,
			WithdrawalID: &created.ID,
		})
	})
	if err != nil {
		return RequestResult{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.NotifyAdmin(ctx, fmt.Sprintf(
			"💸 *Нова заявка на виведення*\n\nКористувач: %s (`%d`)\nСума: %s$\n\nПідтвердити: /approve\\_%d",
			user.DisplayName(), user.TelegramID, rules.Dollars(created.Amount), created.ID,
		))
	}

	return RequestResult{
		WithdrawalID: created.ID,
		Amount:       created.Amount,
		NewBalance:   0,
	}, nil
}

// Approve marks a pending request as paid out. The user is told about
// the decision on a best effort basis.
func (s *Service) Approve(ctx context.Context, withdrawalID int64) (model.Withdrawal, error) {
	return s.decide(ctx, withdrawalID, enums.WithdrawalStatusCompleted)
}

// Reject closes a pending request without returning the swept balance.
func (s *Service) Reject(ctx context.Context, withdrawalID int64) (model.Withdrawal, error) {
	return s.decide(ctx, withdrawalID, enums.WithdrawalStatusRejected)
}

func (s *Service) decide(ctx context.Context, withdrawalID int64, status enums.WithdrawalStatus) (model.Withdrawal, error) {
	if withdrawalID <= 0 {
		return model.Withdrawal{}, ErrValidation
	}
	if s.withdrawals == nil {
		return model.Withdrawal{}, fmt.Errorf("wallet dependencies are not configured")
	}

	var decided model.Withdrawal
	err := s.runTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		w, err := s.withdrawals.SetStatus(ctx, tx, withdrawalID, status)
		if err != nil {
			switch {
			case errors.Is(err, pgrepo.ErrWithdrawalNotFound):
				return ErrWithdrawalNotFound
			case errors.Is(err, pgrepo.ErrWithdrawalNotPending):
				return ErrWithdrawalNotPending
			}
			return err
		}
		decided = w
		return nil
	})
	if err != nil {
		return model.Withdrawal{}, err
	}

	s.notifyDecision(ctx, decided, status)

	return decided, nil
}

func (s *Service) notifyDecision(ctx context.Context, w model.Withdrawal, status enums.WithdrawalStatus) {
	if s.messenger == nil || s.users == nil {
		return
	}

	user, err := s.users.FindByID(ctx, w.UserID)
	if err != nil {
		return
	}

	text := fmt.Sprintf("✅ Вашу заявку на виведення %s$ підтверджено!", rules.Dollars(w.Amount))
	if status == enums.WithdrawalStatusRejected {
		text = fmt.Sprintf("❌ Вашу заявку на виведення %s$ відхилено.", rules.Dollars(w.Amount))
	}

	_ = s.messenger.SendText(ctx, user.TelegramID, text)
}

func (s *Service) PendingWithdrawals(ctx context.Context) ([]model.PendingWithdrawal, error) {
	if s.withdrawals == nil {
		return nil, fmt.Errorf("withdrawal store is nil")
	}
	return s.withdrawals.ListPending(ctx)
}

func (s *Service) PendingStats(ctx context.Context) (pgrepo.WithdrawalStats, error) {
	if s.withdrawals == nil {
		return pgrepo.WithdrawalStats{}, fmt.Errorf("withdrawal store is nil")
	}
	return s.withdrawals.PendingStats(ctx)
}
