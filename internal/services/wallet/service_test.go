package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/onetwonaz-bit/cointap/internal/domain/enums"
	"github.com/onetwonaz-bit/cointap/internal/domain/model"
	pgrepo "github.com/onetwonaz-bit/cointap/internal/repo/postgres"
)

type userStoreStub struct {
	users map[int64]model.User
}

func newUserStoreStub() *userStoreStub {
	return &userStoreStub{users: make(map[int64]model.User)}
}

func (s *userStoreStub) add(u model.User) {
	s.users[u.ID] = u
}

func (s *userStoreStub) FindByTelegramID(_ context.Context, telegramID int64) (model.User, error) {
	for _, u := range s.users {
		if u.TelegramID == telegramID {
			return u, nil
		}
	}
	return model.User{}, pgrepo.ErrUserNotFound
}

func (s *userStoreStub) FindByID(_ context.Context, userID int64) (model.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return u, nil
}

func (s *userStoreStub) SweepBalance(_ context.Context, _ pgx.Tx, userID, minimum int64) (int64, error) {
	u, ok := s.users[userID]
	if !ok || u.Balance < minimum {
		return 0, pgrepo.ErrBalanceTooLow
	}
	held := u.Balance
	u.Balance = 0
	s.users[userID] = u
	return held, nil
}

type withdrawalStoreStub struct {
	nextID  int64
	records map[int64]model.Withdrawal
}

func newWithdrawalStoreStub() *withdrawalStoreStub {
	return &withdrawalStoreStub{nextID: 1, records: make(map[int64]model.Withdrawal)}
}

func (s *withdrawalStoreStub) Create(_ context.Context, _ pgx.Tx, userID, amount int64) (model.Withdrawal, error) {
	w := model.Withdrawal{
		ID:        s.nextID,
		UserID:    userID,
		Amount:    amount,
		Status:    enums.WithdrawalStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	s.nextID++
	s.records[w.ID] = w
	return w, nil
}

func (s *withdrawalStoreStub) SetStatus(_ context.Context, _ pgx.Tx, withdrawalID int64, status enums.WithdrawalStatus) (model.Withdrawal, error) {
	w, ok := s.records[withdrawalID]
	if !ok {
		return model.Withdrawal{}, pgrepo.ErrWithdrawalNotFound
	}
	if w.Status != enums.WithdrawalStatusPending {
		return model.Withdrawal{}, pgrepo.ErrWithdrawalNotPending
	}
	now := time.Now().UTC()
	w.Status = status
	w.ProcessedAt = &now
	s.records[withdrawalID] = w
	return w, nil
}

func (s *withdrawalStoreStub) ListPending(_ context.Context) ([]model.PendingWithdrawal, error) {
	var pending []model.PendingWithdrawal
	for _, w := range s.records {
		if w.Status == enums.WithdrawalStatusPending {
			pending = append(pending, model.PendingWithdrawal{Withdrawal: w})
		}
	}
	return pending, nil
}

func (s *withdrawalStoreStub) PendingStats(_ context.Context) (pgrepo.WithdrawalStats, error) {
	var stats pgrepo.WithdrawalStats
	for _, w := range s.records {
		if w.Status == enums.WithdrawalStatusPending {
			stats.PendingCount++
			stats.PendingAmount += w.Amount
		}
	}
	return stats, nil
}

type ledgerStoreStub struct {
	entries []model.Transaction
}

func (s *ledgerStoreStub) Append(_ context.Context, _ pgx.Tx, entry model.Transaction) error {
	entry.ID = int64(len(s.entries) + 1)
	s.entries = append(s.entries, entry)
	return nil
}

func (s *ledgerStoreStub) ListByUser(_ context.Context, userID int64, limit int) ([]model.Transaction, error) {
	var entries []model.Transaction
	for i := len(s.entries) - 1; i >= 0 && len(entries) < limit; i-- {
		if s.entries[i].UserID == userID {
			entries = append(entries, s.entries[i])
		}
	}
	return entries, nil
}

type notifierStub struct {
	messages []string
	err      error
}

func (s *notifierStub) NotifyAdmin(_ context.Context, text string) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, text)
	return nil
}

type messengerStub struct {
	sent map[int64][]string
}

func newMessengerStub() *messengerStub {
	return &messengerStub{sent: make(map[int64][]string)}
}

func (s *messengerStub) SendText(_ context.Context, chatID int64, text string) error {
	s.sent[chatID] = append(s.sent[chatID], text)
	return nil
}

func newTestService(users *userStoreStub, withdrawals *withdrawalStoreStub, ledger *ledgerStoreStub, notifier Notifier, messenger Messenger) *Service {
	svc := NewService(Dependencies{
		Users:       users,
		Withdrawals: withdrawals,
		Ledger:      ledger,
		Notifier:    notifier,
		Messenger:   messenger,
	})
	svc.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return fn(ctx, nil)
	}
	return svc
}

func TestRequestWithdrawalClampsAndSweeps(t *testing.T) {
	users := newUserStoreStub()
	withdrawals := newWithdrawalStoreStub()
	ledger := &ledgerStoreStub{}
	notifier := &notifierStub{}

	users.add(model.User{ID: 1, TelegramID: 42, FirstName: "Alice", Balance: 250})

	svc := newTestService(users, withdrawals, ledger, notifier, nil)

	result, err := svc.RequestWithdrawal(context.Background(), 42, 100)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if result.Amount != 100 {
		t.Fatalf("expected amount 100, got %d", result.Amount)
	}
	if result.NewBalance != 0 {
		t.Fatalf("expected zero balance, got %d", result.NewBalance)
	}
	if users.users[1].Balance != 0 {
		t.Fatalf("expected stored balance 0, got %d", users.users[1].Balance)
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("expected one admin notification, got %d", len(notifier.messages))
	}
	if len(ledger.entries) != 1 || ledger.entries[0].Status != enums.TransactionStatusPending {
		t.Fatalf("expected pending ledger entry, got %+v", ledger.entries)
	}
}

func TestRequestWithdrawalFullBalanceByDefault(t *testing.T) {
	users := newUserStoreStub()
	withdrawals := newWithdrawalStoreStub()
	ledger := &ledgerStoreStub{}

	users.add(model.User{ID: 1, TelegramID: 42, Balance: 250})

	svc := newTestService(users, withdrawals, ledger, nil, nil)

	result, err := svc.RequestWithdrawal(context.Background(), 42, 0)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if result.Amount != 250 {
		t.Fatalf("expected amount 250, got %d", result.Amount)
	}

	over, err := svc.RequestWithdrawal(context.Background(), 42, 400)
	if err == nil {
		t.Fatalf("expected insufficient balance after sweep, got %+v", over)
	}
}

func TestRequestWithdrawalInsufficientBalance(t *testing.T) {
	users := newUserStoreStub()
	withdrawals := newWithdrawalStoreStub()
	ledger := &ledgerStoreStub{}
	notifier := &notifierStub{}

	users.add(model.User{ID: 1, TelegramID: 42, Balance: 50})

	svc := newTestService(users, withdrawals, ledger, notifier, nil)

	if _, err := svc.RequestWithdrawal(context.Background(), 42, 50); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if users.users[1].Balance != 50 {
		t.Fatalf("expected balance untouched, got %d", users.users[1].Balance)
	}
	if len(withdrawals.records) != 0 {
		t.Fatalf("expected no withdrawal records, got %d", len(withdrawals.records))
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("expected no notifications, got %d", len(notifier.messages))
	}
}

func TestRequestSurvivesNotifierFailure(t *testing.T) {
	users := newUserStoreStub()
	users.add(model.User{ID: 1, TelegramID: 42, Balance: 150})

	svc := newTestService(users, newWithdrawalStoreStub(), &ledgerStoreStub{}, &notifierStub{err: errors.New("telegram down")}, nil)

	if _, err := svc.RequestWithdrawal(context.Background(), 42, 150); err != nil {
		t.Fatalf("request should not fail on notifier error: %v", err)
	}
}

func TestApproveNotifiesUserAndKeepsLedgerEntry(t *testing.T) {
	users := newUserStoreStub()
	withdrawals := newWithdrawalStoreStub()
	ledger := &ledgerStoreStub{}
	messenger := newMessengerStub()

	users.add(model.User{ID: 1, TelegramID: 42, Balance: 150})

	svc := newTestService(users, withdrawals, ledger, nil, messenger)

	result, err := svc.RequestWithdrawal(context.Background(), 42, 150)
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	decided, err := svc.Approve(context.Background(), result.WithdrawalID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if decided.Status != enums.WithdrawalStatusCompleted {
		t.Fatalf("expected completed status, got %s", decided.Status)
	}
	if decided.ProcessedAt == nil {
		t.Fatal("expected processed_at to be set")
	}
	if len(ledger.entries) != 1 || ledger.entries[0].Status != enums.TransactionStatusPending {
		t.Fatalf("expected the ledger entry to stay as written, got %+v", ledger.entries)
	}
	if len(messenger.sent[42]) != 1 {
		t.Fatalf("expected one user message, got %d", len(messenger.sent[42]))
	}
}

func TestRejectKeepsBalanceAtZero(t *testing.T) {
	users := newUserStoreStub()
	withdrawals := newWithdrawalStoreStub()
	ledger := &ledgerStoreStub{}

	users.add(model.User{ID: 1, TelegramID: 42, Balance: 150})

	svc := newTestService(users, withdrawals, ledger, nil, nil)

	result, err := svc.RequestWithdrawal(context.Background(), 42, 150)
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	decided, err := svc.Reject(context.Background(), result.WithdrawalID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if decided.Status != enums.WithdrawalStatusRejected {
		t.Fatalf("expected rejected status, got %s", decided.Status)
	}
	if users.users[1].Balance != 0 {
		t.Fatalf("expected balance to stay at zero, got %d", users.users[1].Balance)
	}
	if ledger.entries[0].Status != enums.TransactionStatusPending {
		t.Fatalf("expected the ledger entry to stay as written, got %s", ledger.entries[0].Status)
	}
}

func TestSecondDecisionFails(t *testing.T) {
	users := newUserStoreStub()
	withdrawals := newWithdrawalStoreStub()
	ledger := &ledgerStoreStub{}

	users.add(model.User{ID: 1, TelegramID: 42, Balance: 150})

	svc := newTestService(users, withdrawals, ledger, nil, nil)

	result, err := svc.RequestWithdrawal(context.Background(), 42, 150)
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if _, err := svc.Approve(context.Background(), result.WithdrawalID); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	if _, err := svc.Reject(context.Background(), result.WithdrawalID); !errors.Is(err, ErrWithdrawalNotPending) {
		t.Fatalf("expected ErrWithdrawalNotPending, got %v", err)
	}
}

func TestDecideUnknownWithdrawal(t *testing.T) {
	svc := newTestService(newUserStoreStub(), newWithdrawalStoreStub(), &ledgerStoreStub{}, nil, nil)

	if _, err := svc.Approve(context.Background(), 999); !errors.Is(err, ErrWithdrawalNotFound) {
		t.Fatalf("expected ErrWithdrawalNotFound, got %v", err)
	}
}

func TestHistoryNewestFirstLimited(t *testing.T) {
	users := newUserStoreStub()
	ledger := &ledgerStoreStub{}

	users.add(model.User{ID: 1, TelegramID: 42})
	for i := 0; i < 60; i++ {
		_ = ledger.Append(context.Background(), nil, model.Transaction{
			UserID: 1,
			Type:   enums.TransactionTypeTask,
			Amount: int64(i + 1),
			Status: enums.TransactionStatusCompleted,
		})
	}

	svc := newTestService(users, newWithdrawalStoreStub(), ledger, nil, nil)

	history, err := svc.History(context.Background(), 42)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 50 {
		t.Fatalf("expected 50 entries, got %d", len(history))
	}
	if history[0].Amount != 60 {
		t.Fatalf("expected newest entry first, got amount %d", history[0].Amount)
	}
}
