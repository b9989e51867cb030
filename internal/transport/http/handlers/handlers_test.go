package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/onetwonaz-bit/cointap/internal/domain/enums"
	"github.com/onetwonaz-bit/cointap/internal/domain/model"
	pgrepo "github.com/onetwonaz-bit/cointap/internal/repo/postgres"
	taskssvc "github.com/onetwonaz-bit/cointap/internal/services/tasks"
	userssvc "github.com/onetwonaz-bit/cointap/internal/services/users"
	walletsvc "github.com/onetwonaz-bit/cointap/internal/services/wallet"
	"github.com/onetwonaz-bit/cointap/internal/transport/http/dto"
)

type fixedUserStore struct {
	user model.User
}

func (s *fixedUserStore) Upsert(_ context.Context, telegramID int64, username, firstName, lastName string) (model.User, error) {
	if s.user.TelegramID == telegramID {
		return s.user, nil
	}
	return model.User{
		ID:         99,
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

func (s *fixedUserStore) FindByTelegramID(_ context.Context, telegramID int64) (model.User, error) {
	if s.user.TelegramID != telegramID {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return s.user, nil
}

func (s *fixedUserStore) FindByID(_ context.Context, userID int64) (model.User, error) {
	if s.user.ID != userID {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return s.user, nil
}

func (s *fixedUserStore) List(_ context.Context) ([]model.User, error) {
	return []model.User{s.user}, nil
}

func (s *fixedUserStore) SetBanned(_ context.Context, userID int64, banned bool, reason string) error {
	if s.user.ID != userID {
		return pgrepo.ErrUserNotFound
	}
	s.user.IsBanned = banned
	s.user.BanReason = reason
	return nil
}

func (s *fixedUserStore) Stats(_ context.Context) (pgrepo.UserStats, error) {
	return pgrepo.UserStats{TotalUsers: 1, TotalBalance: s.user.Balance}, nil
}

func (s *fixedUserStore) Credit(_ context.Context, _ pgx.Tx, _, _ int64) (int64, error) {
	return s.user.Balance, nil
}

func (s *fixedUserStore) SweepBalance(_ context.Context, _ pgx.Tx, _, minimum int64) (int64, error) {
	if s.user.Balance < minimum {
		return 0, pgrepo.ErrBalanceTooLow
	}
	return s.user.Balance, nil
}

type fixedTaskStore struct {
	task model.Task
}

func (s *fixedTaskStore) ListActive(_ context.Context) ([]model.Task, error) {
	return []model.Task{s.task}, nil
}

func (s *fixedTaskStore) ListAll(_ context.Context) ([]model.Task, error) {
	return []model.Task{s.task}, nil
}

func (s *fixedTaskStore) FindByID(_ context.Context, taskID int64) (model.Task, error) {
	if s.task.ID != taskID {
		return model.Task{}, pgrepo.ErrTaskNotFound
	}
	return s.task, nil
}

func (s *fixedTaskStore) Create(_ context.Context, task model.Task) (model.Task, error) {
	task.ID = 2
	task.IsActive = true
	return task, nil
}

func (s *fixedTaskStore) SetActive(_ context.Context, taskID int64, _ bool) error {
	if s.task.ID != taskID {
		return pgrepo.ErrTaskNotFound
	}
	return nil
}

func (s *fixedTaskStore) CountActive(_ context.Context) (int64, error) {
	return 1, nil
}

type fixedCompletionStore struct {
	completed bool
}

func (s *fixedCompletionStore) Exists(_ context.Context, _, _ int64) (bool, error) {
	return s.completed, nil
}

func (s *fixedCompletionStore) CompletedTaskIDs(_ context.Context, _ int64) (map[int64]struct{}, error) {
	ids := make(map[int64]struct{})
	if s.completed {
		ids[1] = struct{}{}
	}
	return ids, nil
}

func (s *fixedCompletionStore) Insert(_ context.Context, _ pgx.Tx, _, _ int64) (bool, error) {
	return !s.completed, nil
}

type fixedLedgerStore struct{}

func (s *fixedLedgerStore) Append(_ context.Context, _ pgx.Tx, _ model.Transaction) error {
	return nil
}

func (s *fixedLedgerStore) ListByUser(_ context.Context, userID int64, _ int) ([]model.Transaction, error) {
	return []model.Transaction{
		{
			ID:        1,
			UserID:    userID,
			Type:      enums.TransactionTypeTask,
			Amount:    20,
			Status:    enums.TransactionStatusCompleted,
			CreatedAt: time.Now().UTC(),
		},
	}, nil
}

type deniedMembership struct{}

func (deniedMembership) ChatMemberStatus(_ context.Context, _ string, _ int64) (string, error) {
	return "left", nil
}

func testRouter(userStore *fixedUserStore, taskStore *fixedTaskStore, completions *fixedCompletionStore) chi.Router {
	userService := userssvc.NewService(userssvc.Dependencies{Users: userStore})
	taskService := taskssvc.NewService(taskssvc.Dependencies{
		Tasks:       taskStore,
		Completions: completions,
		Users:       userStore,
		Ledger:      &fixedLedgerStore{},
		Membership:  deniedMembership{},
	})
	walletService := walletsvc.NewService(walletsvc.Dependencies{
		Users:       userStore,
		Withdrawals: nil,
		Ledger:      &fixedLedgerStore{},
	})

	userHandler := NewUserHandler(userService)
	taskHandler := NewTaskHandler(taskService)
	walletHandler := NewWalletHandler(walletService)

	r := chi.NewRouter()
	r.Post("/api/user/init", userHandler.Init)
	r.Get("/api/tasks/{telegramId}", taskHandler.List)
	r.Post("/api/tasks/verify", taskHandler.Verify)
	r.Get("/api/history/{telegramId}", walletHandler.History)
	return r
}

func defaultStores() (*fixedUserStore, *fixedTaskStore, *fixedCompletionStore) {
	userStore := &fixedUserStore{user: model.User{
		ID:         1,
		TelegramID: 42,
		Username:   "alice",
		FirstName:  "Alice",
		Balance:    120,
		CreatedAt:  time.Now().UTC(),
	}}
	taskStore := &fixedTaskStore{task: model.Task{
		ID:        1,
		Type:      enums.TaskTypeSubscribe,
		Title:     "Join the channel",
		ChannelID: "@news",
		Reward:    20,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}}
	return userStore, taskStore, &fixedCompletionStore{}
}

func TestInitUserEndpoint(t *testing.T) {
	router := testRouter(defaultStores())

	req := httptest.NewRequest(http.MethodPost, "/api/user/init", strings.NewReader(`{"telegramId":42,"username":"alice","firstName":"Alice","lastName":""}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.InitUserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected success")
	}
	if resp.User.TelegramID != 42 || resp.User.Balance != 120 {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}
}

func TestInitUserReportsBanState(t *testing.T) {
	userStore, taskStore, completions := defaultStores()
	userStore.user.IsBanned = true
	userStore.user.BanReason = "spam"
	router := testRouter(userStore, taskStore, completions)

	req := httptest.NewRequest(http.MethodPost, "/api/user/init", strings.NewReader(`{"telegramId":42,"username":"alice","firstName":"Alice","lastName":""}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.InitUserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.User.IsBanned || resp.User.BanReason != "spam" {
		t.Fatalf("expected ban state in payload, got %+v", resp.User)
	}
}

func TestInitUserRejectsBadBody(t *testing.T) {
	router := testRouter(defaultStores())

	req := httptest.NewRequest(http.MethodPost, "/api/user/init", strings.NewReader(`{"telegramId":`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestInitUserRequiresTelegramID(t *testing.T) {
	router := testRouter(defaultStores())

	req := httptest.NewRequest(http.MethodPost, "/api/user/init", strings.NewReader(`{"telegramId":0}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTaskListMarksCompletion(t *testing.T) {
	userStore, taskStore, completions := defaultStores()
	completions.completed = true
	router := testRouter(userStore, taskStore, completions)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.TaskListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Tasks) != 1 || !resp.Tasks[0].Completed {
		t.Fatalf("expected one completed task, got %+v", resp.Tasks)
	}
}

func TestTaskListUnknownUserIsSoftFailure(t *testing.T) {
	router := testRouter(defaultStores())

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/777", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success || resp.Message == "" {
		t.Fatalf("expected success=false with a message, got %+v", resp)
	}
}

func TestVerifyUnknownTaskIsSoftFailure(t *testing.T) {
	router := testRouter(defaultStores())

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/verify", strings.NewReader(`{"telegramId":42,"taskId":99}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success {
		t.Fatal("expected success=false for unknown task")
	}
	if resp.Message != "Завдання не знайдено" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

func TestHistoryUnknownUserIsSoftFailure(t *testing.T) {
	router := testRouter(defaultStores())

	req := httptest.NewRequest(http.MethodGet, "/api/history/777", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success {
		t.Fatal("expected success=false for unknown user")
	}
}

func TestVerifyAlreadyCompletedIsSoftFailure(t *testing.T) {
	userStore, taskStore, completions := defaultStores()
	completions.completed = true
	router := testRouter(userStore, taskStore, completions)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/verify", strings.NewReader(`{"telegramId":42,"taskId":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success {
		t.Fatal("expected success=false")
	}
	if resp.Message == "" {
		t.Fatal("expected a rejection message")
	}
}

func TestVerifyNotSubscribedIsSoftFailure(t *testing.T) {
	router := testRouter(defaultStores())

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/verify", strings.NewReader(`{"telegramId":42,"taskId":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success {
		t.Fatal("expected success=false for unsubscribed user")
	}
}

func TestHistoryEndpoint(t *testing.T) {
	router := testRouter(defaultStores())

	req := httptest.NewRequest(http.MethodGet, "/api/history/42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.HistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || len(resp.Transactions) != 1 {
		t.Fatalf("unexpected history payload: %+v", resp)
	}
}
