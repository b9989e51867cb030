package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onetwonaz-bit/cointap/internal/domain/enums"
	"github.com/onetwonaz-bit/cointap/internal/domain/model"
	"github.com/onetwonaz-bit/cointap/internal/domain/rules"
	pgrepo "github.com/onetwonaz-bit/cointap/internal/repo/postgres"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrUserNotFound     = errors.New("user not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrAlreadyCompleted = errors.New("task already completed")
	ErrNotSubscribed    = errors.New("channel subscription not confirmed")
)

type TaskStore interface {
	ListActive(ctx context.Context) ([]model.Task, error)
	ListAll(ctx context.Context) ([]model.Task, error)
	FindByID(ctx context.Context, taskID int64) (model.Task, error)
	Create(ctx context.Context, task model.Task) (model.Task, error)
	SetActive(ctx context.Context, taskID int64, active bool) error
	CountActive(ctx context.Context) (int64, error)
}

type CompletionStore interface {
	Exists(ctx context.Context, userID, taskID int64) (bool, error)
	CompletedTaskIDs(ctx context.Context, userID int64) (map[int64]struct{}, error)
	Insert(ctx context.Context, tx pgx.Tx, userID, taskID int64) (bool, error)
}

type UserStore interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (model.User, error)
	Credit(ctx context.Context, tx pgx.Tx, userID, amount int64) (int64, error)
}

type LedgerStore interface {
	Append(ctx context.Context, tx pgx.Tx, entry model.Transaction) error
}

// MembershipChecker answers whether a telegram account belongs to a
// channel, using the raw status strings of the Bot API.
type MembershipChecker interface {
	ChatMemberStatus(ctx context.Context, channelID string, telegramID int64) (string, error)
}

type Service struct {
	tasks       TaskStore
	completions CompletionStore
	users       UserStore
	ledger      LedgerStore
	membership  MembershipChecker
	runTx       func(context.Context, func(context.Context, pgx.Tx) error) error
}

type Dependencies struct {
	Pool        *pgxpool.Pool
	Tasks       TaskStore
	Completions CompletionStore
	Users       UserStore
	Ledger      LedgerStore
	Membership  MembershipChecker
}

type CreateInput struct {
	Type        string
	Title       string
	Description string
	Link        string
	ChannelID   string
	Reward      int64
}

type CompleteResult struct {
	Task       model.Task
	Reward     int64
	NewBalance int64
}

func NewService(deps Dependencies) *Service {
	return &Service{
		tasks:       deps.Tasks,
		completions: deps.Completions,
		users:       deps.Users,
		ledger:      deps.Ledger,
		membership:  deps.Membership,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, deps.Pool, fn)
		},
	}
}

// ListForUser returns every active task annotated with whether the user
// already completed it.
func (s *Service) ListForUser(ctx context.Context, telegramID int64) ([]model.TaskWithStatus, error) {
	if telegramID <= 0 {
		return nil, ErrValidation
	}
	if s.tasks == nil || s.completions == nil || s.users == nil {
		return nil, fmt.Errorf("task dependencies are not configured")
	}

	user, err := s.users.FindByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	active, err := s.tasks.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	done, err := s.completions.CompletedTaskIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	annotated := make([]model.TaskWithStatus, 0, len(active))
	for _, task := range active {
		_, completed := done[task.ID]
		annotated = append(annotated, model.TaskWithStatus{Task: task, Completed: completed})
	}

	return annotated, nil
}

func (s *Service) ListAll(ctx context.Context) ([]model.Task, error) {
	if s.tasks == nil {
		return nil, fmt.Errorf("task store is nil")
	}
	return s.tasks.ListAll(ctx)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (model.Task, error) {
	if s.tasks == nil {
		return model.Task{}, fmt.Errorf("task store is nil")
	}

	taskType, ok := enums.ParseTaskType(in.Type)
	if !ok {
		return model.Task{}, ErrValidation
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Task{}, ErrValidation
	}

	reward := in.Reward
	if reward <= 0 {
		reward = rules.DefaultTaskReward
	}

	return s.tasks.Create(ctx, model.Task{
		Type:        taskType,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Link:        strings.TrimSpace(in.Link),
		ChannelID:   strings.TrimSpace(in.ChannelID),
		Reward:      reward,
	})
}

func (s *Service) Deactivate(ctx context.Context, taskID int64) error {
	if taskID <= 0 {
		return ErrValidation
	}
	if s.tasks == nil {
		return fmt.Errorf("task store is nil")
	}

	if err := s.tasks.SetActive(ctx, taskID, false); err != nil {
		if errors.Is(err, pgrepo.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	return nil
}

func (s *Service) CountActive(ctx context.Context) (int64, error) {
	if s.tasks == nil {
		return 0, fmt.Errorf("task store is nil")
	}
	return s.tasks.CountActive(ctx)
}

// VerifyAndComplete checks the task conditions for the user, then
// records the completion and credits the reward in one transaction. A
// repeat attempt fails with ErrAlreadyCompleted; for subscribe tasks
// bound to a channel the membership check must pass first.
func (s *Service) VerifyAndComplete(ctx context.Context, telegramID, taskID int64) (CompleteResult, error) {
	if telegramID <= 0 || taskID <= 0 {
		return CompleteResult{}, ErrValidation
	}
	if s.tasks == nil || s.completions == nil || s.users == nil || s.ledger == nil {
		return CompleteResult{}, fmt.Errorf("task dependencies are not configured")
	}

	user, err := s.users.FindByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return CompleteResult{}, ErrUserNotFound
		}
		return CompleteResult{}, err
	}

	done, err := s.completions.Exists(ctx, user.ID, taskID)
	if err != nil {
		return CompleteResult{}, err
	}
	if done {
		return CompleteResult{}, ErrAlreadyCompleted
	}

	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrTaskNotFound) {
			return CompleteResult{}, ErrTaskNotFound
		}
		return CompleteResult{}, err
	}

	if task.Type == enums.TaskTypeSubscribe && task.ChannelID != "" {
		if s.membership == nil {
			return CompleteResult{}, ErrNotSubscribed
		}
		status, err := s.membership.ChatMemberStatus(ctx, task.ChannelID, telegramID)
		if err != nil {
			return CompleteResult{}, ErrNotSubscribed
		}
		switch status {
		case "member", "administrator", "creator":
		default:
			return CompleteResult{}, ErrNotSubscribed
		}
	}

	var newBalance int64
	err = s.runTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		inserted, err := s.completions.Insert(ctx, tx, user.ID, task.ID)
		if err != nil {
			return err
		}
		if !inserted {
			return ErrAlreadyCompleted
		}

		newBalance, err = s.users.Credit(ctx, tx, user.ID, task.Reward)
		if err != nil {
			return err
		}

		return s.ledger.Append(ctx, tx, model.Transaction{
			UserID:      user.ID,
			Type:        enums.TransactionTypeTask,
			Amount:      task.Reward,
			Description: task.Title,
			Status:      enums.TransactionStatusCompleted,
		})
	})
	if err != nil {
		return CompleteResult{}, err
	}

	return CompleteResult{
		Task:       task,
		Reward:     task.Reward,
		NewBalance: newBalance,
	}, nil
}
