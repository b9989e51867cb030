package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/onetwonaz-bit/cointap/internal/domain/model"
	pgrepo "github.com/onetwonaz-bit/cointap/internal/repo/postgres"
)

const defaultBanReason = "Порушення правил"

var (
	ErrValidation   = errors.New("validation error")
	ErrUserNotFound = errors.New("user not found")
)

type UserStore interface {
	Upsert(ctx context.Context, telegramID int64, username, firstName, lastName string) (model.User, error)
	FindByTelegramID(ctx context.Context, telegramID int64) (model.User, error)
	FindByID(ctx context.Context, userID int64) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	SetBanned(ctx context.Context, userID int64, banned bool, reason string) error
	Stats(ctx context.Context) (pgrepo.UserStats, error)
}

type Service struct {
	users UserStore
}

type Dependencies struct {
	Users UserStore
}

type InitInput struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
}

func NewService(deps Dependencies) *Service {
	return &Service{users: deps.Users}
}

// Init registers the telegram account on first contact and returns the
// stored profile afterwards. Repeat calls never reset the balance or
// the recorded names.
func (s *Service) Init(ctx context.Context, in InitInput) (model.User, error) {
	if in.TelegramID <= 0 {
		return model.User{}, ErrValidation
	}
	if s.users == nil {
		return model.User{}, fmt.Errorf("user store is nil")
	}

	user, err := s.users.Upsert(ctx, in.TelegramID, strings.TrimSpace(in.Username), strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName))
	if err != nil {
		return model.User{}, err
	}

	return user, nil
}

func (s *Service) GetByTelegramID(ctx context.Context, telegramID int64) (model.User, error) {
	if telegramID <= 0 {
		return model.User{}, ErrValidation
	}
	if s.users == nil {
		return model.User{}, fmt.Errorf("user store is nil")
	}

	user, err := s.users.FindByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}

	return user, nil
}

func (s *Service) Ban(ctx context.Context, userID int64, reason string) error {
	if userID <= 0 {
		return ErrValidation
	}
	if s.users == nil {
		return fmt.Errorf("user store is nil")
	}

	if strings.TrimSpace(reason) == "" {
		reason = defaultBanReason
	}

	if err := s.users.SetBanned(ctx, userID, true, reason); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return nil
}

func (s *Service) Unban(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrValidation
	}
	if s.users == nil {
		return fmt.Errorf("user store is nil")
	}

	if err := s.users.SetBanned(ctx, userID, false, ""); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return nil
}

func (s *Service) ListAll(ctx context.Context) ([]model.User, error) {
	if s.users == nil {
		return nil, fmt.Errorf("user store is nil")
	}
	return s.users.List(ctx)
}

func (s *Service) Stats(ctx context.Context) (pgrepo.UserStats, error) {
	if s.users == nil {
		return pgrepo.UserStats{}, fmt.Errorf("user store is nil")
	}
	return s.users.Stats(ctx)
}
