package dto

import (
	"time"

	"github.com/onetwonaz-bit/cointap/internal/domain/model"
)

type InitUserRequest struct {
	TelegramID int64  `json:"telegramId"`
	Username   string `json:"username"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
}

type UserResponse struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegramId"`
	Username   string    `json:"username"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Balance    int64     `json:"balance"`
	IsBanned   bool      `json:"isBanned"`
	BanReason  string    `json:"banReason,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type InitUserResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

func NewUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		TelegramID: u.TelegramID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Balance:    u.Balance,
		IsBanned:   u.IsBanned,
		BanReason:  u.BanReason,
		CreatedAt:  u.CreatedAt,
	}
}
