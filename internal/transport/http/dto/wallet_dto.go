package dto

import (
	"time"

	"github.com/onetwonaz-bit/cointap/internal/domain/model"
)

type TransactionResponse struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

type HistoryResponse struct {
	Success      bool                  `json:"success"`
	Transactions []TransactionResponse `json:"transactions"`
}

type WithdrawRequest struct {
	TelegramID int64 `json:"telegramId"`
	Amount     int64 `json:"amount"`
}

type WithdrawResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	WithdrawalID int64  `json:"withdrawalId,omitempty"`
	Amount       int64  `json:"amount,omitempty"`
	NewBalance   int64  `json:"newBalance"`
}

type PendingWithdrawalResponse struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	TelegramID int64     `json:"telegramId"`
	Username   string    `json:"username,omitempty"`
	FirstName  string    `json:"firstName,omitempty"`
	Amount     int64     `json:"amount"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

func NewTransactionResponse(t model.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Type:        string(t.Type),
		Amount:      t.Amount,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
	}
}

func NewPendingWithdrawalResponse(p model.PendingWithdrawal) PendingWithdrawalResponse {
	return PendingWithdrawalResponse{
		ID:         p.ID,
		UserID:     p.UserID,
		TelegramID: p.TelegramID,
		Username:   p.Username,
		FirstName:  p.FirstName,
		Amount:     p.Amount,
		Status:     string(p.Status),
		CreatedAt:  p.CreatedAt,
	}
}
