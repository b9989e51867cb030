package model

import (
	"time"

	"github.com/onetwonaz-bit/cointap/internal/domain/enums"
)

type Withdrawal struct {
	ID          int64
	UserID      int64
	Amount      int64
	Status      enums.WithdrawalStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// PendingWithdrawal joins a pending withdrawal with the identity of the
// requesting user, as shown to the admin.
type PendingWithdrawal struct {
	Withdrawal
	TelegramID int64
	Username   string
	FirstName  string
}
