package model

import (
	"time"

	"github.com/onetwonaz-bit/cointap/internal/domain/enums"
)

// Transaction is an append-only ledger entry. Amounts are stored
// positive; the sign is implied by Type.
type Transaction struct {
	ID          int64
	UserID      int64
	Type        enums.TransactionType
	Amount      int64
	Description string
	Status      enums.TransactionStatus
	// WithdrawalID references the request a withdraw entry was created
	// for. The entry itself is never updated; the withdrawal row carries
	// the evolving status.
	WithdrawalID *int64
	CreatedAt    time.Time
}
