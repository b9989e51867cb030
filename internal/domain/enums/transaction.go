package enums

type TransactionType string

const (
	TransactionTypeTask     TransactionType = "task"
	TransactionTypeWithdraw TransactionType = "withdraw"
)

// TransactionStatus is fixed at creation time: task entries are
// completed, withdraw entries stay pending; the withdrawal row tracks
// the decision.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusPending   TransactionStatus = "pending"
)
