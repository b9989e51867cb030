package model

import "time"

type User struct {
	ID         int64
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
	// Balance is stored in the smallest coin unit; 100 units = $1.
	Balance   int64
	IsBanned  bool
	BanReason string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName mirrors how the bot and the admin panel label a user:
// first name when set, then username, then a placeholder.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "Без імені"
}
