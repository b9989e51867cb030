package model

import (
	"time"

	"github.com/onetwonaz-bit/cointap/internal/domain/enums"
)

type Task struct {
	ID          int64
	Type        enums.TaskType
	Title       string
	Description string
	Link        string
	// ChannelID is the @channel reference checked for subscribe tasks;
	// empty for other task types.
	ChannelID string
	Reward    int64
	IsActive  bool
	CreatedAt time.Time
}

// TaskWithStatus annotates a task with whether a given user already
// completed it.
type TaskWithStatus struct {
	Task
	Completed bool
}
