package dto

import (
	"time"

	"github.com/onetwonaz-bit/cointap/internal/domain/model"
)

type TaskResponse struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Link        string    `json:"link,omitempty"`
	ChannelID   string    `json:"channelId,omitempty"`
	Reward      int64     `json:"reward"`
	IsActive    bool      `json:"isActive"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}

type TaskListResponse struct {
	Success bool           `json:"success"`
	Tasks   []TaskResponse `json:"tasks"`
}

type VerifyTaskRequest struct {
	TelegramID int64 `json:"telegramId"`
	TaskID     int64 `json:"taskId"`
}

type VerifyTaskResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	Reward     int64  `json:"reward,omitempty"`
	NewBalance int64  `json:"newBalance"`
}

type CreateTaskRequest struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	ChannelID   string `json:"channelId"`
	Reward      int64  `json:"reward"`
}

type CreateTaskResponse struct {
	Success bool         `json:"success"`
	Task    TaskResponse `json:"task"`
}

func NewTaskResponse(t model.Task, completed bool) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Type:        string(t.Type),
		Title:       t.Title,
		Description: t.Description,
		Link:        t.Link,
		ChannelID:   t.ChannelID,
		Reward:      t.Reward,
		IsActive:    t.IsActive,
		Completed:   completed,
		CreatedAt:   t.CreatedAt,
	}
}
