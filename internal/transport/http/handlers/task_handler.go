package handlers

import (
	"errors"
	"net/http"

	taskssvc "github.com/onetwonaz-bit/cointap/internal/services/tasks"
	"github.com/onetwonaz-bit/cointap/internal/transport/http/dto"
	httperrors "github.com/onetwonaz-bit/cointap/internal/transport/http/errors"
)

type TaskHandler struct {
	service *taskssvc.Service
}

func NewTaskHandler(service *taskssvc.Service) *TaskHandler {
	return &TaskHandler{service: service}
}

// List returns the active tasks annotated with completion marks for the
// user in the path.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "TASK_SERVICE_UNAVAILABLE", "task service is unavailable")
		return
	}

	telegramID, ok := pathID(r, "telegramId")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid telegram id")
		return
	}

	tasks, err := h.service.ListForUser(r.Context(), telegramID)
	if err != nil {
		switch {
		case errors.Is(err, taskssvc.ErrUserNotFound):
			writeRejection(w, "Користувача не знайдено")
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	items := make([]dto.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, dto.NewTaskResponse(t.Task, t.Completed))
	}

	httperrors.Write(w, http.StatusOK, dto.TaskListResponse{Success: true, Tasks: items})
}

func (h *TaskHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "TASK_SERVICE_UNAVAILABLE", "task service is unavailable")
		return
	}

	var req dto.VerifyTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	result, err := h.service.VerifyAndComplete(r.Context(), req.TelegramID, req.TaskID)
	if err != nil {
		handleVerifyError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.VerifyTaskResponse{
		Success:    true,
		Message:    "Завдання виконано!",
		Reward:     result.Reward,
		NewBalance: result.NewBalance,
	})
}

// handleVerifyError maps service errors to responses. Missing users and
// tasks are business rejections here, not transport errors; the client
// reads the success flag.
func handleVerifyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, taskssvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "telegramId and taskId are required")
	case errors.Is(err, taskssvc.ErrUserNotFound):
		writeRejection(w, "Користувача не знайдено")
	case errors.Is(err, taskssvc.ErrTaskNotFound):
		writeRejection(w, "Завдання не знайдено")
	case errors.Is(err, taskssvc.ErrAlreadyCompleted):
		writeRejection(w, "Завдання вже виконано")
	case errors.Is(err, taskssvc.ErrNotSubscribed):
		writeRejection(w, "Підпишіться на канал і спробуйте ще раз")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
