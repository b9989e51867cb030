package handlers

import (
	"errors"
	"net/http"

	taskssvc "github.com/onetwonaz-bit/cointap/internal/services/tasks"
	userssvc "github.com/onetwonaz-bit/cointap/internal/services/users"
	walletsvc "github.com/onetwonaz-bit/cointap/internal/services/wallet"
	"github.com/onetwonaz-bit/cointap/internal/transport/http/dto"
	httperrors "github.com/onetwonaz-bit/cointap/internal/transport/http/errors"
)

type AdminHandler struct {
	users  *userssvc.Service
	tasks  *taskssvc.Service
	wallet *walletsvc.Service
}

func NewAdminHandler(users *userssvc.Service, tasks *taskssvc.Service, wallet *walletsvc.Service) *AdminHandler {
	return &AdminHandler{users: users, tasks: tasks, wallet: wallet}
}

// Data returns everything the admin panel renders on one screen: the
// headline stats, all users, all tasks and the pending requests.
func (h *AdminHandler) Data(w http.ResponseWriter, r *http.Request) {
	if h.users == nil || h.tasks == nil || h.wallet == nil {
		writeInternal(w, "ADMIN_SERVICE_UNAVAILABLE", "admin services are unavailable")
		return
	}

	ctx := r.Context()

	userStats, err := h.users.Stats(ctx)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}
	activeTasks, err := h.tasks.CountActive(ctx)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}
	withdrawalStats, err := h.wallet.PendingStats(ctx)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	users, err := h.users.ListAll(ctx)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}
	tasks, err := h.tasks.ListAll(ctx)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}
	pending, err := h.wallet.PendingWithdrawals(ctx)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	userItems := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		userItems = append(userItems, dto.NewUserResponse(u))
	}
	taskItems := make([]dto.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		taskItems = append(taskItems, dto.NewTaskResponse(t, false))
	}
	withdrawalItems := make([]dto.PendingWithdrawalResponse, 0, len(pending))
	for _, p := range pending {
		withdrawalItems = append(withdrawalItems, dto.NewPendingWithdrawalResponse(p))
	}

	httperrors.Write(w, http.StatusOK, dto.AdminDataResponse{
		Success: true,
		Stats: dto.AdminStats{
			TotalUsers:         userStats.TotalUsers,
			BannedUsers:        userStats.BannedUsers,
			TotalBalance:       userStats.TotalBalance,
			ActiveTasks:        activeTasks,
			PendingWithdrawals: withdrawalStats.PendingCount,
			PendingAmount:      withdrawalStats.PendingAmount,
		},
		Users:       userItems,
		Tasks:       taskItems,
		Withdrawals: withdrawalItems,
	})
}

func (h *AdminHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	if h.tasks == nil {
		writeInternal(w, "ADMIN_SERVICE_UNAVAILABLE", "admin services are unavailable")
		return
	}

	var req dto.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	task, err := h.tasks.Create(r.Context(), taskssvc.CreateInput{
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Link:        req.Link,
		ChannelID:   req.ChannelID,
		Reward:      req.Reward,
	})
	if err != nil {
		if errors.Is(err, taskssvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "type and title are required")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.CreateTaskResponse{
		Success: true,
		Task:    dto.NewTaskResponse(task, false),
	})
}

func (h *AdminHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if h.tasks == nil {
		writeInternal(w, "ADMIN_SERVICE_UNAVAILABLE", "admin services are unavailable")
		return
	}

	taskID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid task id")
		return
	}

	if err := h.tasks.Deactivate(r.Context(), taskID); err != nil {
		if errors.Is(err, taskssvc.ErrTaskNotFound) {
			writeNotFound(w, "TASK_NOT_FOUND", "task not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.StatusResponse{Success: true})
}

func (h *AdminHandler) ApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	h.decideWithdrawal(w, r, true)
}

func (h *AdminHandler) RejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	h.decideWithdrawal(w, r, false)
}

func (h *AdminHandler) decideWithdrawal(w http.ResponseWriter, r *http.Request, approve bool) {
	if h.wallet == nil {
		writeInternal(w, "ADMIN_SERVICE_UNAVAILABLE", "admin services are unavailable")
		return
	}

	withdrawalID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid withdrawal id")
		return
	}

	var err error
	if approve {
		_, err = h.wallet.Approve(r.Context(), withdrawalID)
	} else {
		_, err = h.wallet.Reject(r.Context(), withdrawalID)
	}
	if err != nil {
		switch {
		case errors.Is(err, walletsvc.ErrWithdrawalNotFound):
			writeNotFound(w, "WITHDRAWAL_NOT_FOUND", "withdrawal not found")
		case errors.Is(err, walletsvc.ErrWithdrawalNotPending):
			writeRejection(w, "Заявку вже оброблено")
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.StatusResponse{Success: true})
}

func (h *AdminHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeInternal(w, "ADMIN_SERVICE_UNAVAILABLE", "admin services are unavailable")
		return
	}

	userID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	var req dto.BanUserRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
			return
		}
	}

	if err := h.users.Ban(r.Context(), userID, req.Reason); err != nil {
		if errors.Is(err, userssvc.ErrUserNotFound) {
			writeNotFound(w, "USER_NOT_FOUND", "user not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.StatusResponse{Success: true})
}

func (h *AdminHandler) UnbanUser(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeInternal(w, "ADMIN_SERVICE_UNAVAILABLE", "admin services are unavailable")
		return
	}

	userID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	if err := h.users.Unban(r.Context(), userID); err != nil {
		if errors.Is(err, userssvc.ErrUserNotFound) {
			writeNotFound(w, "USER_NOT_FOUND", "user not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.StatusResponse{Success: true})
}
