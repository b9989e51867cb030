package handlers

import (
	"errors"
	"net/http"

	userssvc "github.com/onetwonaz-bit/cointap/internal/services/users"
	"github.com/onetwonaz-bit/cointap/internal/transport/http/dto"
	httperrors "github.com/onetwonaz-bit/cointap/internal/transport/http/errors"
)

type UserHandler struct {
	service *userssvc.Service
}

func NewUserHandler(service *userssvc.Service) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Init(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	var req dto.InitUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	user, err := h.service.Init(r.Context(), userssvc.InitInput{
		TelegramID: req.TelegramID,
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
	})
	if err != nil {
		if errors.Is(err, userssvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "telegramId is required")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.InitUserResponse{
		Success: true,
		User:    dto.NewUserResponse(user),
	})
}
