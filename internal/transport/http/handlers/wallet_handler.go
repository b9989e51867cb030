package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/onetwonaz-bit/cointap/internal/domain/rules"
	walletsvc "github.com/onetwonaz-bit/cointap/internal/services/wallet"
	"github.com/onetwonaz-bit/cointap/internal/transport/http/dto"
	httperrors "github.com/onetwonaz-bit/cointap/internal/transport/http/errors"
)

type WalletHandler struct {
	service *walletsvc.Service
}

func NewWalletHandler(service *walletsvc.Service) *WalletHandler {
	return &WalletHandler{service: service}
}

func (h *WalletHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "WALLET_SERVICE_UNAVAILABLE", "wallet service is unavailable")
		return
	}

	telegramID, ok := pathID(r, "telegramId")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid telegram id")
		return
	}

	history, err := h.service.History(r.Context(), telegramID)
	if err != nil {
		switch {
		case errors.Is(err, walletsvc.ErrUserNotFound):
			writeRejection(w, "Користувача не знайдено")
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	items := make([]dto.TransactionResponse, 0, len(history))
	for _, t := range history {
		items = append(items, dto.NewTransactionResponse(t))
	}

	httperrors.Write(w, http.StatusOK, dto.HistoryResponse{Success: true, Transactions: items})
}

func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "WALLET_SERVICE_UNAVAILABLE", "wallet service is unavailable")
		return
	}

	var req dto.WithdrawRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	result, err := h.service.RequestWithdrawal(r.Context(), req.TelegramID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, walletsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "telegramId is required")
		case errors.Is(err, walletsvc.ErrUserNotFound):
			writeRejection(w, "Користувача не знайдено")
		case errors.Is(err, walletsvc.ErrInsufficientBalance):
			writeRejection(w, fmt.Sprintf("Недостатньо коштів. Мінімальна сума виведення %s$", rules.Dollars(rules.MinWithdrawalUnits)))
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.WithdrawResponse{
		Success:      true,
		Message:      "Заявку на виведення створено! Очікуйте на обробку.",
		WithdrawalID: result.WithdrawalID,
		Amount:       result.Amount,
		NewBalance:   result.NewBalance,
	})
}
