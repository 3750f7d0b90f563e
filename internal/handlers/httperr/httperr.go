// Package httperr maps domain errors to HTTP replies.
package httperr

import (
	"errors"
	"net/http"

	"github.com/GlebRadaev/exchange/internal/domain"
	"github.com/GlebRadaev/exchange/pkg/utils"
	"go.uber.org/zap"
)

const internalMessage = "Internal server error"

func Status(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrDuplicateHash),
		errors.Is(err, domain.ErrWalletExists),
		errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrBalanceLimit):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err with its mapped status. Unmapped errors are logged and hidden from the client.
func Respond(w http.ResponseWriter, err error) {
	code := Status(err)
	if code == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
		utils.RespondWithError(w, code, internalMessage)
		return
	}
	utils.RespondWithError(w, code, err.Error())
}
