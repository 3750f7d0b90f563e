package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GlebRadaev/exchange/internal/domain"
	"github.com/GlebRadaev/exchange/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", domain.ErrInvalidCurrency, http.StatusBadRequest},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"wallet not found", domain.ErrWalletNotFound, http.StatusNotFound},
		{"insufficient balance", domain.ErrInsufficientBalance, http.StatusPaymentRequired},
		{"not pending", fmt.Errorf("commit: %w", domain.ErrInvalidStateTransition), http.StatusConflict},
		{"duplicate hash", domain.ErrDuplicateHash, http.StatusConflict},
		{"wallet exists", domain.ErrWalletExists, http.StatusConflict},
		{"user exists", domain.ErrUserExists, http.StatusConflict},
		{"balance limit", domain.ErrBalanceLimit, http.StatusConflict},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Status(tt.err))
		})
	}
}

func TestRespond(t *testing.T) {
	t.Run("Mapped error is shown", func(t *testing.T) {
		w := httptest.NewRecorder()
		Respond(w, domain.ErrInsufficientBalance)

		var body utils.Response
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, http.StatusPaymentRequired, w.Code)
		assert.Equal(t, domain.ErrInsufficientBalance.Error(), body.Error)
	})

	t.Run("Unmapped error is hidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		Respond(w, errors.New("pq: password authentication failed"))

		var body utils.Response
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Internal server error", body.Error)
	})
}
