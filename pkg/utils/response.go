package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Response is the envelope for plain success and error replies.
type Response struct {
	Message string `json:"message,omitempty" example:"transaction approved"`
	Error   string `json:"error,omitempty" example:"insufficient balance"`
}

func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if code == http.StatusNoContent {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, Response{Error: message})
}
