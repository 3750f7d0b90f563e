package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespond(t *testing.T) {
	tests := []struct {
		name         string
		respond      func(w http.ResponseWriter)
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Error",
			respond:      func(w http.ResponseWriter) { RespondWithError(w, http.StatusConflict, "transaction is not pending") },
			expectedCode: http.StatusConflict,
			expectedBody: `{"error":"transaction is not pending"}`,
		},
		{
			name:         "Payload",
			respond:      func(w http.ResponseWriter) { RespondWithJSON(w, http.StatusCreated, map[string]int{"id": 7}) },
			expectedCode: http.StatusCreated,
			expectedBody: `{"id":7}`,
		},
		{
			name:         "No content has no body",
			respond:      func(w http.ResponseWriter) { RespondWithError(w, http.StatusNoContent, "nothing") },
			expectedCode: http.StatusNoContent,
			expectedBody: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.respond(w)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			if tt.expectedBody == "" {
				assert.Empty(t, w.Body.String())
				return
			}
			var got, want any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			require.NoError(t, json.Unmarshal([]byte(tt.expectedBody), &want))
			assert.Equal(t, want, got)
		})
	}
}
