package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pocketpilot/backend/internal/apperror"
)

// ErrorResponse represents a JSON error response body.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// respondJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondError writes a JSON error response with the given status code and message.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondAppError writes a JSON error response from an AppError.
// It extracts the status code and message from the error.
func respondAppError(w http.ResponseWriter, err *apperror.AppError) {
	resp := ErrorResponse{
		Error: err.Message,
		Field: err.Field,
	}
	respondJSON(w, err.StatusCode, resp)
}

// respondServiceError maps a service-layer error onto an HTTP response. Known
// AppErrors carry their own status; anything else is an opaque 500.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		respondAppError(w, appErr)
		return
	}
	respondError(w, http.StatusInternalServerError, fallback)
}
