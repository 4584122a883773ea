package handler

// RESPONSE HELPERS:
// Successful responses are JSON. Error responses are plain text: the status
// code says what kind of failure it was and the body carries one
// human-readable message, e.g. "Username already taken".

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/exercise-tracker/internal/apperror"
)

// writeJSON sends a JSON response with the given status code.
// Headers and status must be written before the body.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			logger.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeText sends a plain-text body.
func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a domain error to its status code and message.
//
// Storage failures and unknown errors become a generic 500; their details
// can contain driver messages and are only logged.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)

	var appErr *apperror.AppError
	if status == http.StatusInternalServerError || !errors.As(err, &appErr) {
		logger.Error("request failed", slog.String("error", err.Error()))
		writeText(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	writeText(w, status, appErr.Message)
}
