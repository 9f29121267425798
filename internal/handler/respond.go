package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/interntrack/internal/domain"
)

// ErrorResponse is the JSON shape of every error body.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError maps domain errors onto HTTP statuses. Validation failures carry
// the offending fields; everything out of the caller's scope is a plain 404.
func writeError(w http.ResponseWriter, err error, logger *slog.Logger) {
	if verr, ok := domain.AsValidationError(err); ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: verr.Fields}, logger)
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"}, logger)
		return
	}
	if logger != nil {
		logger.Error("request failed", slog.String("error", err.Error()))
	}
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}, logger)
}

func badRequest(w http.ResponseWriter, msg string, logger *slog.Logger) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg}, logger)
}
