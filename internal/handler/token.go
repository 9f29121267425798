package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/interntrack/internal/observability/metrics"
	"github.com/aryan0dhankhar/interntrack/internal/security/audit"
	"github.com/aryan0dhankhar/interntrack/internal/service"
)

// TokenRequest represents login credentials
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse contains the bearer token
type TokenResponse struct {
	Token string `json:"token"`
}

// TokenHandler exchanges credentials for a bearer token
type TokenHandler struct {
	userService  *service.UserService
	tokenService *service.TokenService
	audit        *audit.Logger
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(userService *service.UserService, tokenService *service.TokenService, auditLog *audit.Logger, logger *slog.Logger) *TokenHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenHandler{userService: userService, tokenService: tokenService, audit: auditLog, logger: logger}
}

// Issue handles POST /users/token requests. Bad credentials and unknown
// emails get the same generic 401 to prevent user enumeration.
func (h *TokenHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("failed to decode token request", slog.String("error", err.Error()))
		badRequest(w, "invalid request body", h.logger)
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	if user == nil {
		metrics.ObserveAuthFailure("bad_credentials")
		h.audit.LogDenied(r.Context(), "", "bad credentials")
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"}, h.logger)
		return
	}

	token, err := h.tokenService.Issue(r.Context(), user)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	h.audit.LogTokenIssued(r.Context(), user.ID)
	writeJSON(w, http.StatusOK, TokenResponse{Token: token.Key}, h.logger)
}
