package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/interntrack/internal/domain"
	"github.com/aryan0dhankhar/interntrack/internal/security/audit"
	"github.com/aryan0dhankhar/interntrack/internal/security/middleware"
	"github.com/aryan0dhankhar/interntrack/internal/service"
)

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// UserResponse is the public shape of a user record. The password hash never
// leaves the service.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserHandler handles registration and the /users/me profile endpoints
type UserHandler struct {
	userService *service.UserService
	audit       *audit.Logger
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService, auditLog *audit.Logger, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{userService: userService, audit: auditLog, logger: logger}
}

// Create handles POST /users/create requests
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("failed to decode register request", slog.String("error", err.Error()))
		badRequest(w, "invalid request body", h.logger)
		return
	}

	user, err := h.userService.CreateUser(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	h.audit.LogRegistration(r.Context(), user.ID, user.Email)
	writeJSON(w, http.StatusCreated, userResponse(user), h.logger)
}

// Me handles GET /users/me requests
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid or missing credentials"}, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, userResponse(identity), h.logger)
}

// ProfileUpdateRequest represents a partial profile update. Pointer fields
// distinguish "absent" from "set to empty".
type ProfileUpdateRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// UpdateMe handles PATCH /users/me requests
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid or missing credentials"}, h.logger)
		return
	}

	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body", h.logger)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), identity.ID, service.ProfileUpdate{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, userResponse(user), h.logger)
}

func userResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}
