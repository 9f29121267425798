package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aryan0dhankhar/interntrack/internal/domain"
	"github.com/aryan0dhankhar/interntrack/internal/observability/metrics"
	"github.com/aryan0dhankhar/interntrack/internal/security/middleware"
	"github.com/aryan0dhankhar/interntrack/internal/service"
)

// AttendanceRequest represents an attendance create or update payload.
type AttendanceRequest struct {
	Status *string `json:"status"`
	Date   *string `json:"date"`
}

// AttendanceResponse is the shape of an attendance record in responses.
type AttendanceResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
	Date   string `json:"date"`
}

// AttendanceHandler handles the /attendances endpoints
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
	logger            *slog.Logger
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(attendanceService *service.AttendanceService, logger *slog.Logger) *AttendanceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceHandler{attendanceService: attendanceService, logger: logger}
}

// List handles GET /attendances requests
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.attendanceService.List(r.Context(), middleware.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	items := make([]AttendanceResponse, 0, len(records))
	for _, a := range records {
		items = append(items, attendanceResponse(a))
	}
	writeJSON(w, http.StatusOK, items, h.logger)
}

// Create handles POST /attendances requests
func (h *AttendanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req AttendanceRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid request body", h.logger)
			return
		}
	}

	record, err := h.attendanceService.Create(r.Context(), middleware.IdentityFromContext(r.Context()), service.AttendanceInput{
		Status: req.Status,
		Date:   req.Date,
	})
	if err != nil {
		if verr, ok := domain.AsValidationError(err); ok {
			if _, conflict := verr.Fields["date"]; conflict {
				metrics.ObserveAttendanceConflict()
			}
		}
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, attendanceResponse(record), h.logger)
}

// Get handles GET /attendances/{id} requests
func (h *AttendanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := attendanceID(r)
	if !ok {
		writeError(w, domain.ErrNotFound, h.logger)
		return
	}

	record, err := h.attendanceService.Get(r.Context(), middleware.IdentityFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, attendanceResponse(record), h.logger)
}

// Patch handles PATCH /attendances/{id} requests
func (h *AttendanceHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := attendanceID(r)
	if !ok {
		writeError(w, domain.ErrNotFound, h.logger)
		return
	}

	var req AttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body", h.logger)
		return
	}

	record, err := h.attendanceService.Update(r.Context(), middleware.IdentityFromContext(r.Context()), id, service.AttendanceInput{
		Status: req.Status,
		Date:   req.Date,
	})
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, attendanceResponse(record), h.logger)
}

// Delete handles DELETE /attendances/{id} requests
func (h *AttendanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := attendanceID(r)
	if !ok {
		writeError(w, domain.ErrNotFound, h.logger)
		return
	}

	if err := h.attendanceService.Delete(r.Context(), middleware.IdentityFromContext(r.Context()), id); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func attendanceID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func attendanceResponse(a *domain.Attendance) AttendanceResponse {
	return AttendanceResponse{ID: a.ID, Status: string(a.Status), Date: a.Date}
}
