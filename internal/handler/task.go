package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aryan0dhankhar/interntrack/internal/domain"
	"github.com/aryan0dhankhar/interntrack/internal/security/middleware"
	"github.com/aryan0dhankhar/interntrack/internal/service"
)

// TaskRequest represents a task create or update payload. Pointer fields
// distinguish "absent" from "set to zero" so PATCH can be partial.
type TaskRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	AssigneeIntern *string `json:"assignee_intern"`
	Completion     *bool   `json:"completion"`
}

// TaskListItem is the shape of a task in list responses. Descriptions can be
// long, so the list keeps to summary fields only.
type TaskListItem struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	AssigneeIntern string `json:"assignee_intern"`
	Completion     bool   `json:"completion"`
}

// TaskResponse is the full shape of a task in detail responses.
type TaskResponse struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	AssigneeIntern string `json:"assignee_intern"`
	Completion     bool   `json:"completion"`
}

// TaskHandler handles the /tasks endpoints
type TaskHandler struct {
	taskService *service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{taskService: taskService, logger: logger}
}

// List handles GET /tasks requests
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.List(r.Context(), middleware.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	items := make([]TaskListItem, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, TaskListItem{
			ID:             t.ID,
			Title:          t.Title,
			AssigneeIntern: t.AssigneeEmail,
			Completion:     t.Completion,
		})
	}
	writeJSON(w, http.StatusOK, items, h.logger)
}

// Create handles POST /tasks requests
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body", h.logger)
		return
	}

	task, err := h.taskService.Create(r.Context(), middleware.IdentityFromContext(r.Context()), taskInput(req))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, taskResponse(task), h.logger)
}

// Get handles GET /tasks/{id} requests
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		writeError(w, domain.ErrNotFound, h.logger)
		return
	}

	task, err := h.taskService.Get(r.Context(), middleware.IdentityFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, taskResponse(task), h.logger)
}

// Put handles PUT /tasks/{id} requests: a full replace.
func (h *TaskHandler) Put(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

// Patch handles PATCH /tasks/{id} requests: a partial update.
func (h *TaskHandler) Patch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *TaskHandler) update(w http.ResponseWriter, r *http.Request, partial bool) {
	id, ok := taskID(r)
	if !ok {
		writeError(w, domain.ErrNotFound, h.logger)
		return
	}

	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body", h.logger)
		return
	}

	task, err := h.taskService.Update(r.Context(), middleware.IdentityFromContext(r.Context()), id, taskInput(req), partial)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, taskResponse(task), h.logger)
}

// Delete handles DELETE /tasks/{id} requests
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		writeError(w, domain.ErrNotFound, h.logger)
		return
	}

	if err := h.taskService.Delete(r.Context(), middleware.IdentityFromContext(r.Context()), id); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// taskID parses the {id} path segment. A non-numeric id cannot name a task,
// so it reads as not found rather than a malformed request.
func taskID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func taskInput(req TaskRequest) service.TaskInput {
	return service.TaskInput{
		Title:         req.Title,
		Description:   req.Description,
		AssigneeEmail: req.AssigneeIntern,
		Completion:    req.Completion,
	}
}

func taskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		AssigneeIntern: t.AssigneeEmail,
		Completion:     t.Completion,
	}
}
