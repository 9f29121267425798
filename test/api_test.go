package test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrationAndLogin(t *testing.T) {
	h := NewTestServer(t, false)

	resp := h.Do(t, http.MethodPost, "/users/create", "", map[string]string{
		"email":    "a@x.com",
		"password": "secret1",
		"name":     "Intern A",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	Decode(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "a@x.com", created.Email)
	assert.Equal(t, "Intern A", created.Name)

	// Re-registering the same email is a field-level validation failure.
	resp = h.Do(t, http.MethodPost, "/users/create", "", map[string]string{
		"email":    "a@x.com",
		"password": "secret2",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Token issuance is idempotent while the token is valid.
	token1 := h.Login(t, "a@x.com", "secret1")
	token2 := h.Login(t, "a@x.com", "secret1")
	assert.Equal(t, token1, token2)

	// Bad credentials get a generic 401.
	resp = h.Do(t, http.MethodPost, "/users/token", "", map[string]string{
		"email":    "a@x.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	h := NewTestServer(t, false)

	for _, path := range []string{"/tasks", "/attendances", "/users/me"} {
		resp := h.Do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		resp.Body.Close()
	}

	resp := h.Do(t, http.MethodGet, "/tasks", "made-up-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Health stays public.
	resp = h.Do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestTaskLifecycleAndIsolation(t *testing.T) {
	h := NewTestServer(t, false)

	tokenA := h.Register(t, "a@x.com", "secret1")
	tokenB := h.Register(t, "b@x.com", "secret1")

	resp := h.Do(t, http.MethodPost, "/tasks", tokenA, map[string]any{
		"title":           "T",
		"description":     "details",
		"assignee_intern": "b@x.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var task struct {
		ID             int64  `json:"id"`
		Title          string `json:"title"`
		Description    string `json:"description"`
		AssigneeIntern string `json:"assignee_intern"`
		Completion     bool   `json:"completion"`
	}
	Decode(t, resp, &task)
	assert.Equal(t, "T", task.Title)
	assert.Equal(t, "b@x.com", task.AssigneeIntern)
	assert.False(t, task.Completion)

	// The owner's list includes it; the assignee's does not.
	var listA, listB []map[string]any
	resp = h.Do(t, http.MethodGet, "/tasks", tokenA, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	Decode(t, resp, &listA)
	require.Len(t, listA, 1)
	assert.NotContains(t, listA[0], "description", "list rows carry summary fields only")

	resp = h.Do(t, http.MethodGet, "/tasks", tokenB, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	Decode(t, resp, &listB)
	assert.Empty(t, listB)

	taskPath := fmt.Sprintf("/tasks/%d", task.ID)

	// Cross-user access reads as not found, never forbidden.
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		resp = h.Do(t, method, taskPath, tokenB, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, method)
		resp.Body.Close()
	}

	// The owner can fetch the detail shape and patch completion.
	resp = h.Do(t, http.MethodGet, taskPath, tokenA, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	Decode(t, resp, &task)
	assert.Equal(t, "details", task.Description)

	resp = h.Do(t, http.MethodPatch, taskPath, tokenA, map[string]any{"completion": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	Decode(t, resp, &task)
	assert.True(t, task.Completion)
	assert.Equal(t, "T", task.Title)

	// PUT is a full replace and rejects a partial payload.
	resp = h.Do(t, http.MethodPut, taskPath, tokenA, map[string]any{"completion": false})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = h.Do(t, http.MethodDelete, taskPath, tokenA, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = h.Do(t, http.MethodGet, taskPath, tokenA, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestTaskValidation(t *testing.T) {
	h := NewTestServer(t, false)
	token := h.Register(t, "a@x.com", "secret1")

	resp := h.Do(t, http.MethodPost, "/tasks", token, map[string]any{
		"assignee_intern": "b@x.com",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	Decode(t, resp, &body)
	assert.Contains(t, body.Fields, "title")

	resp = h.Do(t, http.MethodPost, "/tasks", token, map[string]any{
		"title":           "T",
		"assignee_intern": "nonsense",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	Decode(t, resp, &body)
	assert.Contains(t, body.Fields, "assignee_intern")

	// A non-numeric task id cannot exist.
	resp = h.Do(t, http.MethodGet, "/tasks/abc", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAttendanceLifecycle(t *testing.T) {
	h := NewTestServer(t, false)
	tokenA := h.Register(t, "a@x.com", "secret1")
	tokenB := h.Register(t, "b@x.com", "secret1")

	resp := h.Do(t, http.MethodPost, "/attendances", tokenA, map[string]any{
		"status": "present",
		"date":   "2024-03-15",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var record struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
		Date   string `json:"date"`
	}
	Decode(t, resp, &record)
	assert.Equal(t, "present", record.Status)
	assert.Equal(t, "2024-03-15", record.Date)

	// Marking the same day twice fails.
	resp = h.Do(t, http.MethodPost, "/attendances", tokenA, map[string]any{
		"date": "2024-03-15",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Another intern's same day is independent.
	resp = h.Do(t, http.MethodPost, "/attendances", tokenB, map[string]any{
		"date": "2024-03-15",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	recordPath := fmt.Sprintf("/attendances/%d", record.ID)

	resp = h.Do(t, http.MethodGet, recordPath, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = h.Do(t, http.MethodPatch, recordPath, tokenA, map[string]any{"status": "absent"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	Decode(t, resp, &record)
	assert.Equal(t, "absent", record.Status)

	resp = h.Do(t, http.MethodDelete, recordPath, tokenA, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

func TestProfileEndpoints(t *testing.T) {
	h := NewTestServer(t, false)
	token := h.Register(t, "me@x.com", "secret1")

	resp := h.Do(t, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	Decode(t, resp, &me)
	assert.Equal(t, "me@x.com", me.Email)

	resp = h.Do(t, http.MethodPatch, "/users/me", token, map[string]string{
		"name":     "Renamed",
		"password": "newsecret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	Decode(t, resp, &me)
	assert.Equal(t, "Renamed", me.Name)

	// The old password stops working; the new one yields a token.
	resp = h.Do(t, http.MethodPost, "/users/token", "", map[string]string{
		"email":    "me@x.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	h.Login(t, "me@x.com", "newsecret")
}

func TestAdminSeesAllTasksWhenEnabled(t *testing.T) {
	h := NewTestServer(t, true)

	tokenA := h.Register(t, "a@x.com", "secret1")

	resp := h.Do(t, http.MethodPost, "/tasks", tokenA, map[string]any{
		"title":           "T",
		"assignee_intern": "b@x.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	_, err := h.UserService.CreateStaff(t.Context(), "staff@x.com", "secret1")
	require.NoError(t, err)
	staffToken := h.Login(t, "staff@x.com", "secret1")

	var list []map[string]any
	resp = h.Do(t, http.MethodGet, "/tasks", staffToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	Decode(t, resp, &list)
	assert.Len(t, list, 1)
}

func TestContentTypeEnforced(t *testing.T) {
	h := NewTestServer(t, false)
	token := h.Register(t, "a@x.com", "secret1")

	// A non-JSON body on a mutating route is rejected before any handler
	// runs.
	req, err := http.NewRequest(http.MethodPost, h.Server.URL+"/tasks", strings.NewReader("title=T"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	resp.Body.Close()
}
