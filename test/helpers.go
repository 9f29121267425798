package test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/interntrack/internal/handler"
	"github.com/aryan0dhankhar/interntrack/internal/security/audit"
	"github.com/aryan0dhankhar/interntrack/internal/security/middleware"
	"github.com/aryan0dhankhar/interntrack/internal/security/policy"
	"github.com/aryan0dhankhar/interntrack/internal/security/ratelimit"
	"github.com/aryan0dhankhar/interntrack/internal/service"
	"github.com/aryan0dhankhar/interntrack/internal/testutil"
)

// TestServerHelper runs the full HTTP stack against in-memory repositories:
// real routes, real middleware chain, no Postgres or Redis required.
type TestServerHelper struct {
	Server *httptest.Server

	UserService *service.UserService
}

// NewTestServer wires the API exactly the way cmd/server does, minus the
// external infrastructure.
func NewTestServer(t *testing.T, taskAdminAll bool) *TestServerHelper {
	t.Helper()

	log := testutil.NewLogger()

	userRepo := testutil.NewMemUserRepo()
	tokenRepo := testutil.NewMemTokenRepo()
	taskRepo := testutil.NewMemTaskRepo()
	attendanceRepo := testutil.NewMemAttendanceRepo()

	pol := policy.New(taskAdminAll, log)
	userService := service.NewUserService(userRepo, log)
	tokenService := service.NewTokenService(tokenRepo, userRepo, service.NewMemoryTokenCache(), 24*time.Hour, log)
	taskService := service.NewTaskService(taskRepo, userRepo, pol, log)
	attendanceService := service.NewAttendanceService(attendanceRepo, pol, log)

	auditLogger := audit.NewLogger(log)
	userHandler := handler.NewUserHandler(userService, auditLogger, log)
	tokenHandler := handler.NewTokenHandler(userService, tokenService, auditLogger, log)
	taskHandler := handler.NewTaskHandler(taskService, log)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/create", userHandler.Create)
	mux.HandleFunc("POST /users/token", tokenHandler.Issue)
	mux.HandleFunc("GET /users/me", userHandler.Me)
	mux.HandleFunc("PATCH /users/me", userHandler.UpdateMe)

	mux.HandleFunc("GET /tasks", taskHandler.List)
	mux.HandleFunc("POST /tasks", taskHandler.Create)
	mux.HandleFunc("GET /tasks/{id}", taskHandler.Get)
	mux.HandleFunc("PUT /tasks/{id}", taskHandler.Put)
	mux.HandleFunc("PATCH /tasks/{id}", taskHandler.Patch)
	mux.HandleFunc("DELETE /tasks/{id}", taskHandler.Delete)

	mux.HandleFunc("GET /attendances", attendanceHandler.List)
	mux.HandleFunc("POST /attendances", attendanceHandler.Create)
	mux.HandleFunc("GET /attendances/{id}", attendanceHandler.Get)
	mux.HandleFunc("PATCH /attendances/{id}", attendanceHandler.Patch)
	mux.HandleFunc("DELETE /attendances/{id}", attendanceHandler.Delete)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rateLimiter := ratelimit.NewLimiter(1000, time.Minute)
	t.Cleanup(rateLimiter.Stop)

	root := middleware.TokenAuthMiddleware(tokenService, log)(
		middleware.RateLimitMiddleware(rateLimiter, log)(
			middleware.AuditMiddleware(auditLogger)(
				middleware.ValidateJSONContentType(log)(mux),
			),
		),
	)

	server := httptest.NewServer(root)
	t.Cleanup(server.Close)

	return &TestServerHelper{Server: server, UserService: userService}
}

// Do issues a JSON request against the test server. A nil body sends no
// payload; an empty token leaves the Authorization header off.
func (h *TestServerHelper) Do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, h.Server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// Decode reads a JSON response body into out and closes the body.
func Decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// Register creates a user and returns a bearer token for it.
func (h *TestServerHelper) Register(t *testing.T, email, password string) string {
	t.Helper()

	resp := h.Do(t, http.MethodPost, "/users/create", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	return h.Login(t, email, password)
}

// Login exchanges credentials for a bearer token.
func (h *TestServerHelper) Login(t *testing.T, email, password string) string {
	t.Helper()

	resp := h.Do(t, http.MethodPost, "/users/token", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	Decode(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}
