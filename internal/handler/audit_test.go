package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/interntrack/internal/security/audit"
	"github.com/aryan0dhankhar/interntrack/internal/service"
	"github.com/aryan0dhankhar/interntrack/internal/testutil"
)

func capturingAuditLogger(buf *bytes.Buffer) *audit.Logger {
	return audit.NewLogger(slog.New(slog.NewJSONHandler(buf, nil)))
}

func TestRegistrationWritesAuditRecord(t *testing.T) {
	var buf bytes.Buffer
	userService := service.NewUserService(testutil.NewMemUserRepo(), testutil.NewLogger())
	h := NewUserHandler(userService, capturingAuditLogger(&buf), testutil.NewLogger())

	body := strings.NewReader(`{"email":"dude@example.com","password":"whiterussian"}`)
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/users/create", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, buf.String(), `"action":"register"`)
	assert.Contains(t, buf.String(), "dude@example.com")
}

func TestTokenIssueWritesAuditRecord(t *testing.T) {
	var buf bytes.Buffer
	userRepo := testutil.NewMemUserRepo()
	userService := service.NewUserService(userRepo, testutil.NewLogger())
	tokenService := service.NewTokenService(
		testutil.NewMemTokenRepo(), userRepo, service.NewMemoryTokenCache(), 24*time.Hour, testutil.NewLogger())
	h := NewTokenHandler(userService, tokenService, capturingAuditLogger(&buf), testutil.NewLogger())

	_, err := userService.CreateUser(context.Background(), "dude@example.com", "whiterussian", "")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.Issue(rec, httptest.NewRequest(http.MethodPost, "/users/token",
		strings.NewReader(`{"email":"dude@example.com","password":"whiterussian"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), `"action":"token_issue"`)

	buf.Reset()
	rec = httptest.NewRecorder()
	h.Issue(rec, httptest.NewRequest(http.MethodPost, "/users/token",
		strings.NewReader(`{"email":"dude@example.com","password":"notthepassword"}`)))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, buf.String(), `"action":"access_denied"`)
}
