package audit

import (
	"context"
	"log/slog"
	"time"
)

// Logger emits structured audit records for security-relevant actions.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, userID, action, resource, resourceID, status, details string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("user_id", userID),
		slog.String("status", status),
		slog.String("details", details),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogRegistration(ctx context.Context, userID, email string) {
	al.LogAction(ctx, userID, "register", "user", userID, "success", email)
}

func (al *Logger) LogTokenIssued(ctx context.Context, userID string) {
	al.LogAction(ctx, userID, "token_issue", "token", "", "success", "")
}

func (al *Logger) LogDeletion(ctx context.Context, userID, resource, resourceID, status string) {
	al.LogAction(ctx, userID, "delete", resource, resourceID, status, "")
}

func (al *Logger) LogDenied(ctx context.Context, userID, reason string) {
	al.LogAction(ctx, userID, "access_denied", "api", "", "denied", reason)
}
