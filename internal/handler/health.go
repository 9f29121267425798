package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aryan0dhankhar/interntrack/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/interntrack/pkg/database"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db     *database.ConnectionPool
	redis  *redis.Client
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler. The redis client may be nil
// when the deployment runs on the in-process token cache.
func NewHealthHandler(db *database.ConnectionPool, redisClient *redis.Client, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{db: db, redis: redisClient, logger: logger}
}

// HealthResponse represents the health status response
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health handles GET /healthz - Simple liveness check
// Returns 200 if the server is running
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"}, h.logger)
}

// Ready handles GET /readyz - Readiness check for Kubernetes
// Returns 200 only if all dependencies are healthy
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	if err := h.db.Health(ctx); err != nil {
		checks["database"] = "error: " + err.Error()
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			checks["redis"] = "error: " + err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	} else {
		checks["redis"] = "not configured"
	}

	status := "ready"
	statusCode := http.StatusOK
	if !healthy {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, ReadinessResponse{Status: status, Checks: checks}, h.logger)

	h.logger.Debug("readiness check",
		slog.String("status", status),
		slog.String("database", checks["database"]),
		slog.String("redis", checks["redis"]),
	)
}
