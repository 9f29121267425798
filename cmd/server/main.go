package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aryan0dhankhar/interntrack/internal/handler"
	"github.com/aryan0dhankhar/interntrack/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/interntrack/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/interntrack/internal/observability/metrics"
	"github.com/aryan0dhankhar/interntrack/internal/observability/tracing"
	"github.com/aryan0dhankhar/interntrack/internal/repository"
	"github.com/aryan0dhankhar/interntrack/internal/security/audit"
	"github.com/aryan0dhankhar/interntrack/internal/security/middleware"
	"github.com/aryan0dhankhar/interntrack/internal/security/policy"
	"github.com/aryan0dhankhar/interntrack/internal/security/ratelimit"
	"github.com/aryan0dhankhar/interntrack/internal/service"
	"github.com/aryan0dhankhar/interntrack/internal/worker"
	"github.com/aryan0dhankhar/interntrack/pkg/config"
	"github.com/aryan0dhankhar/interntrack/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting InternTrack server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Open the database and wait for it to come up
	pool, err := database.NewConnectionPool(cfg.Database, log)
	if err != nil {
		log.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.WaitForReady(ctx); err != nil {
		log.Error("database not ready", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := pool.Migrate(ctx); err != nil {
		log.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Token cache: Redis when configured, in-process otherwise
	var tokenCache service.TokenCache
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(cfg.RedisURL, log)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		tokenCache = redis.NewTokenCache(redisClient, log)
	} else {
		log.Info("REDIS_URL not set, using in-process token cache")
		tokenCache = service.NewMemoryTokenCache()
	}

	// 6. Initialize repositories
	db := pool.GetDB()
	userRepo := repository.NewPostgresUserRepository(db, log)
	tokenRepo := repository.NewPostgresTokenRepository(db, log)
	taskRepo := repository.NewPostgresTaskRepository(db, log)
	attendanceRepo := repository.NewPostgresAttendanceRepository(db, log)

	// 7. Initialize services
	pol := policy.New(cfg.TaskAdminAll, log)
	userService := service.NewUserService(userRepo, log)
	tokenService := service.NewTokenService(tokenRepo, userRepo, tokenCache, cfg.TokenTTL, log)
	taskService := service.NewTaskService(taskRepo, userRepo, pol, log)
	attendanceService := service.NewAttendanceService(attendanceRepo, pol, log)

	// 8. Initialize security components
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMin, time.Minute)
	auditLogger := audit.NewLogger(log)

	// 8a. Initialize handlers
	userHandler := handler.NewUserHandler(userService, auditLogger, log)
	tokenHandler := handler.NewTokenHandler(userService, tokenService, auditLogger, log)
	taskHandler := handler.NewTaskHandler(taskService, log)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService, log)
	healthHandler := handler.NewHealthHandler(pool, redisClient, log)

	// 9. Setup HTTP routes
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

	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> token auth -> rate limit ->
	// audit -> content type -> CORS+mux
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.TokenAuthMiddleware(tokenService, log)(
				middleware.RateLimitMiddleware(rateLimiter, log)(
					middleware.AuditMiddleware(auditLogger)(
						middleware.ValidateJSONContentType(log)(handlerWithCORS),
					),
				),
			),
		),
		log,
	)
	rootHandler = otelhttp.NewHandler(rootHandler, "interntrack")

	// 10. Start token sweeper in background
	sweeper := worker.NewTokenSweeper(tokenRepo, cfg.TokenTTL, cfg.TokenSweepInterval, log)
	go sweeper.Start(ctx)

	// 11. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "token"),
		slog.Bool("task_admin_all", cfg.TaskAdminAll),
		slog.Int("rate_limit", cfg.RateLimitPerMin),
		slog.String("rate_limit_window", "1m"),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop token sweeper
	rateLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
