package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/aryan0dhankhar/interntrack/internal/reliability/retry"
	"github.com/aryan0dhankhar/interntrack/pkg/config"
)

// ConnectionPool manages database connections
type ConnectionPool struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewConnectionPool opens a connection pool against the configured Postgres
// instance. The connection is not verified here; call WaitForReady before
// serving traffic.
func NewConnectionPool(cfg config.Database, logger *slog.Logger) (*ConnectionPool, error) {
	if logger == nil {
		logger = slog.Default()
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &ConnectionPool{db: db, logger: logger}, nil
}

// WaitForReady pings the database once a second until it accepts a
// connection or the context is cancelled. Postgres routinely comes up after
// the application in containerized deployments, so this loop has no attempt
// limit.
func (cp *ConnectionPool) WaitForReady(ctx context.Context) error {
	cfg := &retry.Config{
		MaxAttempts:       0, // unlimited
		InitialBackoff:    time.Second,
		MaxBackoff:        time.Second,
		BackoffMultiplier: 1.0,
	}

	_, err := retry.Do(ctx, cfg, cp.logger, "database ping", func(ctx context.Context) (struct{}, error) {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return struct{}{}, cp.db.PingContext(pingCtx)
	})
	if err != nil {
		return fmt.Errorf("database never became ready: %w", err)
	}

	cp.logger.Info("database ready")
	return nil
}

// GetDB returns the underlying sql.DB connection
func (cp *ConnectionPool) GetDB() *sql.DB {
	return cp.db
}

// Close closes the database connection
func (cp *ConnectionPool) Close() error {
	if cp.db != nil {
		return cp.db.Close()
	}
	return nil
}

// Health checks the database health
func (cp *ConnectionPool) Health(ctx context.Context) error {
	ctxTest, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return cp.db.PingContext(ctxTest)
}
