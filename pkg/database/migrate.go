package database

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/aryan0dhankhar/interntrack/migrations"
)

// Migrate applies all pending schema migrations.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, cp.db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	cp.logger.Info("database migrations applied")
	return nil
}
