package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/interntrack/internal/domain"
)

// PostgresTokenRepository implements domain.TokenRepository using PostgreSQL
type PostgresTokenRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ domain.TokenRepository = (*PostgresTokenRepository)(nil)

// NewPostgresTokenRepository creates a new token repository
func NewPostgresTokenRepository(db *sql.DB, logger *slog.Logger) *PostgresTokenRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTokenRepository{db: db, logger: logger}
}

// Create inserts a new token
func (r *PostgresTokenRepository) Create(ctx context.Context, token *domain.Token) error {
	query := `
		INSERT INTO tokens (key, user_id)
		VALUES ($1, $2)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, token.Key, token.UserID).Scan(&token.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

// GetByKey retrieves a token by its key
func (r *PostgresTokenRepository) GetByKey(ctx context.Context, key string) (*domain.Token, error) {
	token := &domain.Token{}
	query := `SELECT key, user_id, created_at FROM tokens WHERE key = $1`

	err := r.db.QueryRowContext(ctx, query, key).Scan(&token.Key, &token.UserID, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return token, nil
}

// GetByUser retrieves the token held by a user, if any
func (r *PostgresTokenRepository) GetByUser(ctx context.Context, userID string) (*domain.Token, error) {
	token := &domain.Token{}
	query := `SELECT key, user_id, created_at FROM tokens WHERE user_id = $1`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(&token.Key, &token.UserID, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get token by user: %w", err)
	}
	return token, nil
}

// Delete removes a token by key
func (r *PostgresTokenRepository) Delete(ctx context.Context, key string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteExpired removes all tokens created before the cutoff
func (r *PostgresTokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rows > 0 {
		r.logger.Info("expired tokens removed", slog.Int64("count", rows))
	}
	return rows, nil
}
