package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/interntrack/internal/domain"
)

// PostgresTaskRepository implements domain.TaskRepository using PostgreSQL.
// Every read and write takes the owner scope computed by the access policy;
// rows outside the scope behave exactly like rows that do not exist.
type PostgresTaskRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ domain.TaskRepository = (*PostgresTaskRepository)(nil)

// NewPostgresTaskRepository creates a new task repository
func NewPostgresTaskRepository(db *sql.DB, logger *slog.Logger) *PostgresTaskRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskRepository{db: db, logger: logger}
}

const taskColumns = `id, user_id, title, description, assignee_email, assignee_id, completion, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*domain.Task, error) {
	task := &domain.Task{}
	var assigneeID sql.NullString
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.AssigneeEmail,
		&assigneeID,
		&task.Completion,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.AssigneeID = assigneeID.String
	return task, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create inserts a new task owned by task.UserID
func (r *PostgresTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (user_id, title, description, assignee_email, assignee_id, completion)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		task.UserID,
		task.Title,
		task.Description,
		task.AssigneeEmail,
		nullable(task.AssigneeID),
		task.Completion,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create task",
			slog.String("user_id", task.UserID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetByID retrieves a task within the owner scope
func (r *PostgresTaskRepository) GetByID(ctx context.Context, id int64, ownerID string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	args := []any{id}
	if ownerID != "" {
		query += ` AND user_id = $2`
		args = append(args, ownerID)
	}

	task, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// List returns tasks in the owner scope, newest first
func (r *PostgresTaskRepository) List(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var args []any
	if ownerID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, ownerID)
	}
	query += ` ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list tasks",
			slog.String("owner_id", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// Update persists task changes within the owner scope. The owner column is
// deliberately absent from the SET list: ownership never changes after
// creation.
func (r *PostgresTaskRepository) Update(ctx context.Context, task *domain.Task, ownerID string) error {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, assignee_email = $3, assignee_id = $4, completion = $5, updated_at = now()
		WHERE id = $6
	`
	args := []any{
		task.Title,
		task.Description,
		task.AssigneeEmail,
		nullable(task.AssigneeID),
		task.Completion,
		task.ID,
	}
	if ownerID != "" {
		query += ` AND user_id = $7`
		args = append(args, ownerID)
	}
	query += ` RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, args...).Scan(&task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// Delete removes a task within the owner scope
func (r *PostgresTaskRepository) Delete(ctx context.Context, id int64, ownerID string) error {
	query := `DELETE FROM tasks WHERE id = $1`
	args := []any{id}
	if ownerID != "" {
		query += ` AND user_id = $2`
		args = append(args, ownerID)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
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
