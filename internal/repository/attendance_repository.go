package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/interntrack/internal/domain"
)

// PostgresAttendanceRepository implements domain.AttendanceRepository using
// PostgreSQL. The (user_id, date) unique key lives in the schema, so two
// racing creates for the same day resolve to one success and one
// ErrDuplicate without any application-level check.
type PostgresAttendanceRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ domain.AttendanceRepository = (*PostgresAttendanceRepository)(nil)

// NewPostgresAttendanceRepository creates a new attendance repository
func NewPostgresAttendanceRepository(db *sql.DB, logger *slog.Logger) *PostgresAttendanceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAttendanceRepository{db: db, logger: logger}
}

const attendanceColumns = `id, user_id, to_char(date, 'YYYY-MM-DD'), status, attended_at, last_modified`

func scanAttendance(row interface{ Scan(...any) error }) (*domain.Attendance, error) {
	att := &domain.Attendance{}
	err := row.Scan(
		&att.ID,
		&att.UserID,
		&att.Date,
		&att.Status,
		&att.AttendedAt,
		&att.LastModified,
	)
	if err != nil {
		return nil, err
	}
	return att, nil
}

// Create inserts an attendance record; a second record for the same
// (user, date) comes back as domain.ErrDuplicate.
func (r *PostgresAttendanceRepository) Create(ctx context.Context, att *domain.Attendance) error {
	query := `
		INSERT INTO attendances (user_id, date, status)
		VALUES ($1, $2, $3)
		RETURNING id, to_char(date, 'YYYY-MM-DD'), attended_at, last_modified
	`

	err := r.db.QueryRowContext(ctx, query, att.UserID, att.Date, att.Status).
		Scan(&att.ID, &att.Date, &att.AttendedAt, &att.LastModified)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		r.logger.Error("failed to create attendance",
			slog.String("user_id", att.UserID),
			slog.String("date", att.Date),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create attendance: %w", err)
	}
	return nil
}

// GetByID retrieves an attendance record owned by ownerID
func (r *PostgresAttendanceRepository) GetByID(ctx context.Context, id int64, ownerID string) (*domain.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE id = $1 AND user_id = $2`

	att, err := scanAttendance(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return att, nil
}

// List returns the owner's attendance records, newest first
func (r *PostgresAttendanceRepository) List(ctx context.Context, ownerID string) ([]*domain.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE user_id = $1 ORDER BY attended_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		r.logger.Error("failed to list attendances",
			slog.String("owner_id", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var out []*domain.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		out = append(out, att)
	}

	return out, rows.Err()
}

// Update persists status/date changes to an owned record. Moving the record
// onto a date that already has one trips the unique key like a create.
func (r *PostgresAttendanceRepository) Update(ctx context.Context, att *domain.Attendance, ownerID string) error {
	query := `
		UPDATE attendances
		SET status = $1, date = $2, last_modified = now()
		WHERE id = $3 AND user_id = $4
		RETURNING last_modified
	`

	err := r.db.QueryRowContext(ctx, query, att.Status, att.Date, att.ID, ownerID).Scan(&att.LastModified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	return nil
}

// Delete removes an owned attendance record
func (r *PostgresAttendanceRepository) Delete(ctx context.Context, id int64, ownerID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM attendances WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
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
