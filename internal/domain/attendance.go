package domain

import (
	"context"
	"time"
)

// AttendanceStatus enumerates the daily attendance states.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// Valid reports whether the status is one of the known values.
func (s AttendanceStatus) Valid() bool {
	return s == AttendancePresent || s == AttendanceAbsent
}

// Attendance is a single present/absent record. At most one row exists per
// (user, date) pair; the database enforces this with a unique composite key.
type Attendance struct {
	ID           int64
	UserID       string
	Date         string // Calendar day, YYYY-MM-DD
	Status       AttendanceStatus
	AttendedAt   time.Time // Creation timestamp
	LastModified time.Time
}

// DateLayout is the wire and storage format for attendance dates.
const DateLayout = "2006-01-02"

// AttendanceRepository defines data access for attendance records. Unlike
// tasks there is no unrestricted view: ownerID is always the requesting user.
type AttendanceRepository interface {
	// Create inserts a record; returns ErrDuplicate when a row for the
	// same (user, date) already exists.
	Create(ctx context.Context, att *Attendance) error
	GetByID(ctx context.Context, id int64, ownerID string) (*Attendance, error)
	// List returns records newest first (descending attended_at).
	List(ctx context.Context, ownerID string) ([]*Attendance, error)
	Update(ctx context.Context, att *Attendance, ownerID string) error
	Delete(ctx context.Context, id int64, ownerID string) error
}
