package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/interntrack/internal/domain"
	"github.com/aryan0dhankhar/interntrack/internal/security/policy"
)

// AttendanceService implements attendance CRUD behind the access-control
// policy. Attendance has no admin bypass: every operation runs in the
// requesting user's own scope.
type AttendanceService struct {
	attendanceRepo domain.AttendanceRepository
	policy         *policy.Policy
	logger         *slog.Logger
	now            func() time.Time
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(
	attendanceRepo domain.AttendanceRepository,
	pol *policy.Policy,
	logger *slog.Logger,
) *AttendanceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceService{
		attendanceRepo: attendanceRepo,
		policy:         pol,
		logger:         logger,
		now:            time.Now,
	}
}

// AttendanceInput carries caller-supplied attendance fields.
type AttendanceInput struct {
	Status *string
	Date   *string
}

// List returns the identity's attendance records, newest first.
func (s *AttendanceService) List(ctx context.Context, identity *domain.User) ([]*domain.Attendance, error) {
	d := s.policy.Authorize(identity, policy.ResourceAttendance, policy.OpList)
	if !d.Allow {
		return nil, domain.ErrNotFound
	}
	return s.attendanceRepo.List(ctx, d.OwnerScope)
}

// Get returns one of the identity's attendance records.
func (s *AttendanceService) Get(ctx context.Context, identity *domain.User, id int64) (*domain.Attendance, error) {
	d := s.policy.Authorize(identity, policy.ResourceAttendance, policy.OpGet)
	if !d.Allow {
		return nil, domain.ErrNotFound
	}
	return s.attendanceRepo.GetByID(ctx, id, d.OwnerScope)
}

// Create records attendance for the identity. The date defaults to today
// and the status to absent. A second record for the same day fails with a
// field-level validation error; the database's composite unique key makes
// this hold under concurrent creates as well.
func (s *AttendanceService) Create(ctx context.Context, identity *domain.User, input AttendanceInput) (*domain.Attendance, error) {
	d := s.policy.Authorize(identity, policy.ResourceAttendance, policy.OpCreate)
	if !d.Allow {
		return nil, domain.ErrNotFound
	}

	att := &domain.Attendance{
		UserID: identity.ID,
		Date:   s.now().Format(domain.DateLayout),
		Status: domain.AttendanceAbsent,
	}

	if input.Status != nil {
		att.Status = domain.AttendanceStatus(*input.Status)
		if !att.Status.Valid() {
			return nil, domain.NewValidationError("status", "status must be present or absent")
		}
	}
	if input.Date != nil {
		if _, err := time.Parse(domain.DateLayout, *input.Date); err != nil {
			return nil, domain.NewValidationError("date", "date must be formatted YYYY-MM-DD")
		}
		att.Date = *input.Date
	}

	if err := s.attendanceRepo.Create(ctx, att); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.NewValidationError("date", "attendance for this day already exists")
		}
		return nil, err
	}

	s.logger.Info("attendance recorded",
		slog.Int64("attendance_id", att.ID),
		slog.String("user_id", identity.ID),
		slog.String("date", att.Date),
		slog.String("status", string(att.Status)),
	)
	return att, nil
}

// Update changes the status (and optionally the date) of one of the
// identity's records.
func (s *AttendanceService) Update(ctx context.Context, identity *domain.User, id int64, input AttendanceInput) (*domain.Attendance, error) {
	d := s.policy.Authorize(identity, policy.ResourceAttendance, policy.OpUpdate)
	if !d.Allow {
		return nil, domain.ErrNotFound
	}

	att, err := s.attendanceRepo.GetByID(ctx, id, d.OwnerScope)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		status := domain.AttendanceStatus(*input.Status)
		if !status.Valid() {
			return nil, domain.NewValidationError("status", "status must be present or absent")
		}
		att.Status = status
	}
	if input.Date != nil {
		if _, err := time.Parse(domain.DateLayout, *input.Date); err != nil {
			return nil, domain.NewValidationError("date", "date must be formatted YYYY-MM-DD")
		}
		att.Date = *input.Date
	}

	if err := s.attendanceRepo.Update(ctx, att, d.OwnerScope); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.NewValidationError("date", "attendance for this day already exists")
		}
		return nil, err
	}
	return att, nil
}

// Delete removes one of the identity's attendance records.
func (s *AttendanceService) Delete(ctx context.Context, identity *domain.User, id int64) error {
	d := s.policy.Authorize(identity, policy.ResourceAttendance, policy.OpDelete)
	if !d.Allow {
		return domain.ErrNotFound
	}
	return s.attendanceRepo.Delete(ctx, id, d.OwnerScope)
}
