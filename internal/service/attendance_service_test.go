package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/interntrack/internal/domain"
	"github.com/aryan0dhankhar/interntrack/internal/security/policy"
	"github.com/aryan0dhankhar/interntrack/internal/testutil"
)

func newAttendanceService() *AttendanceService {
	pol := policy.New(false, testutil.NewLogger())
	return NewAttendanceService(testutil.NewMemAttendanceRepo(), pol, testutil.NewLogger())
}

func intern(id string) *domain.User {
	return &domain.User{ID: id, Email: id + "@example.com", IsActive: true}
}

func TestCreateAttendanceDefaults(t *testing.T) {
	svc := newAttendanceService()
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC) }

	record, err := svc.Create(context.Background(), intern("u1"), AttendanceInput{})
	require.NoError(t, err)

	assert.Equal(t, "u1", record.UserID)
	assert.Equal(t, "2024-03-15", record.Date)
	assert.Equal(t, domain.AttendanceAbsent, record.Status)
}

func TestCreateAttendanceExplicitFields(t *testing.T) {
	svc := newAttendanceService()

	record, err := svc.Create(context.Background(), intern("u1"), AttendanceInput{
		Status: str("present"),
		Date:   str("2024-03-14"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AttendancePresent, record.Status)
	assert.Equal(t, "2024-03-14", record.Date)
}

func TestCreateAttendanceValidation(t *testing.T) {
	svc := newAttendanceService()
	ctx := context.Background()

	_, err := svc.Create(ctx, intern("u1"), AttendanceInput{Status: str("late")})
	verr, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "status")

	_, err = svc.Create(ctx, intern("u1"), AttendanceInput{Date: str("15-03-2024")})
	verr, ok = domain.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "date")
}

func TestCreateAttendanceDuplicateDay(t *testing.T) {
	svc := newAttendanceService()
	ctx := context.Background()

	_, err := svc.Create(ctx, intern("u1"), AttendanceInput{Date: str("2024-03-15")})
	require.NoError(t, err)

	_, err = svc.Create(ctx, intern("u1"), AttendanceInput{Date: str("2024-03-15"), Status: str("present")})
	verr, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "date")

	// A different user marking the same day is fine.
	_, err = svc.Create(ctx, intern("u2"), AttendanceInput{Date: str("2024-03-15")})
	assert.NoError(t, err)
}

func TestAttendanceScoping(t *testing.T) {
	svc := newAttendanceService()
	ctx := context.Background()

	record, err := svc.Create(ctx, intern("u1"), AttendanceInput{Date: str("2024-03-15")})
	require.NoError(t, err)

	// Even an admin only sees their own attendance.
	admin := &domain.User{ID: "admin", IsActive: true, IsStaff: true, IsSuperuser: true}
	list, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Get(ctx, admin, record.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = svc.Delete(ctx, admin, record.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	list, err = svc.List(ctx, intern("u1"))
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAttendanceListNewestFirst(t *testing.T) {
	svc := newAttendanceService()
	ctx := context.Background()
	owner := intern("u1")

	for _, date := range []string{"2024-03-13", "2024-03-14", "2024-03-15"} {
		_, err := svc.Create(ctx, owner, AttendanceInput{Date: str(date)})
		require.NoError(t, err)
	}

	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2024-03-15", list[0].Date, "most recently created record comes first")
	assert.Equal(t, "2024-03-13", list[2].Date)
}

func TestUpdateAttendance(t *testing.T) {
	svc := newAttendanceService()
	ctx := context.Background()
	owner := intern("u1")

	record, err := svc.Create(ctx, owner, AttendanceInput{Date: str("2024-03-15")})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, owner, record.ID, AttendanceInput{Status: str("present")})
	require.NoError(t, err)
	assert.Equal(t, domain.AttendancePresent, updated.Status)
	assert.Equal(t, "2024-03-15", updated.Date)

	_, err = svc.Update(ctx, owner, record.ID, AttendanceInput{Status: str("asleep")})
	_, ok := domain.AsValidationError(err)
	assert.True(t, ok)
}

func TestUpdateAttendanceDateCollision(t *testing.T) {
	svc := newAttendanceService()
	ctx := context.Background()
	owner := intern("u1")

	_, err := svc.Create(ctx, owner, AttendanceInput{Date: str("2024-03-14")})
	require.NoError(t, err)
	second, err := svc.Create(ctx, owner, AttendanceInput{Date: str("2024-03-15")})
	require.NoError(t, err)

	// Moving the second record onto the first record's day trips the
	// uniqueness rule.
	_, err = svc.Update(ctx, owner, second.ID, AttendanceInput{Date: str("2024-03-14")})
	verr, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "date")
}

func TestDeleteAttendance(t *testing.T) {
	svc := newAttendanceService()
	ctx := context.Background()
	owner := intern("u1")

	record, err := svc.Create(ctx, owner, AttendanceInput{Date: str("2024-03-15")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner, record.ID))

	_, err = svc.Get(ctx, owner, record.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
