package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aryan0dhankhar/interntrack/internal/domain"
	"github.com/aryan0dhankhar/interntrack/internal/testutil"
)

func user(id string, staff, super bool) *domain.User {
	return &domain.User{ID: id, IsActive: true, IsStaff: staff, IsSuperuser: super}
}

func TestTaskOwnerOnlyMode(t *testing.T) {
	p := New(false, testutil.NewLogger())

	for _, u := range []*domain.User{user("u1", false, false), user("admin", true, true)} {
		d := p.Authorize(u, ResourceTask, OpList)
		assert.True(t, d.Allow)
		assert.Equal(t, u.ID, d.OwnerScope, "owner-only mode scopes everyone, admins included")
	}
}

func TestTaskAdminAllMode(t *testing.T) {
	p := New(true, testutil.NewLogger())

	d := p.Authorize(user("admin", true, false), ResourceTask, OpList)
	assert.True(t, d.Allow)
	assert.Empty(t, d.OwnerScope, "staff get an unrestricted task view")

	d = p.Authorize(user("u1", false, false), ResourceTask, OpGet)
	assert.True(t, d.Allow)
	assert.Equal(t, "u1", d.OwnerScope)

	// Creates are always stamped with the caller, even for admins.
	d = p.Authorize(user("admin", true, false), ResourceTask, OpCreate)
	assert.True(t, d.Allow)
	assert.Equal(t, "admin", d.OwnerScope)
}

func TestAttendanceHasNoAdminBypass(t *testing.T) {
	p := New(true, testutil.NewLogger())

	d := p.Authorize(user("admin", true, true), ResourceAttendance, OpList)
	assert.True(t, d.Allow)
	assert.Equal(t, "admin", d.OwnerScope)
}

func TestDenied(t *testing.T) {
	p := New(false, testutil.NewLogger())

	assert.False(t, p.Authorize(nil, ResourceTask, OpList).Allow)

	inactive := user("u1", false, false)
	inactive.IsActive = false
	assert.False(t, p.Authorize(inactive, ResourceTask, OpList).Allow)

	assert.False(t, p.Authorize(user("u1", false, false), Resource("unknown"), OpList).Allow)
}
