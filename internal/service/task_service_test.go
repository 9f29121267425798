package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/interntrack/internal/domain"
	"github.com/aryan0dhankhar/interntrack/internal/security/policy"
	"github.com/aryan0dhankhar/interntrack/internal/testutil"
)

func newTaskService(adminAll bool) (*TaskService, *testutil.MemUserRepo) {
	userRepo := testutil.NewMemUserRepo()
	taskRepo := testutil.NewMemTaskRepo()
	pol := policy.New(adminAll, testutil.NewLogger())
	return NewTaskService(taskRepo, userRepo, pol, testutil.NewLogger()), userRepo
}

func activeUser(t *testing.T, repo *testutil.MemUserRepo, id string, staff bool) *domain.User {
	t.Helper()
	user := &domain.User{ID: id, Email: id + "@example.com", IsActive: true, IsStaff: staff}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func str(s string) *string { return &s }

func TestCreateTask(t *testing.T) {
	svc, userRepo := newTaskService(false)
	owner := activeUser(t, userRepo, "u1", false)
	ctx := context.Background()

	task, err := svc.Create(ctx, owner, TaskInput{
		Title:         str("Write onboarding doc"),
		Description:   str("Cover the first week"),
		AssigneeEmail: str("u1@Example.COM"),
	})
	require.NoError(t, err)

	assert.Equal(t, "u1", task.UserID, "owner comes from the identity, not the payload")
	assert.Equal(t, "u1@example.com", task.AssigneeEmail)
	assert.Equal(t, "u1", task.AssigneeID, "registered assignees resolve to their user id")
	assert.False(t, task.Completion)
}

func TestCreateTaskUnregisteredAssignee(t *testing.T) {
	svc, userRepo := newTaskService(false)
	owner := activeUser(t, userRepo, "u1", false)

	task, err := svc.Create(context.Background(), owner, TaskInput{
		Title:         str("T"),
		AssigneeEmail: str("ghost@example.com"),
	})
	require.NoError(t, err)
	assert.Empty(t, task.AssigneeID, "unregistered assignee leaves the reference empty")
	assert.Equal(t, "ghost@example.com", task.AssigneeEmail)
}

func TestCreateTaskValidation(t *testing.T) {
	svc, userRepo := newTaskService(false)
	owner := activeUser(t, userRepo, "u1", false)
	ctx := context.Background()

	tests := []struct {
		name  string
		input TaskInput
		field string
	}{
		{"missing title", TaskInput{AssigneeEmail: str("a@example.com")}, "title"},
		{"missing assignee", TaskInput{Title: str("T")}, "assignee_intern"},
		{"malformed assignee", TaskInput{Title: str("T"), AssigneeEmail: str("not-an-email")}, "assignee_intern"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, owner, tc.input)
			verr, ok := domain.AsValidationError(err)
			require.True(t, ok)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestTaskIsolationBetweenUsers(t *testing.T) {
	svc, userRepo := newTaskService(false)
	u1 := activeUser(t, userRepo, "u1", false)
	u2 := activeUser(t, userRepo, "u2", false)
	ctx := context.Background()

	task, err := svc.Create(ctx, u1, TaskInput{Title: str("Private"), AssigneeEmail: str("u2@example.com")})
	require.NoError(t, err)

	// u2 is the assignee but not the owner: the task stays invisible.
	list, err := svc.List(ctx, u2)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Get(ctx, u2, task.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = svc.Delete(ctx, u2, task.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	// The owner still sees it.
	list, err = svc.List(ctx, u1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, task.ID, list[0].ID)
}

func TestTaskListNewestFirst(t *testing.T) {
	svc, userRepo := newTaskService(false)
	owner := activeUser(t, userRepo, "u1", false)
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		_, err := svc.Create(ctx, owner, TaskInput{Title: str(title), AssigneeEmail: str("u1@example.com")})
		require.NoError(t, err)
	}

	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Title)
	assert.Equal(t, "first", list[2].Title)
}

func TestTaskAdminAllMode(t *testing.T) {
	svc, userRepo := newTaskService(true)
	owner := activeUser(t, userRepo, "u1", false)
	admin := activeUser(t, userRepo, "admin", true)
	ctx := context.Background()

	task, err := svc.Create(ctx, owner, TaskInput{Title: str("T"), AssigneeEmail: str("u1@example.com")})
	require.NoError(t, err)

	list, err := svc.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, task.ID, list[0].ID)

	// Admin creates still land on the admin's own account.
	adminTask, err := svc.Create(ctx, admin, TaskInput{Title: str("A"), AssigneeEmail: str("u1@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "admin", adminTask.UserID)
}

func TestUpdateTaskPartial(t *testing.T) {
	svc, userRepo := newTaskService(false)
	owner := activeUser(t, userRepo, "u1", false)
	ctx := context.Background()

	task, err := svc.Create(ctx, owner, TaskInput{Title: str("T"), AssigneeEmail: str("u1@example.com")})
	require.NoError(t, err)

	done := true
	updated, err := svc.Update(ctx, owner, task.ID, TaskInput{Completion: &done}, true)
	require.NoError(t, err)
	assert.True(t, updated.Completion)
	assert.Equal(t, "T", updated.Title, "untouched fields survive a partial update")
	assert.Equal(t, "u1", updated.UserID)
}

func TestUpdateTaskFullRequiresAllFields(t *testing.T) {
	svc, userRepo := newTaskService(false)
	owner := activeUser(t, userRepo, "u1", false)
	ctx := context.Background()

	task, err := svc.Create(ctx, owner, TaskInput{Title: str("T"), AssigneeEmail: str("u1@example.com")})
	require.NoError(t, err)

	done := true
	_, err = svc.Update(ctx, owner, task.ID, TaskInput{Completion: &done}, false)
	verr, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "title")
}

func TestDeniedIdentitySeesNotFound(t *testing.T) {
	svc, _ := newTaskService(false)
	ctx := context.Background()

	inactive := &domain.User{ID: "u1", IsActive: false}
	_, err := svc.List(ctx, inactive)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = svc.Get(ctx, nil, 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
