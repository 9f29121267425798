package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/interntrack/internal/domain"
	"github.com/aryan0dhankhar/interntrack/internal/security/policy"
)

// TaskService implements task CRUD behind the access-control policy. The
// requesting identity is an explicit parameter on every operation; there is
// no ambient request state.
type TaskService struct {
	taskRepo domain.TaskRepository
	userRepo domain.UserRepository
	policy   *policy.Policy
	logger   *slog.Logger
}

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo domain.TaskRepository,
	userRepo domain.UserRepository,
	pol *policy.Policy,
	logger *slog.Logger,
) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{taskRepo: taskRepo, userRepo: userRepo, policy: pol, logger: logger}
}

// TaskInput carries caller-supplied task fields. There is deliberately no
// owner field: the owner is always the authenticated identity.
type TaskInput struct {
	Title         *string
	Description   *string
	AssigneeEmail *string
	Completion    *bool
}

// List returns the tasks visible to the identity, newest first.
func (s *TaskService) List(ctx context.Context, identity *domain.User) ([]*domain.Task, error) {
	d := s.policy.Authorize(identity, policy.ResourceTask, policy.OpList)
	if !d.Allow {
		return nil, domain.ErrNotFound
	}
	return s.taskRepo.List(ctx, d.OwnerScope)
}

// Get returns a single task if it is within the identity's scope.
func (s *TaskService) Get(ctx context.Context, identity *domain.User, id int64) (*domain.Task, error) {
	d := s.policy.Authorize(identity, policy.ResourceTask, policy.OpGet)
	if !d.Allow {
		return nil, domain.ErrNotFound
	}
	return s.taskRepo.GetByID(ctx, id, d.OwnerScope)
}

// Create builds and stores a task owned by the identity. The assignee email
// is resolved to a user reference up front; an unregistered email leaves
// the reference empty rather than failing the create.
func (s *TaskService) Create(ctx context.Context, identity *domain.User, input TaskInput) (*domain.Task, error) {
	d := s.policy.Authorize(identity, policy.ResourceTask, policy.OpCreate)
	if !d.Allow {
		return nil, domain.ErrNotFound
	}

	if input.Title == nil || *input.Title == "" {
		return nil, domain.NewValidationError("title", "title is required")
	}
	if input.AssigneeEmail == nil || *input.AssigneeEmail == "" {
		return nil, domain.NewValidationError("assignee_intern", "assignee email is required")
	}
	if !validEmail(*input.AssigneeEmail) {
		return nil, domain.NewValidationError("assignee_intern", "enter a valid email address")
	}

	task := &domain.Task{
		UserID:        identity.ID,
		Title:         *input.Title,
		AssigneeEmail: NormalizeEmail(*input.AssigneeEmail),
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Completion != nil {
		task.Completion = *input.Completion
	}

	assigneeID, err := s.resolveAssignee(ctx, task.AssigneeEmail)
	if err != nil {
		return nil, err
	}
	task.AssigneeID = assigneeID

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("task created",
		slog.Int64("task_id", task.ID),
		slog.String("user_id", identity.ID),
	)
	return task, nil
}

// Update applies a full or partial update to a task within the identity's
// scope. Full updates (PUT) require the same fields as create; partial
// updates change only what was sent. Ownership is immutable either way.
func (s *TaskService) Update(ctx context.Context, identity *domain.User, id int64, input TaskInput, partial bool) (*domain.Task, error) {
	d := s.policy.Authorize(identity, policy.ResourceTask, policy.OpUpdate)
	if !d.Allow {
		return nil, domain.ErrNotFound
	}

	if !partial {
		if input.Title == nil || *input.Title == "" {
			return nil, domain.NewValidationError("title", "title is required")
		}
		if input.AssigneeEmail == nil || *input.AssigneeEmail == "" {
			return nil, domain.NewValidationError("assignee_intern", "assignee email is required")
		}
	}

	task, err := s.taskRepo.GetByID(ctx, id, d.OwnerScope)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, domain.NewValidationError("title", "title must not be blank")
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Completion != nil {
		task.Completion = *input.Completion
	}
	if input.AssigneeEmail != nil {
		if !validEmail(*input.AssigneeEmail) {
			return nil, domain.NewValidationError("assignee_intern", "enter a valid email address")
		}
		task.AssigneeEmail = NormalizeEmail(*input.AssigneeEmail)
		assigneeID, err := s.resolveAssignee(ctx, task.AssigneeEmail)
		if err != nil {
			return nil, err
		}
		task.AssigneeID = assigneeID
	}

	if err := s.taskRepo.Update(ctx, task, d.OwnerScope); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task within the identity's scope.
func (s *TaskService) Delete(ctx context.Context, identity *domain.User, id int64) error {
	d := s.policy.Authorize(identity, policy.ResourceTask, policy.OpDelete)
	if !d.Allow {
		return domain.ErrNotFound
	}
	if err := s.taskRepo.Delete(ctx, id, d.OwnerScope); err != nil {
		return err
	}
	s.logger.Info("task deleted",
		slog.Int64("task_id", id),
		slog.String("user_id", identity.ID),
	)
	return nil
}

// resolveAssignee looks the assignee email up as a registered user.
// Unregistered assignees are allowed; the reference stays empty.
func (s *TaskService) resolveAssignee(ctx context.Context, email string) (string, error) {
	assignee, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to resolve assignee: %w", err)
	}
	return assignee.ID, nil
}
