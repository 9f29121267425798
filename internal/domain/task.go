package domain

import (
	"context"
	"time"
)

// Task represents a work item owned by the user who created it.
type Task struct {
	ID            int64
	UserID        string // Owner; set at creation, immutable afterwards
	Title         string
	Description   string
	AssigneeEmail string // Raw assignee email as submitted
	AssigneeID    string // Resolved user UUID, empty when the email is unregistered
	Completion    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TaskRepository defines data access for tasks. The ownerID argument scopes
// reads and writes to rows owned by that user; an empty ownerID means the
// caller's policy grants an unrestricted view.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id int64, ownerID string) (*Task, error)
	// List returns tasks newest first (descending id).
	List(ctx context.Context, ownerID string) ([]*Task, error)
	Update(ctx context.Context, task *Task, ownerID string) error
	Delete(ctx context.Context, id int64, ownerID string) error
}
