package policy

import (
	"log/slog"

	"github.com/aryan0dhankhar/interntrack/internal/domain"
)

// Resource identifies the kind of resource being accessed
type Resource string

const (
	ResourceTask       Resource = "task"
	ResourceAttendance Resource = "attendance"
)

// Operation identifies what is being performed
type Operation string

const (
	OpList   Operation = "list"
	OpGet    Operation = "get"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Decision is the outcome of an authorization check. OwnerScope is the user
// ID every query must be filtered by; an empty OwnerScope grants an
// unrestricted view. Repositories report rows outside the scope as not
// found, never as forbidden, so a denied caller learns nothing about the
// row's existence.
type Decision struct {
	Allow      bool
	OwnerScope string
}

// Policy computes access decisions. It is a pure function of the identity
// and the request; the one configurable behavior is the task visibility
// mode.
type Policy struct {
	// taskAdminAll grants staff and superusers an unrestricted task view.
	// The default mode scopes every authenticated user, admins included,
	// to their own tasks.
	taskAdminAll bool
	logger       *slog.Logger
}

// New creates a policy in the given task visibility mode
func New(taskAdminAll bool, logger *slog.Logger) *Policy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Policy{taskAdminAll: taskAdminAll, logger: logger}
}

// Authorize returns the decision for an identity performing op on a
// resource kind. A nil or inactive identity is always denied.
func (p *Policy) Authorize(identity *domain.User, resource Resource, op Operation) Decision {
	if identity == nil || !identity.IsActive {
		return Decision{Allow: false}
	}

	switch resource {
	case ResourceTask:
		if op != OpCreate && p.taskAdminAll && identity.IsAdmin() {
			return Decision{Allow: true}
		}
		return Decision{Allow: true, OwnerScope: identity.ID}
	case ResourceAttendance:
		// No admin bypass: attendance is always self-scoped.
		return Decision{Allow: true, OwnerScope: identity.ID}
	default:
		p.logger.Warn("authorization check for unknown resource",
			slog.String("resource", string(resource)),
			slog.String("user_id", identity.ID),
		)
		return Decision{Allow: false}
	}
}
