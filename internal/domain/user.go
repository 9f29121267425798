package domain

import (
	"context"
	"time"
)

// User represents a system user
type User struct {
	ID           string // UUID
	Email        string // Unique email address, normalized (domain lower-cased)
	Name         string // Display name
	PasswordHash string // Bcrypt hashed password (never serialized)
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds an administrative role.
func (u *User) IsAdmin() bool {
	return u.IsStaff || u.IsSuperuser
}

// UserRepository defines data access for users
type UserRepository interface {
	// Create inserts a new user. Returns ErrDuplicate when the email is
	// already registered (enforced by a unique index).
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
}

// Token is an opaque bearer credential tied to a single user.
type Token struct {
	Key       string // Random hex string presented as the bearer credential
	UserID    string
	CreatedAt time.Time
}

// ExpiresAt returns the moment the token stops being valid for the given TTL.
func (t *Token) ExpiresAt(ttl time.Duration) time.Time {
	return t.CreatedAt.Add(ttl)
}

// TokenRepository defines data access for bearer tokens
type TokenRepository interface {
	Create(ctx context.Context, token *Token) error
	GetByKey(ctx context.Context, key string) (*Token, error)
	GetByUser(ctx context.Context, userID string) (*Token, error)
	Delete(ctx context.Context, key string) error
	// DeleteExpired removes tokens created before the cutoff and returns
	// the number of rows removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
