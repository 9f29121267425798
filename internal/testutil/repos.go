package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aryan0dhankhar/interntrack/internal/domain"
)

// In-memory repository implementations backing service and API tests.
// They mirror the Postgres repositories' semantics: ErrNotFound for rows
// outside the owner scope, ErrDuplicate for uniqueness violations.

// MemUserRepo is an in-memory domain.UserRepository.
type MemUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // by ID
}

func NewMemUserRepo() *MemUserRepo {
	return &MemUserRepo{users: make(map[string]*domain.User)}
}

func (r *MemUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrDuplicate
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *MemUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *MemUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MemUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = cloneUser(user)
	return nil
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

// MemTokenRepo is an in-memory domain.TokenRepository.
type MemTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.Token // by key
}

func NewMemTokenRepo() *MemTokenRepo {
	return &MemTokenRepo{tokens: make(map[string]*domain.Token)}
}

func (r *MemTokenRepo) Create(_ context.Context, token *domain.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.UserID == token.UserID {
			return domain.ErrDuplicate
		}
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	c := *token
	r.tokens[token.Key] = &c
	return nil
}

func (r *MemTokenRepo) GetByKey(_ context.Context, key string) (*domain.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (r *MemTokenRepo) GetByUser(_ context.Context, userID string) (*domain.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.UserID == userID {
			c := *t
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MemTokenRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[key]; !ok {
		return domain.ErrNotFound
	}
	delete(r.tokens, key)
	return nil
}

func (r *MemTokenRepo) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for key, t := range r.tokens {
		if t.CreatedAt.Before(cutoff) {
			delete(r.tokens, key)
			removed++
		}
	}
	return removed, nil
}

// MemTaskRepo is an in-memory domain.TaskRepository.
type MemTaskRepo struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*domain.Task
}

func NewMemTaskRepo() *MemTaskRepo {
	return &MemTaskRepo{tasks: make(map[int64]*domain.Task)}
}

func (r *MemTaskRepo) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	task.ID = r.nextID
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	c := *task
	r.tasks[task.ID] = &c
	return nil
}

func (r *MemTaskRepo) GetByID(_ context.Context, id int64, ownerID string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || (ownerID != "" && t.UserID != ownerID) {
		return nil, domain.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (r *MemTaskRepo) List(_ context.Context, ownerID string) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Task, 0)
	for _, t := range r.tasks {
		if ownerID == "" || t.UserID == ownerID {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *MemTaskRepo) Update(_ context.Context, task *domain.Task, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tasks[task.ID]
	if !ok || (ownerID != "" && existing.UserID != ownerID) {
		return domain.ErrNotFound
	}
	task.UserID = existing.UserID // ownership is immutable
	task.UpdatedAt = time.Now()
	c := *task
	r.tasks[task.ID] = &c
	return nil
}

func (r *MemTaskRepo) Delete(_ context.Context, id int64, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || (ownerID != "" && t.UserID != ownerID) {
		return domain.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

// MemAttendanceRepo is an in-memory domain.AttendanceRepository.
type MemAttendanceRepo struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]*domain.Attendance
}

func NewMemAttendanceRepo() *MemAttendanceRepo {
	return &MemAttendanceRepo{records: make(map[int64]*domain.Attendance)}
}

func (r *MemAttendanceRepo) Create(_ context.Context, att *domain.Attendance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.records {
		if a.UserID == att.UserID && a.Date == att.Date {
			return domain.ErrDuplicate
		}
	}
	r.nextID++
	att.ID = r.nextID
	now := time.Now()
	att.AttendedAt = now
	att.LastModified = now
	c := *att
	r.records[att.ID] = &c
	return nil
}

func (r *MemAttendanceRepo) GetByID(_ context.Context, id int64, ownerID string) (*domain.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.records[id]
	if !ok || a.UserID != ownerID {
		return nil, domain.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (r *MemAttendanceRepo) List(_ context.Context, ownerID string) ([]*domain.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Attendance, 0)
	for _, a := range r.records {
		if a.UserID == ownerID {
			c := *a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AttendedAt.Equal(out[j].AttendedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].AttendedAt.After(out[j].AttendedAt)
	})
	return out, nil
}

func (r *MemAttendanceRepo) Update(_ context.Context, att *domain.Attendance, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.records[att.ID]
	if !ok || existing.UserID != ownerID {
		return domain.ErrNotFound
	}
	for id, a := range r.records {
		if id != att.ID && a.UserID == existing.UserID && a.Date == att.Date {
			return domain.ErrDuplicate
		}
	}
	att.UserID = existing.UserID
	att.AttendedAt = existing.AttendedAt
	att.LastModified = time.Now()
	c := *att
	r.records[att.ID] = &c
	return nil
}

func (r *MemAttendanceRepo) Delete(_ context.Context, id int64, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.records[id]
	if !ok || a.UserID != ownerID {
		return domain.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

var (
	_ domain.UserRepository       = (*MemUserRepo)(nil)
	_ domain.TokenRepository      = (*MemTokenRepo)(nil)
	_ domain.TaskRepository       = (*MemTaskRepo)(nil)
	_ domain.AttendanceRepository = (*MemAttendanceRepo)(nil)
)
