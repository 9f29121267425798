package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/aryan0dhankhar/interntrack/internal/domain"
)

const minPasswordLength = 6

// UserService owns user lifecycle: registration, role factories,
// credential verification and profile updates.
type UserService struct {
	userRepo domain.UserRepository
	logger   *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo domain.UserRepository, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{userRepo: userRepo, logger: logger}
}

// NormalizeEmail lower-cases the domain part of an email while preserving
// the case of the local part.
func NormalizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// CreateUser registers a new regular user. The email is normalized before
// storage and only a bcrypt hash of the password is kept.
func (s *UserService) CreateUser(ctx context.Context, email, password, name string) (*domain.User, error) {
	return s.createUser(ctx, email, password, name, false, false)
}

// CreateStaff registers a user carrying the staff flag.
func (s *UserService) CreateStaff(ctx context.Context, email, password string) (*domain.User, error) {
	return s.createUser(ctx, email, password, "", true, false)
}

// CreateSuperuser registers a user carrying both staff and superuser flags.
func (s *UserService) CreateSuperuser(ctx context.Context, email, password string) (*domain.User, error) {
	return s.createUser(ctx, email, password, "", true, true)
}

func (s *UserService) createUser(ctx context.Context, email, password, name string, staff, super bool) (*domain.User, error) {
	if email == "" {
		return nil, domain.NewValidationError("email", "email is required")
	}
	if !validEmail(email) {
		return nil, domain.NewValidationError("email", "enter a valid email address")
	}
	if len(password) < minPasswordLength {
		return nil, domain.NewValidationError("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        NormalizeEmail(email),
		Name:         name,
		PasswordHash: string(hash),
		IsActive:     true,
		IsStaff:      staff,
		IsSuperuser:  super,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.NewValidationError("email", "a user with this email already exists")
		}
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created",
		slog.String("user_id", user.ID),
		slog.Bool("is_staff", user.IsStaff),
		slog.Bool("is_superuser", user.IsSuperuser),
	)
	return user, nil
}

// Authenticate verifies an email+password pair. A mismatch on either field
// returns (nil, nil): the caller sees one undifferentiated failure, so the
// endpoint cannot be used to enumerate registered emails.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, nil
	}

	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	if !user.IsActive {
		return nil, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed", slog.String("email", user.Email))
		return nil, nil
	}

	return user, nil
}

// ProfileUpdate carries the fields a user may change on their own profile.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name     *string
	Password *string
}

// UpdateProfile applies a partial profile update to the given user.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Password != nil {
		if len(*update.Password) < minPasswordLength {
			return nil, domain.NewValidationError("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			s.logger.Error("failed to hash password", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("failed to update user", slog.String("user_id", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// Promote grants staff (and optionally superuser) status to a user.
// Superuser implies staff.
func (s *UserService) Promote(ctx context.Context, userID string, superuser bool) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.IsStaff = true
	if superuser {
		user.IsSuperuser = true
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to promote user: %w", err)
	}
	return user, nil
}
