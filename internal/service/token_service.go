package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/interntrack/internal/domain"
	"github.com/aryan0dhankhar/interntrack/internal/observability/metrics"
	"github.com/aryan0dhankhar/interntrack/internal/security/auth"
	"github.com/aryan0dhankhar/interntrack/pkg/cache"
)

// TokenCache caches token→user lookups. Implementations must treat every
// failure as a miss; the cache is an optimization, never the authority.
type TokenCache interface {
	GetUserID(ctx context.Context, key string) (string, bool)
	SetUserID(ctx context.Context, key, userID string, ttl time.Duration)
	Forget(ctx context.Context, key string)
}

// MemoryTokenCache adapts the in-process TTL cache to the TokenCache
// interface. Used when no Redis instance is configured.
type MemoryTokenCache struct {
	cache *cache.Cache
}

func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{cache: cache.New()}
}

func (m *MemoryTokenCache) GetUserID(_ context.Context, key string) (string, bool) {
	return m.cache.Get("token:" + key)
}

func (m *MemoryTokenCache) SetUserID(_ context.Context, key, userID string, ttl time.Duration) {
	m.cache.Set("token:"+key, userID, ttl)
}

func (m *MemoryTokenCache) Forget(_ context.Context, key string) {
	m.cache.Delete("token:" + key)
}

// TokenService issues and resolves opaque bearer tokens. A user holds at
// most one token at a time: issuing returns the existing token while it is
// still valid and mints a fresh one otherwise.
type TokenService struct {
	tokenRepo  domain.TokenRepository
	userRepo   domain.UserRepository
	tokenCache TokenCache
	ttl        time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewTokenService creates a new token service
func NewTokenService(
	tokenRepo domain.TokenRepository,
	userRepo domain.UserRepository,
	tokenCache TokenCache,
	ttl time.Duration,
	logger *slog.Logger,
) *TokenService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenService{
		tokenRepo:  tokenRepo,
		userRepo:   userRepo,
		tokenCache: tokenCache,
		ttl:        ttl,
		logger:     logger,
		now:        time.Now,
	}
}

// Issue returns the user's current token, minting a new one when none
// exists or the existing one has expired.
func (s *TokenService) Issue(ctx context.Context, user *domain.User) (*domain.Token, error) {
	existing, err := s.tokenRepo.GetByUser(ctx, user.ID)
	if err == nil {
		if s.now().Before(existing.ExpiresAt(s.ttl)) {
			return existing, nil
		}
		// Expired: revoke before minting a replacement.
		if err := s.tokenRepo.Delete(ctx, existing.Key); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("failed to revoke expired token: %w", err)
		}
		s.tokenCache.Forget(ctx, existing.Key)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	key, err := auth.NewTokenKey()
	if err != nil {
		return nil, err
	}

	token := &domain.Token{Key: key, UserID: user.ID}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		// Two concurrent issues can both miss the lookup; the user_id
		// unique key lets exactly one insert win. The loser returns the
		// winner's token.
		if errors.Is(err, domain.ErrDuplicate) {
			return s.tokenRepo.GetByUser(ctx, user.ID)
		}
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	metrics.ObserveTokenIssued()
	s.logger.Info("token issued", slog.String("user_id", user.ID))
	return token, nil
}

// Resolve maps a bearer token key to its active user. Unknown, expired and
// revoked tokens all come back as domain.ErrNotFound.
func (s *TokenService) Resolve(ctx context.Context, key string) (*domain.User, error) {
	if userID, ok := s.tokenCache.GetUserID(ctx, key); ok {
		return s.activeUser(ctx, userID)
	}

	token, err := s.tokenRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	if !s.now().Before(token.ExpiresAt(s.ttl)) {
		if err := s.tokenRepo.Delete(ctx, token.Key); err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("failed to remove expired token", slog.String("error", err.Error()))
		}
		return nil, domain.ErrNotFound
	}

	remaining := time.Until(token.ExpiresAt(s.ttl))
	s.tokenCache.SetUserID(ctx, key, token.UserID, remaining)

	return s.activeUser(ctx, token.UserID)
}

func (s *TokenService) activeUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrNotFound
	}
	return user, nil
}
