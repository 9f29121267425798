package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aryan0dhankhar/interntrack/internal/domain"
	"github.com/aryan0dhankhar/interntrack/internal/security/audit"
	"github.com/aryan0dhankhar/interntrack/internal/security/auth"
	"github.com/aryan0dhankhar/interntrack/internal/security/ratelimit"
)

type identityContextKey struct{}

// TokenResolver turns a bearer token key into the authenticated user.
type TokenResolver interface {
	Resolve(ctx context.Context, key string) (*domain.User, error)
}

// publicPath reports whether a path is served without authentication.
func publicPath(path string) bool {
	switch path {
	case "/users/create", "/users/token", "/healthz", "/readyz", "/metrics":
		return true
	}
	return false
}

// TokenAuthMiddleware resolves the Authorization bearer token into an
// identity and stores it in the request context. Every failure mode is the
// same 401 so callers cannot distinguish unknown from expired tokens.
func TokenAuthMiddleware(resolver TokenResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w)
				return
			}

			key, err := auth.ExtractToken(authHeader)
			if err != nil {
				unauthorized(w)
				return
			}

			user, err := resolver.Resolve(r.Context(), key)
			if err != nil {
				log.Debug("token resolution failed", slog.String("error", err.Error()))
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitMiddleware limits authenticated requests per user.
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			userID := ""
			if u := IdentityFromContext(r.Context()); u != nil {
				userID = u.ID
			}

			if !limiter.Allow(userID) {
				log.Warn("rate limit exceeded", slog.String("user_id", userID))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate limit exceeded"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware records mutating requests against protected resources.
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u := IdentityFromContext(r.Context()); u != nil {
				switch {
				case r.Method == http.MethodPost:
					auditLog.LogAction(r.Context(), u.ID, "create", resourceFromPath(r.URL.Path), "", "initiated", "")
				case r.Method == http.MethodDelete:
					auditLog.LogDeletion(r.Context(), u.ID, resourceFromPath(r.URL.Path), r.PathValue("id"), "initiated")
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ValidateJSONContentType ensures mutating requests carry a JSON body.
func ValidateJSONContentType(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if !strings.Contains(contentType, "application/json") {
				log.Warn("invalid content type",
					slog.String("path", r.URL.Path),
					slog.String("content_type", contentType),
				)
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext returns the authenticated user, or nil on public paths.
func IdentityFromContext(ctx context.Context) *domain.User {
	if u, ok := ctx.Value(identityContextKey{}).(*domain.User); ok {
		return u
	}
	return nil
}

// WithIdentity returns a context carrying the given user. Exposed for tests.
func WithIdentity(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, identityContextKey{}, user)
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"invalid or missing credentials"}`))
}

func resourceFromPath(path string) string {
	switch {
	case strings.HasPrefix(path, "/tasks"):
		return "task"
	case strings.HasPrefix(path, "/attendances"):
		return "attendance"
	case strings.HasPrefix(path, "/users"):
		return "user"
	default:
		return "api"
	}
}
