package middleware

import (
	"context"
	"net/http"
	"strings"

	"billing-backend/internal/auth"
	"billing-backend/internal/models"
)

type contextKey string

const UserIDKey contextKey = "user_id"
const UsernameKey contextKey = "username"
const RoleKey contextKey = "role"

// UserLookup loads the current state of a user so that deactivation and role
// changes apply immediately instead of when the token expires.
type UserLookup interface {
	GetUser(ctx context.Context, id int) (*models.User, error)
}

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	users      UserLookup
}

func NewAuthMiddleware(jwtManager *auth.JWTManager, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		users:      users,
	}
}

// Authenticate is a middleware that validates JWT tokens
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return m.RequireRole()(next)
}

// RequireRole authenticates the request and, when roles are given, checks the
// user has one of them.
func (m *AuthMiddleware) RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, status, msg := m.resolve(r)
			if user == nil {
				writeAuthError(w, status, msg)
				return
			}

			if len(allowedRoles) > 0 && !hasRole(user.Role, allowedRoles) {
				writeAuthError(w, http.StatusForbidden, "Forbidden: Insufficient permissions")
				return
			}

			if info, ok := r.Context().Value(requestInfoKey).(*requestInfo); ok {
				info.userID = user.ID
			}

			// Context carries database values, not token claims
			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			ctx = context.WithValue(ctx, UsernameKey, user.Username)
			ctx = context.WithValue(ctx, RoleKey, user.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin is a middleware that ensures the user has admin role
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireRole(models.RoleAdmin)(next)
}

func (m *AuthMiddleware) resolve(r *http.Request) (*models.User, int, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, http.StatusUnauthorized, "Authorization header required"
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, http.StatusUnauthorized, "Invalid authorization format"
	}

	claims, err := m.jwtManager.ValidateToken(parts[1])
	if err != nil {
		return nil, http.StatusUnauthorized, "Invalid or expired token"
	}

	user, err := m.users.GetUser(r.Context(), claims.UserID)
	if err != nil {
		return nil, http.StatusUnauthorized, "User not found"
	}
	if !user.IsActive {
		return nil, http.StatusForbidden, "Account suspended. Please contact administrator."
	}
	return user, 0, ""
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	code := "UNAUTHORIZED"
	if status == http.StatusForbidden {
		code = "FORBIDDEN"
	}
	writeJSONError(w, status, msg, code)
}

// GetUserIDFromContext extracts user ID from request context
func GetUserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)
	return userID, ok
}

// GetRoleFromContext extracts role from request context
func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

// WithUser returns a context carrying the given user, as Authenticate would.
func WithUser(ctx context.Context, user *models.User) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, user.ID)
	ctx = context.WithValue(ctx, UsernameKey, user.Username)
	return context.WithValue(ctx, RoleKey, user.Role)
}
