// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/inhabitapp/inhabit/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// TokenResolver resolves a bearer token to the authenticated user.
type TokenResolver interface {
	UserByToken(ctx context.Context, token string) (*models.User, error)
}

// BearerAuth enforces bearer-token authentication.
//
// It extracts the token from the Authorization header, resolves it to a
// user, and stores the user in the request context for downstream
// handlers. Requests without a valid token get a 401; clients are
// expected to discard their stored credential on that status.
func BearerAuth(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractBearerToken(r)
			if token == "" {
				http.Error(w, `{"error":"missing bearer token"}`, http.StatusUnauthorized)
				return
			}
			user, err := resolver.UserByToken(r.Context(), token)
			if err != nil {
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractBearerToken pulls the token out of an Authorization header.
// Returns an empty string when the header is absent or malformed.
func ExtractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// GetUserFromContext extracts the authenticated user from the request
// context. Returns nil if not found.
func GetUserFromContext(ctx context.Context) *models.User {
	val := ctx.Value(userKey)
	if u, ok := val.(*models.User); ok {
		return u
	}
	return nil
}
