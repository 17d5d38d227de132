// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"subjectswap_server/helpers"
	"subjectswap_server/services"
)

// ContextKey is a type for context keys.
type ContextKey string

// UserIDKey is the context key for the authenticated user id.
const UserIDKey ContextKey = "user_id"

// LoginCookie carries the login token for browser clients.
const LoginCookie = "SubjectSwapLoginJWT"

// Auth rejects requests without a valid bearer token or login cookie.
func Auth(verifier services.CredentialVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				helpers.WriteError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				helpers.WriteError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID gets user ID from context.
func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(UserIDKey).(string); ok {
		return v
	}
	return ""
}

// WithUserID returns ctx carrying userID, as Auth would set it.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	if cookie, err := r.Cookie(LoginCookie); err == nil {
		return cookie.Value
	}
	return ""
}
