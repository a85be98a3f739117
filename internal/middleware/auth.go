package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/inotebook/inotebook-go/internal/crypto"
)

// TokenHeader carries the bearer token. Authorization: Bearer is accepted as a fallback.
const TokenHeader = "auth-token"

const unauthenticatedMessage = "Please authenticate using a valid token"

type contextKey string

const userIDKey contextKey = "userID"

// Authenticate returns middleware that rejects requests without a valid token
// and stores the token's user id in the request context.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				writeJSONError(w, http.StatusUnauthorized, unauthenticatedMessage)
				return
			}

			claims, err := crypto.ValidateToken(token, secret)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, unauthenticatedMessage)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.User.ID)))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(TokenHeader)); token != "" {
		return token
	}
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "response": msg})
}
