// --- middleware/auth.go ---
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Susanth-Aluru/to-do-web/auth"
)

// ContextKey is a custom type to avoid context key collisions.
type ContextKey string

// UserKey is the key under which the authenticated username is stored
// in the request context.
const UserKey ContextKey = "username"

// Auth wraps next with bearer-token authentication. The Authorization
// header is resolved against the sessions document; on success the
// username is bound to the request context, on failure the request is
// answered with a 401 JSON error and never reaches next.
func Auth(a *auth.Auth, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, err := a.Authenticate(r.Header.Get("Authorization"))
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		ctx := context.WithValue(r.Context(), UserKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Username returns the authenticated username bound by Auth, or false
// if the request went through an unprotected route.
func Username(r *http.Request) (string, bool) {
	username, ok := r.Context().Value(UserKey).(string)
	return username, ok
}
