package httpapi

import (
	"context"
	"net/http"
)

type ctxKey int

const userIDKey ctxKey = iota

// userIDHeader is set by the fronting identity proxy after it validated the
// session; this core trusts it as-is (auth is an external collaborator).
const userIDHeader = "X-User-ID"

// RequireUser rejects requests without an authenticated user id and stashes
// the id in the request context for handlers.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := r.Header.Get(userIDHeader)
		if uid == "" {
			writeError(w, http.StatusUnauthorized, "missing user identity")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, uid)))
	})
}

// UserID returns the authenticated user id stored by RequireUser, or "".
func UserID(ctx context.Context) string {
	uid, _ := ctx.Value(userIDKey).(string)
	return uid
}
