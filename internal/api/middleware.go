package api

import (
	"net/http"
	"strings"
	"time"

	"frontdesk/pkg/session"
)

// SessionAuth validates the session token issued at login.
//
// Expected header:
// - Authorization: Bearer <JWT>
//
// The verified session, including the raw credential forwarded to the garage
// backend, is attached to the request context.
func SessionAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session token")
				return
			}

			token := strings.TrimSpace(authz[7:])
			v, err := session.VerifyToken(token, secret, time.Now())
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid session token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), v)))
		})
	}
}
