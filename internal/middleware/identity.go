package middleware

import (
	"net/http"

	"hoclieu/internal/httputil"
)

// Identity reads the authenticated principal from the X-User-ID header
// set by the upstream gateway and stores it on the request context.
// Requests without the header pass through unauthenticated; handlers
// that require a principal reject them individually. The health check
// never needs one.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID := r.Header.Get("X-User-ID"); userID != "" {
				r = httputil.WithUserID(r, userID)
			}
			next.ServeHTTP(w, r)
		})
	}
}
