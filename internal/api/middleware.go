// Package api serves read-only queries over the recorded page graph using chi.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const authRealm = `Bearer realm="raido graph"`

// AuthMiddleware guards the graph routes with a static bearer token. With
// enabled false every request passes.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	if !enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				w.Header().Set("WWW-Authenticate", authRealm)
				writeError(w, r, http.StatusUnauthorized, "graph api requires a bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
