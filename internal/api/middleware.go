// Package api implements the ontrack REST API using chi.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthMiddleware returns middleware that validates a static bearer token.
// When enabled is false every request passes. Otherwise the token is taken
// from "Authorization: Bearer <token>", or from the access_token query
// parameter on the event stream, where browsers cannot set headers.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			got, ok := bearerToken(r)
			if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="ontrack"`)
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer "), true
	}
	if strings.HasSuffix(r.URL.Path, "/events") {
		if q := r.URL.Query().Get("access_token"); q != "" {
			return q, true
		}
	}
	return "", false
}
