package middleware

import (
	"net/http"
	"slices"
	"strings"
)

// CORSMiddleware creates a CORS middleware with the specified allowed origins
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowedOrigin, credentials := getAllowedOrigin(r.Header.Get("Origin"), allowedOrigins)

			if allowedOrigin != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
				w.Header().Add("Vary", "Origin")
			}
			if credentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getAllowedOrigin checks if the request origin is in the allowed origins list.
// An explicitly listed origin is echoed back and may send the session cookie.
// A wildcard answers "*" without credentials.
func getAllowedOrigin(requestOrigin string, allowedOrigins []string) (string, bool) {
	if requestOrigin == "" {
		return "", false
	}

	for _, allowed := range allowedOrigins {
		if allowed != "*" && strings.EqualFold(requestOrigin, allowed) {
			return requestOrigin, true
		}
	}

	if slices.Contains(allowedOrigins, "*") {
		return "*", false
	}

	return "", false
}
