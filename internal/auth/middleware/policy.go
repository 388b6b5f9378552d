package middleware

import (
	"net/http"

	"github.com/LucianoSainz/w5d1/internal/auth/policy"
	"github.com/LucianoSainz/w5d1/internal/auth/service"
	"go.uber.org/zap"
)

// PolicyMiddleware enforces the route policy table.
// It must run after IdentityMiddleware.
func PolicyMiddleware(table *policy.Table, guard *service.Guard, store SessionStore, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := GetUser(r.Context())
			decision := guard.Check(user, table.Match(r.URL.Path))
			if decision.Allowed() {
				next.ServeHTTP(w, r)
				return
			}

			// Remember the page so login can send the user back to it
			if decision.Redirect == guard.LoginPath() && r.Method == http.MethodGet {
				if err := store.SetReturnTo(w, r, r.URL.RequestURI()); err != nil {
					logger.Error("failed to store return path", zap.Error(err))
				}
			}

			fields := []zap.Field{zap.String("path", r.URL.Path), zap.String("redirect", decision.Redirect)}
			if user != nil {
				fields = append(fields, zap.Int("userId", user.ID), zap.String("role", string(user.Role)))
			}
			logger.Debug("access denied", fields...)

			http.Redirect(w, r, decision.Redirect, http.StatusFound)
		})
	}
}
