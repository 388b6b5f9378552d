package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/LucianoSainz/w5d1/internal/models"
	"go.uber.org/zap"
)

type contextKey string

const userKey contextKey = "user"

// SessionStore is the part of the session manager the auth middlewares need
type SessionStore interface {
	UserID(r *http.Request) (int, bool, error)
	Clear(w http.ResponseWriter, r *http.Request) error
	SetReturnTo(w http.ResponseWriter, r *http.Request, path string) error
}

// IdentityResolver turns a session token back into a user
type IdentityResolver interface {
	Deserialize(ctx context.Context, id int) (*models.User, error)
}

// IdentityMiddleware loads the logged in user from the session into the request context
// A session pointing at a deleted user is cleared and the request continues anonymously
func IdentityMiddleware(store SessionStore, resolver IdentityResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok, err := store.UserID(r)
			if err != nil {
				logger.Error("failed to read session", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.Deserialize(r.Context(), id)
			if err != nil {
				if errors.Is(err, models.ErrIdentityGone) {
					logger.Info("session user no longer exists, clearing session", zap.Int("userId", id))
					if err := store.Clear(w, r); err != nil {
						logger.Error("failed to clear session", zap.Error(err))
					}
					next.ServeHTTP(w, r)
					return
				}
				logger.Error("failed to load session user", zap.Int("userId", id), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying user
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser retrieves the logged in user from context
func GetUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
