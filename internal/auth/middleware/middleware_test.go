package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LucianoSainz/w5d1/internal/auth/policy"
	"github.com/LucianoSainz/w5d1/internal/auth/service"
	"github.com/LucianoSainz/w5d1/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPolicies = "/=authenticated;/private-page=authenticated;/private-page-admin-editors=ADMIN|EDITOR;/private-page-admin=ADMIN"

// mockSessionStore is a mock implementation of SessionStore
type mockSessionStore struct {
	userID   int
	hasUser  bool
	err      error
	cleared  bool
	clearErr error
	returnTo string
}

func (m *mockSessionStore) UserID(r *http.Request) (int, bool, error) {
	return m.userID, m.hasUser, m.err
}

func (m *mockSessionStore) Clear(w http.ResponseWriter, r *http.Request) error {
	m.cleared = true
	m.hasUser = false
	return m.clearErr
}

func (m *mockSessionStore) SetReturnTo(w http.ResponseWriter, r *http.Request, path string) error {
	m.returnTo = path
	return nil
}

// mockResolver is a mock implementation of IdentityResolver
type mockResolver struct {
	users map[int]*models.User
	err   error
}

func (m *mockResolver) Deserialize(ctx context.Context, id int) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, models.ErrIdentityGone
	}
	return user, nil
}

func capturingHandler(seen **models.User, called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		if user, ok := GetUser(r.Context()); ok {
			*seen = user
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestIdentityMiddleware(t *testing.T) {
	alice := &models.User{ID: 1, Username: "alice", Role: models.RoleEditor}

	tests := []struct {
		name           string
		store          *mockSessionStore
		resolver       *mockResolver
		expectedStatus int
		expectedUser   *models.User
		expectCalled   bool
		expectCleared  bool
	}{
		{
			name:           "anonymous",
			store:          &mockSessionStore{},
			resolver:       &mockResolver{},
			expectedStatus: http.StatusOK,
			expectCalled:   true,
		},
		{
			name:           "logged in",
			store:          &mockSessionStore{userID: 1, hasUser: true},
			resolver:       &mockResolver{users: map[int]*models.User{1: alice}},
			expectedStatus: http.StatusOK,
			expectedUser:   alice,
			expectCalled:   true,
		},
		{
			name:           "identity gone clears session",
			store:          &mockSessionStore{userID: 2, hasUser: true},
			resolver:       &mockResolver{users: map[int]*models.User{1: alice}},
			expectedStatus: http.StatusOK,
			expectCalled:   true,
			expectCleared:  true,
		},
		{
			name:           "identity gone with failing clear still continues",
			store:          &mockSessionStore{userID: 2, hasUser: true, clearErr: errors.New("redis down")},
			resolver:       &mockResolver{},
			expectedStatus: http.StatusOK,
			expectCalled:   true,
			expectCleared:  true,
		},
		{
			name:           "user store unavailable",
			store:          &mockSessionStore{userID: 1, hasUser: true},
			resolver:       &mockResolver{err: fmt.Errorf("failed: %w", models.ErrStoreUnavailable)},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "session store unavailable",
			store:          &mockSessionStore{err: errors.New("redis down")},
			resolver:       &mockResolver{},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := zap.NewDevelopment()
			var seen *models.User
			var called bool

			handler := IdentityMiddleware(tt.store, tt.resolver, logger)(capturingHandler(&seen, &called))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectCalled, called)
			assert.Equal(t, tt.expectedUser, seen)
			assert.Equal(t, tt.expectCleared, tt.store.cleared)
		})
	}
}

func TestGetUser_Missing(t *testing.T) {
	user, ok := GetUser(context.Background())
	assert.False(t, ok)
	assert.Nil(t, user)

	user, ok = GetUser(WithUser(context.Background(), nil))
	assert.False(t, ok)
	assert.Nil(t, user)
}

func TestPolicyMiddleware(t *testing.T) {
	table, err := policy.Parse(testPolicies)
	require.NoError(t, err)
	guard := service.NewGuard("/login", "/")

	admin := &models.User{ID: 1, Username: "root", Role: models.RoleAdmin}
	editor := &models.User{ID: 2, Username: "alice", Role: models.RoleEditor}
	plain := &models.User{ID: 3, Username: "bob", Role: models.RoleNone}

	tests := []struct {
		name             string
		path             string
		method           string
		user             *models.User
		expectedStatus   int
		expectedLocation string
		expectedReturnTo string
	}{
		{name: "public login page", path: "/login", user: nil, expectedStatus: http.StatusOK},
		{name: "anonymous home", path: "/", user: nil, expectedStatus: http.StatusFound, expectedLocation: "/login", expectedReturnTo: "/"},
		{name: "anonymous private page", path: "/private-page", user: nil, expectedStatus: http.StatusFound, expectedLocation: "/login", expectedReturnTo: "/private-page"},
		{name: "anonymous post is not remembered", path: "/private-page", method: http.MethodPost, user: nil, expectedStatus: http.StatusFound, expectedLocation: "/login"},
		{name: "plain user private page", path: "/private-page", user: plain, expectedStatus: http.StatusOK},
		{name: "plain user admin editors page", path: "/private-page-admin-editors", user: plain, expectedStatus: http.StatusFound, expectedLocation: "/"},
		{name: "editor admin editors page", path: "/private-page-admin-editors", user: editor, expectedStatus: http.StatusOK},
		{name: "editor admin page", path: "/private-page-admin", user: editor, expectedStatus: http.StatusFound, expectedLocation: "/"},
		{name: "admin admin page", path: "/private-page-admin", user: admin, expectedStatus: http.StatusOK},
		{name: "anonymous admin page", path: "/private-page-admin", user: nil, expectedStatus: http.StatusFound, expectedLocation: "/login", expectedReturnTo: "/private-page-admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := zap.NewDevelopment()
			store := &mockSessionStore{}
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			handler := PolicyMiddleware(table, guard, store, logger)(next)

			req := httptest.NewRequest(method, tt.path, nil)
			if tt.user != nil {
				req = req.WithContext(WithUser(req.Context(), tt.user))
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedLocation, w.Header().Get("Location"))
			assert.Equal(t, tt.expectedReturnTo, store.returnTo)
		})
	}
}
