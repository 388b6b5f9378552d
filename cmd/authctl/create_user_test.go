package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/LucianoSainz/w5d1/internal/config"
	"github.com/LucianoSainz/w5d1/internal/models"
	"github.com/LucianoSainz/w5d1/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// memoryUsers is an in-memory user repository
type memoryUsers struct {
	mu     sync.Mutex
	users  []*models.User
	closed bool
}

func (m *memoryUsers) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return models.ErrDuplicateUsername
		}
	}
	user.ID = len(m.users) + 1
	stored := *user
	m.users = append(m.users, &stored)
	return nil
}

func (m *memoryUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *memoryUsers) GetByID(ctx context.Context, id int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Logging.Level = "error"
	cfg.Auth.BcryptCost = bcrypt.MinCost
	return cfg
}

func newTestApp(users *memoryUsers, passwords ...string) *app {
	calls := 0
	return &app{
		loadConfig: func() (*config.Config, error) { return testConfig(), nil },
		openUsers: func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (services.UserRepository, func(), error) {
			return users, func() { users.closed = true }, nil
		},
		openMigrator: func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (migrator, func(), error) {
			return nil, nil, errors.New("not used")
		},
		readPassword: func(fd int) ([]byte, error) {
			if calls >= len(passwords) {
				return nil, errors.New("no terminal")
			}
			calls++
			return []byte(passwords[calls-1]), nil
		},
	}
}

func execute(a *app, stdin string, args ...string) (string, error) {
	cmd := NewRootCmd(a)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCreateUserCmd(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		stdin         string
		passwords     []string
		existing      []string
		expectError   bool
		errorContains string
		expectOutput  string
		expectRole    models.Role
		expectStored  bool
	}{
		{
			name:         "admin from stdin",
			args:         []string{"create-user", "--username", "root", "--role", "ADMIN", "--password-stdin"},
			stdin:        "s3cret\n",
			expectOutput: `Created user "root" with id 1 and role ADMIN`,
			expectRole:   models.RoleAdmin,
			expectStored: true,
		},
		{
			name:         "lowercase role is accepted",
			args:         []string{"create-user", "-u", "ed", "-r", "editor", "--password-stdin"},
			stdin:        "s3cret",
			expectOutput: `Created user "ed" with id 1 and role EDITOR`,
			expectRole:   models.RoleEditor,
			expectStored: true,
		},
		{
			name:         "no role",
			args:         []string{"create-user", "-u", "bob", "--password-stdin"},
			stdin:        "s3cret\r\n",
			expectOutput: `Created user "bob" with id 1 and role none`,
			expectRole:   models.RoleNone,
			expectStored: true,
		},
		{
			name:         "password prompted twice",
			args:         []string{"create-user", "-u", "bob"},
			passwords:    []string{"s3cret", "s3cret"},
			expectOutput: `Created user "bob" with id 1 and role none`,
			expectRole:   models.RoleNone,
			expectStored: true,
		},
		{
			name:          "prompted passwords differ",
			args:          []string{"create-user", "-u", "bob"},
			passwords:     []string{"s3cret", "secret"},
			expectError:   true,
			errorContains: errPasswordMismatch.Error(),
		},
		{
			name:          "unknown role",
			args:          []string{"create-user", "-u", "bob", "-r", "SUPERUSER", "--password-stdin"},
			stdin:         "s3cret\n",
			expectError:   true,
			errorContains: "unknown role",
		},
		{
			name:          "missing username",
			args:          []string{"create-user", "--password-stdin"},
			stdin:         "s3cret\n",
			expectError:   true,
			errorContains: "username",
		},
		{
			name:          "empty password",
			args:          []string{"create-user", "-u", "bob", "--password-stdin"},
			stdin:         "\n",
			expectError:   true,
			errorContains: "must not be empty",
		},
		{
			name:          "duplicate username",
			args:          []string{"create-user", "-u", "bob", "--password-stdin"},
			stdin:         "s3cret\n",
			existing:      []string{"bob"},
			expectError:   true,
			errorContains: `user "bob" already exists`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &memoryUsers{}
			for _, name := range tt.existing {
				require.NoError(t, users.Create(context.Background(), &models.User{Username: name, PasswordHash: "x"}))
			}

			out, err := execute(newTestApp(users, tt.passwords...), tt.stdin, tt.args...)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Len(t, users.users, len(tt.existing))
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, tt.expectOutput)
			assert.True(t, users.closed)

			if tt.expectStored {
				require.Len(t, users.users, 1)
				stored := users.users[0]
				assert.Equal(t, tt.expectRole, stored.Role)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")))
			}
		})
	}
}

func TestCreateUserCmd_StoreUnavailable(t *testing.T) {
	a := newTestApp(&memoryUsers{})
	a.openUsers = func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (services.UserRepository, func(), error) {
		return nil, nil, errors.New("connection refused")
	}

	_, err := execute(a, "s3cret\n", "create-user", "-u", "bob", "--password-stdin")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to database")
}

func TestCreateUserCmd_ConfigError(t *testing.T) {
	a := newTestApp(&memoryUsers{})
	a.loadConfig = func() (*config.Config, error) { return nil, errors.New("DB_HOST is required") }

	_, err := execute(a, "s3cret\n", "create-user", "-u", "bob", "--password-stdin")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST is required")
}

func TestRoleValue(t *testing.T) {
	var v roleValue

	require.NoError(t, v.Set(" admin "))
	assert.Equal(t, "ADMIN", v.String())
	assert.Equal(t, "role", v.Type())

	err := v.Set("owner")
	assert.ErrorIs(t, err, models.ErrUnknownRole)
	assert.Equal(t, "ADMIN", v.String())
}
