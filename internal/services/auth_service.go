package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/LucianoSainz/w5d1/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	// Method Create inserts a new user into the database and sets its ID.
	//
	// "user" parameter is used to create a new user.
	//
	// If a user with the same username already exists, models.ErrDuplicateUsername will be returned.
	// Any other failure wraps models.ErrStoreUnavailable.
	Create(ctx context.Context, user *models.User) error
	// Method GetByUsername retrieves a user by exact username match.
	//
	// "username" parameter is used to retrieve a user by username.
	//
	// If user with such username does not exist, models.ErrUserNotFound will be returned together with "nil" value.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Method GetByID retrieves a user by ID.
	//
	// "id" parameter is used to retrieve a user by ID.
	//
	// If user with such ID does not exist, models.ErrUserNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// PasswordHasher is the interface that wraps salted password hashing
type PasswordHasher interface {
	// Method Hash returns a salted one-way hash of the password.
	Hash(password string) (string, error)
	// Method Verify reports whether password matches hash.
	Verify(password, hash string) bool
	// Method DummyHash returns a hash that matches no password.
	// It is verified against when a username is unknown so both failures cost the same time.
	DummyHash() string
}

// authService implements AuthService
type authService struct {
	userRepo UserRepository
	hasher   PasswordHasher
	logger   *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserRepository, hasher PasswordHasher, logger *zap.Logger) *authService {
	return &authService{
		userRepo: userRepo,
		hasher:   hasher,
		logger:   logger,
	}
}

// Signup registers a new user without any role
func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error) {
	return s.CreateUser(ctx, req.Username, req.Password, models.RoleNone)
}

// CreateUser registers a new user with the given role
//
// Username uniqueness is enforced by the store's unique index only, there is no separate existence check
// that a concurrent signup could slip past.
func (s *authService) CreateUser(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, models.ErrValidation
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, models.ErrPasswordTooLong
		}
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicateUsername) {
			return nil, models.ErrDuplicateUsername
		}
		s.logger.Error("failed to create user", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created", zap.Int("userId", user.ID), zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return user, nil
}

// Authenticate verifies a username and password pair
//
// An unknown username yields models.ErrUnknownUser and a wrong password models.ErrBadPassword.
// A password verification runs in both cases so the two failures take the same time.
func (s *authService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.hasher.Verify(password, s.hasher.DummyHash())
			return nil, models.ErrUnknownUser
		}
		s.logger.Error("failed to get user by username", zap.Error(err))
		return nil, fmt.Errorf("failed to authenticate user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, models.ErrBadPassword
	}

	return user, nil
}
