package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/LucianoSainz/w5d1/internal/models"
)

// UserFinder looks users up by their ID
type UserFinder interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// IdentityCodec converts an authenticated user into the value kept in the session and back
type IdentityCodec struct {
	users UserFinder
}

// NewIdentityCodec creates a new identity codec
func NewIdentityCodec(users UserFinder) *IdentityCodec {
	return &IdentityCodec{users: users}
}

// Serialize returns the session token for user, which is its ID
func (c *IdentityCodec) Serialize(user *models.User) int {
	return user.ID
}

// Deserialize reloads the full user for a session token.
// It returns models.ErrIdentityGone when the user no longer exists.
func (c *IdentityCodec) Deserialize(ctx context.Context, id int) (*models.User, error) {
	user, err := c.users.GetByID(ctx, id)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, models.ErrIdentityGone
	}
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize user %d: %w", id, err)
	}
	return user, nil
}
