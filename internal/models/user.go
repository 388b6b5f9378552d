package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is a capability label attached to a user
type Role string

// Role constants
const (
	RoleNone   Role = ""
	RoleEditor Role = "EDITOR"
	RoleAdmin  Role = "ADMIN"
)

// ParseRole converts a string into a known Role.
// Unknown role strings are rejected so that misconfigured policies fail at load time.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleNone:
		return RoleNone, nil
	case RoleEditor:
		return RoleEditor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return RoleNone, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// RoleSet is a set of roles allowed to access a route
type RoleSet map[Role]struct{}

// NewRoleSet creates a set from the given roles
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

// Contains reports whether role is a member of the set
func (s RoleSet) Contains(role Role) bool {
	_, ok := s[role]
	return ok
}

// User represents a registered account
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// SignupRequest represents a signup form submission
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest represents a login form submission
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
