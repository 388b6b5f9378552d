package models

import (
	"errors"
	"fmt"
)

// Errors returned by the authentication core.
// Callers should match them with errors.Is, they are usually wrapped.
var (
	ErrValidation         = errors.New("username and password are required")
	ErrPasswordTooLong    = fmt.Errorf("%w: password must be at most 72 bytes", ErrValidation)
	ErrDuplicateUsername  = errors.New("the username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownUser        = fmt.Errorf("%w: incorrect username", ErrInvalidCredentials)
	ErrBadPassword        = fmt.Errorf("%w: incorrect password", ErrInvalidCredentials)
	ErrUserNotFound       = errors.New("user not found")
	ErrIdentityGone       = errors.New("session identity no longer resolves to a user")
	ErrStoreUnavailable   = errors.New("credential store unavailable")
	ErrUnknownRole        = errors.New("unknown role")
)
