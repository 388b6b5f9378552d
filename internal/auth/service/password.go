// Package service contains the authentication primitives: password hashing,
// session identity encoding and access decisions
package service

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher handles salted password hashing and verification
type PasswordHasher struct {
	cost      int
	dummyHash string
}

// NewPasswordHasher creates a bcrypt hasher with the given work factor
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("invalid bcrypt cost %d: must be between %d and %d", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	// Hash of a random secret nobody knows, verified against when a username does not exist
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate dummy secret: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword(secret, cost)
	if err != nil {
		return nil, fmt.Errorf("failed to generate dummy hash: %w", err)
	}

	return &PasswordHasher{
		cost:      cost,
		dummyHash: string(dummy),
	}, nil
}

// Hash generates a salted hash of the password.
// bcrypt draws a new random salt on every call, so equal passwords produce different hashes.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches hash.
// Malformed hashes never match.
func (h *PasswordHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// DummyHash returns a valid hash with the configured cost that matches no known password
func (h *PasswordHasher) DummyHash() string {
	return h.dummyHash
}

// Cost returns the configured work factor
func (h *PasswordHasher) Cost() int {
	return h.cost
}
