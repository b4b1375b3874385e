package service

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrEncoding is returned when a plaintext password cannot be hashed.
var ErrEncoding = errors.New("password encoding failed")

// PasswordHasher hashes and verifies passwords with bcrypt.
// The salt lives inside the hash, so verification survives restarts.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a PasswordHasher. An out-of-range cost falls back
// to bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// HashPassword returns a salted bcrypt hash of plain.
func (h *PasswordHasher) HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", ErrEncoding
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches hash. A malformed hash never matches.
func (h *PasswordHasher) CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
