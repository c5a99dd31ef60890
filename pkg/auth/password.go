package auth

import (
	"fmt"

	"github.com/alexedwards/argon2id"
)

// HashPassword derives an argon2id PHC string from a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

// VerifyPassword reports whether password matches the stored PHC string.
// A malformed stored hash counts as a mismatch, not an error: the caller
// treats both the same way during login.
func VerifyPassword(password, hash string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, hash)
	return err == nil && match
}
