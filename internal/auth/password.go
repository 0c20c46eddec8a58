package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword derives a bcrypt hash of password at the default cost.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password must not be empty", ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
// A missing hash fails closed.
func VerifyPassword(hash, password string) error {
	if hash == "" {
		return fmt.Errorf("%w: no stored password hash", ErrInvalidCredentials)
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
