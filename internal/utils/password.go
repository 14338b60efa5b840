package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword produces a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
// The server never stores plaintext; the admin credential is provisioned
// already hashed.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPasswordHash reports whether password matches the provisioned
// bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
