package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost of 8 keeps hashing around 25ms on small nodes
const bcryptCost = 8

// HashPassword generates a bcrypt hash of the password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks if the provided password matches the hash
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// IsHashed reports whether a configured secret is a bcrypt hash
func IsHashed(secret string) bool {
	return strings.HasPrefix(secret, "$2a$") || strings.HasPrefix(secret, "$2b$") || strings.HasPrefix(secret, "$2y$")
}

// CheckSecret compares a password against a configured secret, which may be
// plaintext or a bcrypt hash. An empty secret never matches.
func CheckSecret(secret, password string) bool {
	if secret == "" {
		return false
	}
	if IsHashed(secret) {
		return VerifyPassword(secret, password)
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(password)) == 1
}
