package utils

import (
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// bcrypt only uses the first 72 bytes of its input
const maxBcryptLength = 72

// trimPassword truncates the password so bcrypt never rejects long input.
// Hash and verify trim identically, so verification stays consistent.
func trimPassword(password string) []byte {
	b := []byte(password)
	if len(b) > maxBcryptLength {
		b = b[:maxBcryptLength]
	}
	return b
}

// HashPassword returns the bcrypt hash of a password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(trimPassword(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), trimPassword(password)) == nil
}
