package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier checks a plaintext secret against a stored hash
type CredentialVerifier interface {
	Matches(plaintext, storedHash string) bool
}

// BcryptVerifier hashes and verifies passwords with bcrypt
type BcryptVerifier struct {
	cost int
}

// NewBcryptVerifier creates a verifier; cost <= 0 selects bcrypt.DefaultCost
func NewBcryptVerifier(cost int) *BcryptVerifier {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptVerifier{cost: cost}
}

// Matches reports whether plaintext hashes to storedHash
func (v *BcryptVerifier) Matches(plaintext, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext)) == nil
}

// Hash returns the bcrypt hash of plaintext
func (v *BcryptVerifier) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), v.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}
