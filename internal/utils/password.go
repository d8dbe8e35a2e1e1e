package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher is a salted one-way hasher for PINs.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher returns a hasher with cost, falling back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

// Hash hashes a plaintext secret using bcrypt.
func (h *BcryptHasher) Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), h.Cost)
	return string(hash), err
}

// Verify compares a plaintext secret with a bcrypt hash.
func (h *BcryptHasher) Verify(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
