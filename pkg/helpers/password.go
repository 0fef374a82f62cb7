package helpers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PlaceholderHash is a well-formed cost-10 bcrypt hash that no password is
// known to match. It is compared against when an account does not exist.
const PlaceholderHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z1bW9C7qW0z3Jx0C1Vq1a6Ri"

// HashPasswordWithCost hashes with an explicit cost; out-of-range costs fall back to the default.
func HashPasswordWithCost(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// NewPlaceholderHash hashes a random secret at cost so that comparing against
// it takes as long as comparing against a stored password of the same cost.
func NewPlaceholderHash(cost int) (string, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", err
	}
	return HashPasswordWithCost(hex.EncodeToString(secret), cost)
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// BcryptVerifier implements repository.SecretVerifier on top of bcrypt.
type BcryptVerifier struct{}

// Verify reports whether plain matches hash. A mismatch is not an error;
// malformed hashes are.
func (BcryptVerifier) Verify(ctx context.Context, plain, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
