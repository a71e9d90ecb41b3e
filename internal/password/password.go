package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinCost is the lowest acceptable bcrypt work factor. Configured costs below
// this are raised to it.
const MinCost = 10

// Hasher hashes and verifies password credentials with bcrypt
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the given bcrypt cost, clamped to [MinCost, bcrypt.MaxCost]
func NewHasher(cost int) *Hasher {
	if cost < MinCost {
		cost = MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of plaintext. bcrypt generates its own random
// salt, so two hashes of the same password never match.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("cannot hash an empty password")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hash. A malformed or empty hash
// simply fails verification; it never panics or leaks an error to callers.
func (h *Hasher) Verify(plaintext, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
