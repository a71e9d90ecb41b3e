package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	hasher := NewHasher(MinCost)

	hash, err := hasher.Hash("Abcd1234!")
	if err != nil {
		t.Fatalf("Hash() failed: %v", err)
	}
	if hash == "Abcd1234!" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !hasher.Verify("Abcd1234!", hash) {
		t.Error("Verify() = false for the original plaintext")
	}
}

func TestVerifyRejectsMutations(t *testing.T) {
	hasher := NewHasher(MinCost)
	plaintext := "Abcd1234!"

	hash, err := hasher.Hash(plaintext)
	if err != nil {
		t.Fatalf("Hash() failed: %v", err)
	}

	// Every single-character mutation must fail verification
	for i := 0; i < len(plaintext); i++ {
		mutated := []byte(plaintext)
		mutated[i] ^= 0x01
		if hasher.Verify(string(mutated), hash) {
			t.Errorf("Verify() = true for mutation at index %d (%q)", i, mutated)
		}
	}
}

func TestHashesAreSalted(t *testing.T) {
	hasher := NewHasher(MinCost)

	first, err := hasher.Hash("Abcd1234!")
	if err != nil {
		t.Fatalf("Hash() failed: %v", err)
	}
	second, err := hasher.Hash("Abcd1234!")
	if err != nil {
		t.Fatalf("Hash() failed: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password must differ (random salt)")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	hasher := NewHasher(MinCost)

	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"garbage", "not-a-bcrypt-hash"},
		{"truncated", "$2a$10$abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if hasher.Verify("Abcd1234!", tt.hash) {
				t.Error("Verify() = true for a malformed hash")
			}
		})
	}
}

func TestHashEmptyPassword(t *testing.T) {
	hasher := NewHasher(MinCost)
	if _, err := hasher.Hash(""); err == nil {
		t.Error("expected error hashing an empty password")
	}
}

func TestCostFloor(t *testing.T) {
	// A cost below the floor is raised, never honored
	hasher := NewHasher(4)

	hash, err := hasher.Hash("Abcd1234!")
	if err != nil {
		t.Fatalf("Hash() failed: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("Cost() failed: %v", err)
	}
	if cost < MinCost {
		t.Errorf("hash cost = %d, want at least %d", cost, MinCost)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("unexpected hash format: %s", hash)
	}
}
