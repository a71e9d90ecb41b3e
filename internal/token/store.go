package token

import (
	"sync"
	"time"
)

// RevocationStore tracks revoked token ids until their encoded expiry passes.
// A jti present in the store must never validate again, even if the token is
// cryptographically well-formed and unexpired.
//
// Implementations must be safe for concurrent use. The in-memory store below
// is process-local; multi-instance deployments need an externalized
// implementation (or sticky routing) for revocation to be globally correct.
type RevocationStore interface {
	Revoke(jti string, expiresAt time.Time)
	IsRevoked(jti string) bool
	// Prune discards entries whose expiry has passed and returns how many were removed
	Prune(now time.Time) int
}

// MemoryRevocationStore is a mutex-guarded in-memory RevocationStore
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time // jti -> token expiry
}

// NewMemoryRevocationStore creates an empty in-memory revocation store
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		entries: make(map[string]time.Time),
	}
}

// Revoke marks a token id revoked until expiresAt. Revoking twice is a no-op.
func (s *MemoryRevocationStore) Revoke(jti string, expiresAt time.Time) {
	if jti == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[jti] = expiresAt
}

// IsRevoked reports whether the token id is in the revocation set
func (s *MemoryRevocationStore) IsRevoked(jti string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[jti]
	return ok
}

// Prune removes entries whose token expiry has passed; an expired token fails
// verification on its own, so keeping its jti is pure memory waste
func (s *MemoryRevocationStore) Prune(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for jti, expiresAt := range s.entries {
		if now.After(expiresAt) {
			delete(s.entries, jti)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked revocations
func (s *MemoryRevocationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
