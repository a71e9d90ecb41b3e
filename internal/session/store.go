package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// OAuthSession is the ephemeral per-browser record backing the OAuth
// handshake: the anti-CSRF state nonce and where to send the user afterwards.
// It is created when the flow starts and consumed on callback.
type OAuthSession struct {
	State     string
	ReturnTo  string
	CreatedAt time.Time
}

// Store persists OAuth sessions between the redirect to the provider and the
// callback. Injectable so multi-instance deployments can externalize it; the
// in-memory implementation requires sticky routing to one instance.
type Store interface {
	Put(id string, sess OAuthSession, ttl time.Duration)
	// Get returns the session and removes it; sessions are single-use
	Get(id string) (OAuthSession, bool)
	Delete(id string)
	Prune(now time.Time) int
}

// NewID returns a cryptographically random session or state identifier
func NewID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

type entry struct {
	sess      OAuthSession
	expiresAt time.Time
}

// MemoryStore is a mutex-guarded in-memory session Store
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
}

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry)}
}

// Put stores a session under id for at most ttl
func (s *MemoryStore) Put(id string, sess OAuthSession, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = entry{sess: sess, expiresAt: time.Now().Add(ttl)}
}

// Get consumes the session: a second Get with the same id misses, which is
// what makes replayed callbacks fail
func (s *MemoryStore) Get(id string) (OAuthSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return OAuthSession{}, false
	}
	delete(s.entries, id)
	if time.Now().After(e.expiresAt) {
		return OAuthSession{}, false
	}
	return e.sess, true
}

// Delete removes a session if present
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Prune removes expired sessions and returns how many were removed
func (s *MemoryStore) Prune(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}
