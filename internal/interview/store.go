package interview

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// SessionStore keeps live interview sessions. Entries expire after the
// configured TTL so abandoned interviews are eventually reclaimed.
type SessionStore struct {
	cache *gocache.Cache
}

// NewSessionStore creates a store whose sessions live for ttl and are
// swept every cleanupInterval.
func NewSessionStore(ttl, cleanupInterval time.Duration) *SessionStore {
	return &SessionStore{cache: gocache.New(ttl, cleanupInterval)}
}

// Put stores a session, resetting its expiration
func (s *SessionStore) Put(sess *Session) {
	s.cache.Set(sess.ID, sess, gocache.DefaultExpiration)
}

// Get returns the session if present and not expired
func (s *SessionStore) Get(sessionID string) (*Session, bool) {
	v, ok := s.cache.Get(sessionID)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*Session)
	return sess, ok
}

// Delete removes a session
func (s *SessionStore) Delete(sessionID string) {
	s.cache.Delete(sessionID)
}

// Count returns the number of live sessions
func (s *SessionStore) Count() int {
	return s.cache.ItemCount()
}
