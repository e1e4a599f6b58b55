package rag

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store keeps per-session retrieval indexes. Entries expire after the
// configured TTL so abandoned sessions do not pin their embeddings.
type Store struct {
	cache *gocache.Cache
}

// NewStore creates a store whose entries live for ttl and are swept
// every cleanupInterval.
func NewStore(ttl, cleanupInterval time.Duration) *Store {
	return &Store{cache: gocache.New(ttl, cleanupInterval)}
}

// Put stores the index for a session, replacing any previous one
func (s *Store) Put(sessionID string, idx *Index) {
	s.cache.Set(sessionID, idx, gocache.DefaultExpiration)
}

// Get returns the index for a session if present and not expired
func (s *Store) Get(sessionID string) (*Index, bool) {
	v, ok := s.cache.Get(sessionID)
	if !ok {
		return nil, false
	}
	idx, ok := v.(*Index)
	return idx, ok
}

// Delete removes a session's index
func (s *Store) Delete(sessionID string) {
	s.cache.Delete(sessionID)
}

// Count returns the number of live indexes
func (s *Store) Count() int {
	return s.cache.ItemCount()
}
