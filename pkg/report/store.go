package report

import (
	"sync"
	"time"
)

// Store holds the most recent ResultSet. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	results   ResultSet
	timestamp time.Time
	set       bool
}

// Set replaces the stored result.
func (s *Store) Set(results ResultSet, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = results
	s.timestamp = at
	s.set = true
}

// Latest returns the stored result and when it was taken.
// ok is false until the first Set.
func (s *Store) Latest() (results ResultSet, at time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results, s.timestamp, s.set
}
