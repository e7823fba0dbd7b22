package state

import (
	"sync"

	"frontdesk/internal/cascade"
	"frontdesk/internal/lifecycle"
)

// Entry is one user's interactive state: their service lifecycle flow and the
// car attribute selection for the form they have open. Handlers must hold Mu
// while touching either.
type Entry struct {
	Mu      sync.Mutex
	Flow    *lifecycle.Flow
	Cascade *cascade.Cascade
}

// Store keeps per-user state between requests. Entries are created lazily on
// first use and dropped when a session ends.
type Store struct {
	mu       sync.Mutex
	entries  map[string]*Entry
	newEntry func(username string) *Entry
}

func NewStore(newEntry func(username string) *Entry) *Store {
	return &Store{
		entries:  make(map[string]*Entry),
		newEntry: newEntry,
	}
}

func (s *Store) For(username string) *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[username]
	if !ok {
		e = s.newEntry(username)
		s.entries[username] = e
	}
	return e
}

func (s *Store) Drop(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, username)
}
