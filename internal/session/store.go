package session

import (
	"sync"

	"tengemart/internal/domain"
)

// State is the auth state behind one browser session: the backend bearer
// token and the profile it resolved to. It is the only client-held identity;
// nothing is persisted across restarts.
type State struct {
	Token string
	User  *domain.User
}

// Store maps sid cookies to auth state. In-memory only.
type Store struct {
	mu   sync.RWMutex
	byID map[string]*State
}

func NewStore() *Store {
	return &Store{byID: make(map[string]*State)}
}

func (s *Store) Bind(sid string, st *State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[sid] = st
}

// Get returns nil for unknown sessions.
func (s *Store) Get(sid string) *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[sid]
}

func (s *Store) Drop(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, sid)
}
