package session

import (
	"fmt"
	"sync"

	"github.com/brensch/reeftank/catalog"
	"github.com/brensch/reeftank/rules"
)

// Store maps session IDs to sessions. It only guards the map itself; the
// sessions inside remain single-writer and are never locked here.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create registers a new session under the given ID.
func (st *Store) Create(id string, cat *catalog.Catalog, rng rules.RNG) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, exists := st.sessions[id]; exists {
		return nil, fmt.Errorf("session %q already exists", id)
	}
	s := New(id, cat, rng)
	st.sessions[id] = s
	return s, nil
}

// Get returns the session for id, or nil.
func (st *Store) Get(id string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[id]
}

// Delete drops a session. Dropping an unknown ID is a no-op.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// IDs lists the live session IDs in no particular order.
func (st *Store) IDs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		out = append(out, id)
	}
	return out
}
