// Package session holds the authoritative shared translation state and
// propagates it to every device watching a session. The store serializes
// concurrent writers per session while leaving unrelated sessions fully
// parallel; the synchronizer layers last-writer-wins edits, staleness-checked
// polling and push subscriptions on top of it.
package session

import (
	"sync"
	"time"

	"github.com/valpere/triglot/internal/language"
)

// State is the current shared state of one session. Revision starts at 0 for
// an untouched session and increases by exactly one per applied edit; it
// never decreases.
type State struct {
	ID        string            `json:"id"`
	Texts     language.Texts    `json:"texts"`
	Active    language.Language `json:"active_language"`
	Revision  int64             `json:"revision"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// entry pairs a session's state with the lock that serializes its mutators.
type entry struct {
	mu    sync.Mutex
	state State
}

// Store is a concurrently accessible table of session states. Mutations for
// the same session id are strictly serialized; different ids never block
// each other. The table lock is held only to locate or create an entry,
// never while a mutator runs.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// lookup returns the entry for id, creating it lazily on first reference.
func (s *Store) lookup(id string) *entry {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[id]; ok {
		return e
	}
	e = &entry{state: State{ID: id}}
	s.entries[id] = e
	return e
}

// Get returns a snapshot of the session's state and whether the session has
// been seen before. It never creates an entry.
func (s *Store) Get(id string) (State, bool) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return State{ID: id}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, true
}

// Ensure returns a snapshot of the session's state, creating an empty
// session on first reference.
func (s *Store) Ensure(id string) State {
	e := s.lookup(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Upsert atomically applies mutate to the session's state and returns the
// resulting snapshot. Mutators for the same id run one at a time; the
// mutator must not block on I/O, as it runs inside the per-session critical
// section.
func (s *Store) Upsert(id string, mutate func(*State)) State {
	e := s.lookup(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	mutate(&e.state)
	e.state.ID = id
	return e.state
}
