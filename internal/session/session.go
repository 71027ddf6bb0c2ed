// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session keeps chat conversations in memory for the lifetime of
// the process and serializes the turns of each one.
package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/research-assistant/pkg/types"
)

var (
	// ErrNotFound is returned for an unknown session id.
	ErrNotFound = errors.New("session not found")

	// ErrBusy is returned when a turn is started while another turn of the
	// same session is still running.
	ErrBusy = errors.New("session has a turn in flight")
)

// Session is one conversation. Its state changes only through Turn.
type Session struct {
	ID      string
	Created time.Time

	turn sync.Mutex

	mu      sync.RWMutex
	state   types.ConversationState
	updated time.Time
}

// State returns a copy of the last committed state.
func (s *Session) State() types.ConversationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Updated returns when the last turn was committed.
func (s *Session) Updated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}

// Turn runs fn with the current state and commits the state it returns.
// When fn fails nothing is committed. Only one turn per session runs at a
// time; a concurrent call returns ErrBusy without waiting.
func (s *Session) Turn(fn func(types.ConversationState) (types.ConversationState, error)) error {
	if !s.turn.TryLock() {
		return ErrBusy
	}
	defer s.turn.Unlock()

	next, err := fn(s.State())
	if err != nil {
		return err
	}
	next.SessionID = s.ID

	s.mu.Lock()
	s.state = next
	s.updated = time.Now()
	s.mu.Unlock()
	return nil
}

// Store holds sessions by id. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create starts a new empty session with a random id.
func (st *Store) Create() *Session {
	now := time.Now()
	id := uuid.NewString()
	s := &Session{
		ID:      id,
		Created: now,
		state:   types.ConversationState{SessionID: id, Turns: []types.Turn{}},
		updated: now,
	}

	st.mu.Lock()
	st.sessions[id] = s
	st.mu.Unlock()
	return s
}

// Get returns the session with id.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete removes the session with id. A turn already running on it
// completes but its result is no longer reachable.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(st.sessions, id)
	return nil
}

// List returns all sessions, oldest first.
func (st *Store) List() []*Session {
	st.mu.RLock()
	out := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		out = append(out, s)
	}
	st.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

// Len returns the number of sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
