// internal/game/store.go
package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SessionFactory builds a new, empty session for id.
type SessionFactory func(id string) *Session

// Store is the process-wide registry of sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  SessionFactory
	log      logrus.FieldLogger
}

// NewStore creates an empty store.
func NewStore(factory SessionFactory, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		sessions: make(map[string]*Session),
		factory:  factory,
		log:      log,
	}
}

// Get returns the session for id.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return s, nil
}

// GetOrCreate returns the session for id, creating it if absent. The bool
// reports whether a new session was created.
func (st *Store) GetOrCreate(id string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		return s, false
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok {
		return s, false
	}
	s = st.factory(id)
	st.sessions[id] = s
	st.log.WithField("game_id", id).Debug("Session created")
	return s, true
}

// Create registers a new session under a fresh UUID.
func (st *Store) Create() *Session {
	for {
		s, created := st.GetOrCreate(uuid.NewString())
		if created {
			return s
		}
	}
}

// Remove drops id from the store.
func (st *Store) Remove(id string) {
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

// holds reports whether id still maps to s.
func (st *Store) holds(id string, s *Session) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[id] == s
}

// Sweep removes sessions idle for at least idleTTL and ended sessions whose
// grace period endedTTL has passed. It returns the removed IDs.
//
// A session is removed while its lock is held, so a caller that locks a
// session and then finds it in the store is safe from eviction until it
// unlocks. Lock order is always Session.Mu before Store.mu.
func (st *Store) Sweep(now time.Time, idleTTL, endedTTL time.Duration) []string {
	st.mu.RLock()
	candidates := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		candidates = append(candidates, s)
	}
	st.mu.RUnlock()

	var removed []string
	for _, s := range candidates {
		s.Mu.Lock()
		idle := now.Sub(s.LastActivity()) >= idleTTL
		ended := s.Status == StatusEnded && now.Sub(s.EndedAt) >= endedTTL
		if idle || ended {
			st.mu.Lock()
			if st.sessions[s.ID] == s {
				delete(st.sessions, s.ID)
				removed = append(removed, s.ID)
			}
			st.mu.Unlock()
		}
		s.Mu.Unlock()
	}
	return removed
}

// RunJanitor sweeps on every tick until ctx is cancelled.
func (st *Store) RunJanitor(ctx context.Context, interval, idleTTL, endedTTL time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if removed := st.Sweep(now, idleTTL, endedTTL); len(removed) > 0 {
				st.log.WithFields(logrus.Fields{
					"removed":   len(removed),
					"remaining": st.Len(),
				}).Info("Evicted expired sessions")
			}
		}
	}
}
