// Package session keeps per-user generation sessions in memory. Sessions
// hold no durable state; an idle session past its TTL is swept away.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rcdinesh/kidcastdailyapp/internal/orchestrator"
	"github.com/rcdinesh/kidcastdailyapp/internal/playback"
)

// Session is one user's generation workspace.
type Session struct {
	ID           uuid.UUID
	Orchestrator *orchestrator.Orchestrator
	Playback     *playback.Machine
	CreatedAt    time.Time

	mu         sync.Mutex
	lastActive time.Time
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Factory builds the orchestrator for a new session. Injected so the store
// stays free of provider wiring.
type Factory func() *orchestrator.Orchestrator

// Store is a concurrency-safe in-memory session registry.
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	factory  Factory
	ttl      time.Duration
}

func NewStore(factory Factory, ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		factory:  factory,
		ttl:      ttl,
	}
}

// Create registers a new session and returns it.
func (s *Store) Create() *Session {
	sess := &Session{
		ID:           uuid.New(),
		Orchestrator: s.factory(),
		Playback:     playback.NewMachine(),
		CreatedAt:    time.Now(),
		lastActive:   time.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	log.Printf("[Session] Created session %s", sess.ID)
	return sess
}

// Get returns the session and marks it active. The second return is false
// when the session does not exist or was swept.
func (s *Store) Get(id uuid.UUID) (*Session, bool) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		sess.touch()
	}
	return sess, ok
}

// Delete removes a session. Removing an unknown ID is a no-op.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		log.Printf("[Session] Deleted session %s", id)
	}
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle past the TTL every interval until the context
// is cancelled. Run it in its own goroutine.
func (s *Store) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictExpired()
		}
	}
}

func (s *Store) evictExpired() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	var expired []uuid.UUID
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if len(expired) > 0 {
		log.Printf("[Session] Swept %d expired session(s)", len(expired))
	}
}
