package orchestrator

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultIdleTTL is how long a session may sit untouched before the
// reaper removes it.
const DefaultIdleTTL = 30 * time.Minute

// Factory builds a fresh orchestrator for a session identifier.
type Factory func(sessionID string) *Orchestrator

// SessionManager keys orchestrators by externally supplied session
// identifiers, creating them lazily and reaping idle ones on demand.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*trackedSession
	factory  Factory
	idleTTL  time.Duration
}

type trackedSession struct {
	orch       *Orchestrator
	lastActive time.Time
}

// ManagerOption configures the SessionManager.
type ManagerOption func(*SessionManager)

// WithIdleTTL overrides the idle window used by ReapIdle.
func WithIdleTTL(d time.Duration) ManagerOption {
	return func(m *SessionManager) {
		if d > 0 {
			m.idleTTL = d
		}
	}
}

// NewSessionManager creates a manager that builds orchestrators with
// the given factory.
func NewSessionManager(factory Factory, opts ...ManagerOption) *SessionManager {
	m := &SessionManager{
		sessions: make(map[string]*trackedSession),
		factory:  factory,
		idleTTL:  DefaultIdleTTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the session's orchestrator, creating it on first use, and
// marks the session active.
func (m *SessionManager) Get(sessionID string) *Orchestrator {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		s = &trackedSession{orch: m.factory(sessionID)}
		m.sessions[sessionID] = s
		log.Info().Str("session_id", sessionID).Msg("session created")
	}
	s.lastActive = time.Now()
	return s.orch
}

// Remove drops a session. Removing an unknown session is a no-op.
func (m *SessionManager) Remove(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionID]; ok {
		delete(m.sessions, sessionID)
		log.Info().Str("session_id", sessionID).Msg("session removed")
	}
}

// ReapIdle removes sessions inactive past the idle window and returns
// how many were removed.
func (m *SessionManager) ReapIdle() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-m.idleTTL)
	reaped := 0
	for id, s := range m.sessions {
		if s.lastActive.Before(cutoff) {
			delete(m.sessions, id)
			reaped++
			log.Info().Str("session_id", id).Msg("idle session reaped")
		}
	}
	return reaped
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
