package view

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/observability"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Store holds sessions in memory and expires those idle longer than ttl.
type Store struct {
	ttl     time.Duration
	policy  Policy
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the store's time source.
func WithClock(c clockwork.Clock) StoreOption {
	return func(s *Store) { s.clock = c }
}

// WithPolicy sets the overlap policy for every new session's loaders.
func WithPolicy(p Policy) StoreOption {
	return func(s *Store) { s.policy = p }
}

// NewStore creates an empty session store.
func NewStore(ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger, opts ...StoreOption) *Store {
	s := &Store{
		ttl:      ttl,
		policy:   LatestRequestWins,
		clock:    clockwork.NewRealClock(),
		metrics:  metrics,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new session.
func (s *Store) Create() *Session {
	sess := newSession(uuid.NewString(), s.clock.Now(), s.policy, s.metrics, s.logger)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	s.metrics.ActiveSessions.Set(float64(n))
	s.logger.Debug("session created", "session", sess.ID)
	return sess
}

// Get returns a live session and refreshes its idle timer.
func (s *Store) Get(id string) (*Session, error) {
	now := s.clock.Now()

	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()

	if !ok || s.expired(sess, now) {
		return nil, ErrSessionNotFound
	}
	sess.touch(now)
	return sess, nil
}

// Len returns the number of sessions held, including expired ones not yet swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.clock.Now()

	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	s.metrics.ActiveSessions.Set(float64(n))
	if removed > 0 {
		s.logger.Debug("expired sessions swept", "removed", removed, "active", n)
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.Sweep()
		}
	}
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return now.Sub(sess.LastSeen()) >= s.ttl
}
