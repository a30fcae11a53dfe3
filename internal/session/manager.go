package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/cheese-web/internal/domain"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// Manager owns the live sessions of the process, one per browser tab.
type Manager struct {
	base        Options
	maxSessions int
	idleTTL     time.Duration
	logger      *zap.Logger
	newID       func() string

	mu       sync.RWMutex
	sessions map[string]*Session
}

type ManagerOption func(*Manager)

func WithMaxSessions(n int) ManagerOption {
	return func(m *Manager) { m.maxSessions = n }
}

func WithIdleTTL(d time.Duration) ManagerOption {
	return func(m *Manager) { m.idleTTL = d }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(fn func() string) ManagerOption {
	return func(m *Manager) { m.newID = fn }
}

// NewManager creates sessions from base. Mode on base is the default mode.
func NewManager(base Options, opts ...ManagerOption) *Manager {
	m := &Manager{
		base:        base,
		maxSessions: 500,
		idleTTL:     30 * time.Minute,
		newID:       uuid.NewString,
		sessions:    make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = base.Logger
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	return m
}

// Create starts a session. An empty mode uses the default.
func (m *Manager) Create(mode domain.Mode) (*Session, error) {
	opts := m.base
	if mode != "" {
		if _, err := domain.ParseMode(string(mode)); err != nil {
			return nil, err
		}
		opts.Mode = mode
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		return nil, ErrTooManySessions
	}
	id := m.newID()
	if _, dup := m.sessions[id]; dup {
		return nil, errors.New("session id collision")
	}
	s := New(id, opts)
	m.sessions[id] = s
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove closes and forgets a session.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes sessions idle longer than the TTL and returns how many were removed.
func (m *Manager) Sweep(now time.Time) int {
	if m.idleTTL <= 0 {
		return 0
	}
	var stale []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.IdleSince(now) > m.idleTTL {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		m.logger.Info("sessions_swept", zap.Int("removed", len(stale)), zap.Int("remaining", m.Len()))
	}
	return len(stale)
}

// Close shuts every session down.
func (m *Manager) Close() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}
