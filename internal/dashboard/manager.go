package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = 30 * time.Minute

// ManagerConfig holds configuration for the session manager.
type ManagerConfig struct {
	// Session is applied to every new session. Its logger is replaced by
	// Logger.
	Session SessionConfig

	// TTL is the idle expiry (default: 30 minutes).
	TTL time.Duration

	// SweepInterval is how often expired sessions are removed (default: 1 minute).
	SweepInterval time.Duration

	// Logger for manager operations.
	Logger zerolog.Logger
}

// Manager keeps the live sessions in memory. Nothing is persisted.
type Manager struct {
	cfg    ManagerConfig
	logger zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = time.Minute
	}
	cfg.Session.Logger = cfg.Logger

	return &Manager{
		cfg:      cfg,
		logger:   cfg.Logger,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session.
func (m *Manager) Create() *Session {
	id := "ses_" + uuid.New().String()
	sess := NewSession(id, m.cfg.Session)

	m.mu.Lock()
	m.sessions[id] = sess
	count := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info().Str("session_id", id).Int("sessions", count).Msg("session created")
	return sess
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if time.Since(sess.LastSeen()) > m.cfg.TTL {
		m.remove(id)
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Delete ends a session.
func (m *Manager) Delete(id string) error {
	if !m.remove(id) {
		return ErrSessionNotFound
	}
	m.logger.Info().Str("session_id", id).Msg("session deleted")
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.RLock()
	var expired []string
	for id, sess := range m.sessions {
		if now.Sub(sess.LastSeen()) > m.cfg.TTL {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	removed := 0
	for _, id := range expired {
		if m.remove(id) {
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info().Int("expired", removed).Msg("expired idle sessions")
	}
	return removed
}

// Run sweeps expired sessions until ctx is done, then closes every session.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}

func (m *Manager) remove(id string) bool {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		sess.Close()
	}
	return ok
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}
