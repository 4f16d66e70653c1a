package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manager keeps one open Session per device session key. Sessions unused
// for longer than the idle timeout are dropped from memory and reloaded
// from the store on their next use.
type Manager struct {
	store Store
	idle  time.Duration
	log   *zap.Logger
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	session  *Session
	lastUsed time.Time
}

// NewManager creates a manager backed by store. With a positive idle timeout
// a cleanup goroutine evicts idle sessions until ctx is cancelled.
func NewManager(ctx context.Context, store Store, idle time.Duration, log *zap.Logger) *Manager {
	m := &Manager{
		store:    store,
		idle:     idle,
		log:      log.With(zap.String("component", "sessions")),
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
	if idle > 0 {
		go m.cleanupIdle(ctx)
	}
	return m
}

// Get returns the open session for key, loading it from the store on first use
func (m *Manager) Get(ctx context.Context, key string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[key]; ok {
		e.lastUsed = m.now()
		return e.session, nil
	}

	s, err := Open(ctx, key, m.store, m.log)
	if err != nil {
		return nil, err
	}
	m.sessions[key] = &entry{session: s, lastUsed: m.now()}
	return s, nil
}

// Forget drops the in-memory session for key. Its persisted state is untouched.
func (m *Manager) Forget(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
}

// Len returns the number of open sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// evictIdle drops sessions idle for longer than the timeout. A session with
// open watchers is still in use by a stream and is kept.
func (m *Manager) evictIdle() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.idle)
	evicted := 0
	for key, e := range m.sessions {
		if e.lastUsed.After(cutoff) || e.session.watching() > 0 {
			continue
		}
		delete(m.sessions, key)
		evicted++
	}
	return evicted
}

func (m *Manager) cleanupIdle(ctx context.Context) {
	ticker := time.NewTicker(m.idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if n := m.evictIdle(); n > 0 {
			m.log.Debug("evicted idle sessions", zap.Int("count", n))
		}
	}
}
