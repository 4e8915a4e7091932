package session

import (
	"context"
	"sync"
	"time"

	"contactdesk/internal/domain/admin"
)

var (
	_ admin.SessionStore  = (*MemoryStore)(nil)
	_ admin.ExpiringStore = (*MemoryStore)(nil)
)

// MemoryStore keeps sessions in process memory. Sessions are lost on restart and
// are not shared between instances. Pair it with admin.Sweeper to prune expired entries.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]admin.Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]admin.Session)}
}

// Create stores a session.
func (m *MemoryStore) Create(ctx context.Context, s *admin.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

// Get returns a copy of the session, or nil if it does not exist.
func (m *MemoryStore) Get(ctx context.Context, id string) (*admin.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// Delete removes a session.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// DeleteExpired removes every session expired at now.
func (m *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
