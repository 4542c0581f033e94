package session

import (
	"context"
	"sync"
	"time"

	"github.com/albapepper/scoracle-fans/internal/wizard"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is a thread-safe in-process store with TTL eviction.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates a memory store. Expired entries are unreachable at once
// and reclaimed by Sweep.
func NewMemory(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &MemoryStore{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
	return m
}

func (m *MemoryStore) Backend() string { return "memory" }

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Create(ctx context.Context) (*wizard.Session, error) {
	s := newSession(m.now())
	if err := m.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*wizard.Session, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok || m.now().After(e.expiresAt) {
		return nil, ErrNotFound
	}
	return decode(e.data)
}

func (m *MemoryStore) Save(_ context.Context, s *wizard.Session) error {
	s.UpdatedAt = m.now().UTC()
	data, err := encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[s.ID] = entry{data: data, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Stats returns store statistics.
func (m *MemoryStore) Stats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	active := 0
	now := m.now()
	for _, e := range m.entries {
		if now.Before(e.expiresAt) {
			active++
		}
	}
	return map[string]interface{}{
		"backend":          m.Backend(),
		"ttl_seconds":      int(m.ttl.Seconds()),
		"total_sessions":   len(m.entries),
		"active_sessions":  active,
		"expired_sessions": len(m.entries) - active,
	}
}

// Sweep removes expired sessions and reports how many were dropped.
func (m *MemoryStore) Sweep(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	var n int64
	for id, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, id)
			n++
		}
	}
	return n, nil
}
