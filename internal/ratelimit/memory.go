package ratelimit

import (
	"context"
	"sync"
	"time"
)

type windowEntry struct {
	count   int64
	resetAt time.Time
}

// MemoryCounter is the single-instance backend. Counts reset when their
// window expires; stale keys are pruned lazily on access.
type MemoryCounter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	now     func() time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

func (m *MemoryCounter) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e, ok := m.entries[key]
	if !ok || now.After(e.resetAt) {
		e = &windowEntry{resetAt: now.Add(window)}
		m.entries[key] = e
	}
	e.count++

	if len(m.entries) > 1024 {
		for k, v := range m.entries {
			if now.After(v.resetAt) {
				delete(m.entries, k)
			}
		}
	}

	return e.count, nil
}
