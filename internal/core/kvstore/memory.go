package kvstore

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local Store. Increment and expiry-set happen under one
// lock, so the atomicity contract holds the same way the Redis script does.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (m *Memory) IncrWithTTL(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry, ok := m.entries[key]
	if !ok || now.After(entry.expiresAt) {
		m.entries[key] = &memoryEntry{count: 1, expiresAt: now.Add(ttl)}
		m.evictExpiredLocked(now)
		return 1, nil
	}
	entry.count++
	return entry.count, nil
}

func (m *Memory) SetNX(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry, ok := m.entries[key]
	if ok && now.Before(entry.expiresAt) {
		return false, nil
	}
	m.entries[key] = &memoryEntry{count: 1, expiresAt: now.Add(ttl)}
	m.evictExpiredLocked(now)
	return true, nil
}

// evictExpiredLocked drops dead entries opportunistically on writes so the
// map does not grow without bound between windows.
func (m *Memory) evictExpiredLocked(now time.Time) {
	if len(m.entries) < 1024 {
		return
	}
	for key, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, key)
		}
	}
}
