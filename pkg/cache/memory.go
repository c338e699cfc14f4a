package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const cleanupInterval = 5 * time.Minute

type cacheEntry struct {
	value     []byte // JSON-encoded value
	expiresAt time.Time
}

// MemoryCache is an in-memory Cache. A janitor goroutine drops expired entries until Close.
type MemoryCache struct {
	data map[string]*cacheEntry
	mu   sync.RWMutex
	now  func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryCache() *MemoryCache {
	m := newMemoryCache(time.Now)
	go m.janitor(cleanupInterval)
	return m
}

func newMemoryCache(now func() time.Time) *MemoryCache {
	return &MemoryCache{
		data: make(map[string]*cacheEntry),
		now:  now,
		stop: make(chan struct{}),
	}
}

func (m *MemoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = &cacheEntry{value: data, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MemoryCache) Get(ctx context.Context, key string, dest any) error {
	m.mu.RLock()
	entry, exists := m.data[key]
	m.mu.RUnlock()

	if !exists {
		return ErrCacheNotFound
	}
	if m.now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return ErrCacheExpired
	}
	return json.Unmarshal(entry.value, dest)
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Len returns the number of stored entries, expired ones included until they are swept
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Close stops the janitor
func (m *MemoryCache) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

// sweep removes expired entries and returns how many were removed
func (m *MemoryCache) sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, entry := range m.data {
		if now.After(entry.expiresAt) {
			delete(m.data, key)
			removed++
		}
	}
	return removed
}

func (m *MemoryCache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

// snapshot copies the live entries
func (m *MemoryCache) snapshot() map[string]cacheEntry {
	now := m.now()
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]cacheEntry, len(m.data))
	for key, entry := range m.data {
		if !now.After(entry.expiresAt) {
			out[key] = *entry
		}
	}
	return out
}

func (m *MemoryCache) restore(key string, entry cacheEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = &entry
}
