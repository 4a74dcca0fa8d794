package memory

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const minTTL = time.Minute

type entry struct {
	value     string
	expiresAt time.Time
}

// MemorySessionStore is a bounded in-process session store for single-node
// deployments. When full, the least recently used entry is evicted, so a
// revoked token may be forgotten before it expires under memory pressure.
type MemorySessionStore struct {
	mu      sync.Mutex
	entries *lru.Cache[string, entry]
	now     func() time.Time
}

func NewMemorySessionStore(size int) (*MemorySessionStore, error) {
	c, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &MemorySessionStore{entries: c, now: time.Now}, nil
}

func (m *MemorySessionStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries.Add(key, entry{value: value, expiresAt: m.now().Add(safeTTL(ttl))})
	return nil
}

func (m *MemorySessionStore) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live(key); ok {
		return false, nil
	}
	m.entries.Add(key, entry{value: value, expiresAt: m.now().Add(safeTTL(ttl))})
	return true, nil
}

func (m *MemorySessionStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	return e.value, ok, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries.Remove(key)
	return nil
}

func (m *MemorySessionStore) Ping(context.Context) error { return nil }

func (m *MemorySessionStore) Len() int {
	return m.entries.Len()
}

// Run removes expired entries every interval until ctx is done.
func (m *MemorySessionStore) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *MemorySessionStore) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for _, key := range m.entries.Keys() {
		if e, ok := m.entries.Peek(key); ok && !now.Before(e.expiresAt) {
			m.entries.Remove(key)
		}
	}
}

// live must be called with mu held.
func (m *MemorySessionStore) live(key string) (entry, bool) {
	e, ok := m.entries.Get(key)
	if !ok {
		return entry{}, false
	}
	if !m.now().Before(e.expiresAt) {
		m.entries.Remove(key)
		return entry{}, false
	}
	return e, true
}

func safeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return minTTL
	}
	return ttl
}
