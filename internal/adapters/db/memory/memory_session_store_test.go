package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newStore(t *testing.T, size int) (*MemorySessionStore, *clock) {
	t.Helper()
	s, err := NewMemorySessionStore(size)
	require.NoError(t, err)
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s.now = c.now
	return s, c
}

func TestMemorySessionStore_SetGetDelete(t *testing.T) {
	s, _ := newStore(t, 10)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "refresh:a", "tok", time.Minute))
	val, found, err := s.Get(ctx, "refresh:a")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "tok", val)

	require.NoError(t, s.Delete(ctx, "refresh:a"))
	_, found, _ = s.Get(ctx, "refresh:a")
	require.False(t, found)
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	s, c := newStore(t, 10)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "blacklist:x", "x", 2*time.Minute))
	c.advance(time.Minute)
	_, found, _ := s.Get(ctx, "blacklist:x")
	require.True(t, found)

	c.advance(time.Minute)
	_, found, _ = s.Get(ctx, "blacklist:x")
	require.False(t, found)
}

func TestMemorySessionStore_SetNX(t *testing.T) {
	s, c := newStore(t, 10)
	ctx := context.Background()

	ok, err := s.SetNX(ctx, "refresh:a", "first", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.SetNX(ctx, "refresh:a", "second", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	// an expired entry does not block registration
	c.advance(2 * time.Minute)
	ok, err = s.SetNX(ctx, "refresh:a", "third", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	val, _, _ := s.Get(ctx, "refresh:a")
	require.Equal(t, "third", val)
}

func TestMemorySessionStore_ConcurrentSetNX(t *testing.T) {
	s, _ := newStore(t, 10)
	ctx := context.Background()

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := s.SetNX(ctx, "refresh:a", "v", time.Minute); ok {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, won)
}

func TestMemorySessionStore_Eviction(t *testing.T) {
	s, _ := newStore(t, 2)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, s.Set(ctx, "b", "2", time.Minute))
	_, _, _ = s.Get(ctx, "a")
	require.NoError(t, s.Set(ctx, "c", "3", time.Minute))

	_, found, _ := s.Get(ctx, "b")
	require.False(t, found, "least recently used entry must be evicted")
	_, found, _ = s.Get(ctx, "a")
	require.True(t, found)
}

func TestMemorySessionStore_Sweep(t *testing.T) {
	s, c := newStore(t, 10)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "short", "1", time.Second))
	require.NoError(t, s.Set(ctx, "long", "2", time.Hour))
	c.advance(time.Minute)

	s.sweep()
	require.Equal(t, 1, s.Len())
}

func TestMemorySessionStore_RunStops(t *testing.T) {
	s, _ := newStore(t, 10)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, time.Millisecond) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestNewMemorySessionStore_InvalidSize(t *testing.T) {
	_, err := NewMemorySessionStore(0)
	require.Error(t, err)
}
