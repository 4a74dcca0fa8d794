package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
)

func newStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	t.Cleanup(mr.Close)

	client := redisv9.NewClient(&redisv9.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionStore(client), mr
}

func TestRedisSessionStore_SetAndGet(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "refresh:john@x.com", "token", 10*time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	val, found, err := store.Get(ctx, "refresh:john@x.com")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if !found || val != "token" {
		t.Fatalf("Get = %q, %v; want token, true", val, found)
	}
	if ttl := mr.TTL("refresh:john@x.com"); ttl != 10*time.Minute {
		t.Fatalf("TTL = %v, want 10m", ttl)
	}
}

func TestRedisSessionStore_Expiry(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "blacklist:abc", "abc", time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(2 * time.Second)

	_, found, err := store.Get(ctx, "blacklist:abc")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if found {
		t.Fatal("entry must expire with its TTL")
	}
}

func TestRedisSessionStore_SetNX(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	ok, err := store.SetNX(ctx, "refresh:a", "first", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first SetNX = %v, %v; want true, nil", ok, err)
	}
	ok, err = store.SetNX(ctx, "refresh:a", "second", time.Minute)
	if err != nil || ok {
		t.Fatalf("second SetNX = %v, %v; want false, nil", ok, err)
	}

	val, _, _ := store.Get(ctx, "refresh:a")
	if val != "first" {
		t.Fatalf("value overwritten: %q", val)
	}
}

func TestRedisSessionStore_Delete(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	_ = store.Set(ctx, "k", "v", time.Minute)
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := store.Get(ctx, "k"); found {
		t.Fatal("key must be gone after Delete")
	}
	if err := store.Delete(ctx, "absent"); err != nil {
		t.Fatalf("Delete of absent key: %v", err)
	}
}

func TestRedisSessionStore_KeyAbsent(t *testing.T) {
	store, _ := newStore(t)

	val, found, err := store.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if found || val != "" {
		t.Fatal("absent key must be reported as a miss")
	}
}

func TestRedisSessionStore_NonPositiveTTL(t *testing.T) {
	store, mr := newStore(t)

	if err := store.Set(context.Background(), "k", "v", -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := mr.TTL("k"); ttl != minTTL {
		t.Fatalf("TTL = %v, want %v", ttl, minTTL)
	}
}

func TestRedisSessionStore_Unreachable(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	mr.Close()
	if _, _, err := store.Get(ctx, "k"); err == nil {
		t.Fatal("expected an error from a closed server")
	}
	if err := store.Ping(ctx); err == nil {
		t.Fatal("expected Ping to fail")
	}
}
