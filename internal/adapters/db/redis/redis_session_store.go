package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// minTTL is used when a caller asks for a zero or negative expiry. Redis
// would otherwise keep the key forever.
const minTTL = time.Minute

type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
	}
}

func (r *RedisSessionStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, safeTTL(ttl)).Err()
}

func (r *RedisSessionStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, key, value, safeTTL(ttl)).Result()
}

func (r *RedisSessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, err
	default:
		return val, true, nil
	}
}

func (r *RedisSessionStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisSessionStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func safeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return minTTL
	}
	return ttl
}
