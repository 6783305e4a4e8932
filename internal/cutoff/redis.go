package cutoff

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisHashKey holds every game's size as one hash field.
const RedisHashKey = "queuebot:cutoffs"

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context, game string) (int, bool, error) {
	n, err := r.client.HGet(ctx, RedisHashKey, game).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrapf(err, "redis: hget %s", game)
	}
	return n, true, nil
}

func (r *RedisStore) Set(ctx context.Context, game string, size int) error {
	if err := r.client.HSet(ctx, RedisHashKey, game, size).Err(); err != nil {
		return errors.Wrapf(err, "redis: hset %s", game)
	}
	return nil
}

func (r *RedisStore) Close() error { return r.client.Close() }
