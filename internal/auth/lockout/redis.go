// Package lockout counts failed login attempts per email so the auth service
// can stop hammering bcrypt during online guessing. The Redis implementation
// shares state across instances; the in-memory one serves single-node and
// test setups.
package lockout

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const failureKeyPrefix = "lockout:email:"

// RedisStore tracks failures with an INCR counter that expires after the
// lockout window. The TTL is set only when the counter is created, so the
// window is measured from the first failure.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) RecordFailure(ctx context.Context, email string, window time.Duration) (int, error) {
	key := failureKeyPrefix + email

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return int(count), err
		}
	}
	return int(count), nil
}

func (s *RedisStore) Failures(ctx context.Context, email string) (int, error) {
	count, err := s.client.Get(ctx, failureKeyPrefix+email).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *RedisStore) Clear(ctx context.Context, email string) error {
	return s.client.Del(ctx, failureKeyPrefix+email).Err()
}
