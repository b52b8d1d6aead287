package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions as Redis keys with a TTL so several processes can share them.
type RedisStore struct {
	rc *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rc *redis.Client) *RedisStore {
	return &RedisStore{rc: rc}
}

func (s *RedisStore) Save(ctx context.Context, id string, userID uint, ttl time.Duration) error {
	return s.rc.Set(ctx, redisKeyPrefix+id, strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, id string) (uint, bool, error) {
	v, err := s.rc.Get(ctx, redisKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		// A value we did not write is treated as no session.
		return 0, false, nil
	}
	return uint(n), true, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rc.Del(ctx, redisKeyPrefix+id).Err()
}
