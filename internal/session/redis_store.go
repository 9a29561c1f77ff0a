package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:refresh:"

// replaceScript performs the compare-and-replace server-side so that two
// concurrent rotations presenting the same stale token cannot both win.
var replaceScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
  return 1
end
return 0
`)

// RedisStore keeps the per-user refresh token slot in Redis. The key TTL
// matches the refresh token lifetime, so abandoned sessions expire on their
// own without a cleanup job.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func redisKey(userID int64) string {
	return fmt.Sprintf("%s%d", redisKeyPrefix, userID)
}

func (s *RedisStore) Put(ctx context.Context, userID int64, token string) error {
	if err := s.rdb.Set(ctx, redisKey(userID), token, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: put: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, userID int64) (string, bool, error) {
	token, err := s.rdb.Get(ctx, redisKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get: %v", ErrStoreUnavailable, err)
	}
	return token, true, nil
}

func (s *RedisStore) IsCurrent(ctx context.Context, userID int64, token string) (bool, error) {
	current, ok, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return ok && current == token, nil
}

func (s *RedisStore) Replace(ctx context.Context, userID int64, presented, next string) (bool, error) {
	res, err := replaceScript.Run(ctx, s.rdb, []string{redisKey(userID)},
		presented, next, s.ttl.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: replace: %v", ErrStoreUnavailable, err)
	}
	return res == 1, nil
}

func (s *RedisStore) Clear(ctx context.Context, userID int64) error {
	if err := s.rdb.Del(ctx, redisKey(userID)).Err(); err != nil {
		return fmt.Errorf("%w: clear: %v", ErrStoreUnavailable, err)
	}
	return nil
}
