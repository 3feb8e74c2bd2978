package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// acquireScript compares and increments in one step on the server.
// KEYS[1] counter, ARGV[1] limit, ARGV[2] unix expiry.
var acquireScript = redis.NewScript(`
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
if used >= tonumber(ARGV[1]) then
  return {0, used}
end
used = redis.call('INCR', KEYS[1])
redis.call('EXPIREAT', KEYS[1], ARGV[2])
return {1, used}
`)

// RedisStore shares counters between server replicas. Keys expire at the
// next local midnight on their own; Reset is the explicit sweep.
type RedisStore struct {
	Client *redis.Client
	Limit  int
	Prefix string
}

func NewRedisStore(client *redis.Client, limit int) *RedisStore {
	return &RedisStore{Client: client, Limit: limit, Prefix: "usage:"}
}

func (s *RedisStore) key(identity string, now time.Time) string {
	return s.Prefix + DayKey(now) + ":" + identity
}

func (s *RedisStore) Acquire(ctx context.Context, identity string, now time.Time) (Usage, error) {
	resetAt := NextMidnight(now)
	vals, err := acquireScript.Run(ctx, s.Client, []string{s.key(identity, now)}, s.Limit, resetAt.Unix()).Int64Slice()
	if err != nil {
		return Usage{}, fmt.Errorf("quota acquire: %w", err)
	}
	if len(vals) != 2 {
		return Usage{}, fmt.Errorf("quota acquire: unexpected reply %v", vals)
	}

	u := Usage{Used: int(vals[1]), Limit: s.Limit, ResetAt: resetAt}
	if vals[0] == 0 {
		return u, &ExceededError{Usage: u}
	}
	return u, nil
}

func (s *RedisStore) Peek(ctx context.Context, identity string, now time.Time) (Usage, error) {
	used, err := s.Client.Get(ctx, s.key(identity, now)).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Usage{}, fmt.Errorf("quota peek: %w", err)
	}
	return Usage{Used: used, Limit: s.Limit, ResetAt: NextMidnight(now)}, nil
}

func (s *RedisStore) Reset(ctx context.Context) error {
	var keys []string
	iter := s.Client.Scan(ctx, 0, s.Prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("quota reset scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return s.Client.Del(ctx, keys...).Err()
}
