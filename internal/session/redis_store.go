package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "portal:session:"

// RedisStore keeps one hash per browser. Writes go through MULTI/EXEC so the
// five keys are replaced as a group.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func redisKey(browserID string) string {
	return redisKeyPrefix + browserID
}

func (s *RedisStore) Load(ctx context.Context, browserID string) (Record, error) {
	res := s.rdb.HGetAll(ctx, redisKey(browserID))
	if err := res.Err(); err != nil {
		return Record{}, fmt.Errorf("failed to load session: %w", err)
	}
	if len(res.Val()) == 0 {
		return Record{}, nil
	}

	var rec Record
	if err := res.Scan(&rec); err != nil {
		return Record{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return rec, nil
}

func (s *RedisStore) Save(ctx context.Context, browserID string, rec Record) error {
	key := redisKey(browserID)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, redisFields(rec))
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, browserID string) error {
	if err := s.rdb.Del(ctx, redisKey(browserID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func redisFields(rec Record) map[string]interface{} {
	fields := make(map[string]interface{}, len(Keys))
	for k, v := range rec.Values() {
		fields[k] = v
	}
	return fields
}
