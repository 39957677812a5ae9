package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps daily counters in Redis so several jobsweep processes
// share one budget. Keys look like quota:<source>:<yyyy-mm-dd>.
type RedisStore struct {
	client *redis.Client
	limits Limits
	now    func() time.Time
}

// NewRedisStore parses url (redis://host:port/db) and connects lazily.
func NewRedisStore(url string, limits Limits) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return NewRedisStoreWithClient(redis.NewClient(opts), limits), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, limits Limits) *RedisStore {
	return &RedisStore{client: client, limits: limits, now: time.Now}
}

// Ping verifies the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Allow increments today's counter for source and reports whether the new
// value is within the budget. Counters expire after two days.
func (s *RedisStore) Allow(ctx context.Context, source string) (bool, error) {
	limit, limited := s.limits.limitFor(source)
	if !limited {
		return true, nil
	}

	key := fmt.Sprintf("quota:%s:%s", source, dayKey(s.now()))

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 48*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("incrementing %s: %w", key, err)
	}

	return incr.Val() <= int64(limit), nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
