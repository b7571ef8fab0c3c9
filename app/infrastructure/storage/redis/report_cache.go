package redis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okorolev/gh-activity-report/app/domain/repository"
	"github.com/okorolev/gh-activity-report/app/infrastructure/metrics"
)

const keyPrefix = "report:"

type RedisReportCache struct {
	client *redis.Client
}

func NewRedisReportCache(rdb *redis.Client) repository.ReportCacheRepository {
	return &RedisReportCache{client: rdb}
}

func (r *RedisReportCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		metrics.CacheMisses.Inc()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	metrics.CacheHits.Inc()
	return val, nil
}

func (r *RedisReportCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// InvalidateUsers drops every cached report of the given users, all
// periods included.
func (r *RedisReportCache) InvalidateUsers(ctx context.Context, users map[string]struct{}) error {
	var keys []string
	for user := range users {
		userKeys, err := r.scan(ctx, keyPrefix+user+":*")
		if err != nil {
			return err
		}
		keys = append(keys, userKeys...)
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// InvalidateTouched intersects the users touched by a load run with the
// users that actually have cached reports, then invalidates only those.
// An hourly partition touches far more actors than the cache ever holds.
func (r *RedisReportCache) InvalidateTouched(ctx context.Context, touched *sync.Map) error {
	cached, err := r.cachedUsers(ctx)
	if err != nil {
		return fmt.Errorf("list cached users: %w", err)
	}

	stale := make(map[string]struct{})
	touched.Range(func(key, _ any) bool {
		user, ok := key.(string)
		if !ok {
			return true
		}
		if _, exists := cached[user]; exists {
			stale[user] = struct{}{}
		}
		return true
	})

	if err := r.InvalidateUsers(ctx, stale); err != nil {
		return fmt.Errorf("invalidate users: %w", err)
	}
	return nil
}

func (r *RedisReportCache) cachedUsers(ctx context.Context) (map[string]struct{}, error) {
	keys, err := r.scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, err
	}
	users := make(map[string]struct{})
	for _, key := range keys {
		// report:<user>:<period>
		rest := strings.TrimPrefix(key, keyPrefix)
		if idx := strings.LastIndex(rest, ":"); idx > 0 {
			users[rest[:idx]] = struct{}{}
		}
	}
	return users, nil
}

func (r *RedisReportCache) scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan: %w", err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}
