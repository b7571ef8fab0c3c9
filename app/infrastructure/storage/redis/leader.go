package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okorolev/gh-activity-report/app/domain/entity"
	"github.com/okorolev/gh-activity-report/app/domain/repository"
)

// RedisReplicaLeader is the single-store deployment alternative to the
// etcd leader: SETNX with a TTL as the lease. No fencing beyond the
// holder check, good enough when the only contended work is the hourly
// sync.
type RedisReplicaLeader struct {
	client *redis.Client
}

func NewRedisReplicaLeader(c *redis.Client) repository.ReplicaLeaderRepository {
	return &RedisReplicaLeader{client: c}
}

func (r *RedisReplicaLeader) TryAcquireLeader(ctx context.Context, leaderKey, replicaID string, lease time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, leaderKey, replicaID, lease).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (r *RedisReplicaLeader) WhoLeader(ctx context.Context, leaderKey string) (string, error) {
	leader, err := r.client.Get(ctx, leaderKey).Result()
	switch {
	case err == redis.Nil:
		return "", entity.ErrNoLeader
	case err != nil:
		return "", fmt.Errorf("redis get leader: %w", err)
	default:
		return leader, nil
	}
}

func (r *RedisReplicaLeader) RenewLock(ctx context.Context, leaderKey, lockHolder string, lease time.Duration) error {
	val, err := r.client.Get(ctx, leaderKey).Result()
	if err == redis.Nil {
		// key expired, take it again or concede
		ok, err := r.TryAcquireLeader(ctx, leaderKey, lockHolder, lease)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("lease expired and another replica took over")
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis get: %w", err)
	}
	if val != lockHolder {
		return fmt.Errorf("leadership lost to %s", val)
	}

	ok, err := r.client.Expire(ctx, leaderKey, lease).Result()
	if err != nil {
		return fmt.Errorf("redis expire: %w", err)
	}
	if !ok {
		return fmt.Errorf("failed to renew lease")
	}
	return nil
}

func (r *RedisReplicaLeader) ReleaseLeader(ctx context.Context, leaderKey, lockHolder string) error {
	val, err := r.client.Get(ctx, leaderKey).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis get: %w", err)
	}
	if val != lockHolder {
		return nil
	}
	return r.client.Del(ctx, leaderKey).Err()
}
