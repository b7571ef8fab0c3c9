package repository

import (
	"context"
	"time"
)

type ReplicaLeaderRepository interface {
	TryAcquireLeader(ctx context.Context, leaderKey, replicaID string, lease time.Duration) (bool, error)
	WhoLeader(ctx context.Context, leaderKey string) (string, error)
	RenewLock(ctx context.Context, leaderKey, lockHolder string, lease time.Duration) error
	ReleaseLeader(ctx context.Context, leaderKey, lockHolder string) error
}
