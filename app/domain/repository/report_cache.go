package repository

import (
	"context"
	"sync"
	"time"
)

type ReportCacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	InvalidateUsers(ctx context.Context, users map[string]struct{}) error
	InvalidateTouched(ctx context.Context, touched *sync.Map) error
}
