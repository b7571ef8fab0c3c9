package repository

import "context"

type EventStoreRepository interface {
	InsertMany(ctx context.Context, docs []interface{}) (inserted int64, err error)
}
