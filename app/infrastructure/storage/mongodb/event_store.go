package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/okorolev/gh-activity-report/app/domain/repository"
	"github.com/okorolev/gh-activity-report/app/infrastructure/metrics"
)

type mongoEventStore struct {
	coll *mongo.Collection
}

func NewMongoEventStore(collection *mongo.Collection) repository.EventStoreRepository {
	return &mongoEventStore{coll: collection}
}

func (r *mongoEventStore) InsertMany(ctx context.Context, docs []interface{}) (int64, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	start := time.Now()

	res, err := r.coll.InsertMany(ctx, docs)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("insert").Inc()
		return 0, fmt.Errorf("insert events: %w", err)
	}
	metrics.WriteDuration.Observe(time.Since(start).Seconds())

	inserted := int64(len(res.InsertedIDs))
	metrics.RecordsInserted.Add(float64(inserted))
	return inserted, nil
}
