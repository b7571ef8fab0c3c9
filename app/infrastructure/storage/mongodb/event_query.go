package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/okorolev/gh-activity-report/app/domain/entity"
	"github.com/okorolev/gh-activity-report/app/domain/repository"
)

type mongoEventSource struct {
	coll *mongo.Collection
}

// NewMongoEventSource queries the warehouse collection of raw archive
// documents. This is the implementation of the external query boundary
// the report engine consumes.
func NewMongoEventSource(collection *mongo.Collection) repository.EventSource {
	return &mongoEventSource{coll: collection}
}

func (r *mongoEventSource) FetchEvents(ctx context.Context, user, period string) ([]entity.RawEventRow, error) {
	start, end, err := entity.PeriodRange(period)
	if err != nil {
		return nil, err
	}

	// archive documents store created_at as a string, so the period match
	// happens on a converted field
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "actor.login", Value: user}}}},
		{{Key: "$addFields", Value: bson.D{{Key: "__created_at", Value: bson.D{{Key: "$toDate", Value: "$created_at"}}}}}},
		{{Key: "$match", Value: bson.D{{Key: "__created_at", Value: bson.D{{Key: "$gte", Value: start}, {Key: "$lt", Value: end}}}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "id", Value: 1},
			{Key: "type", Value: 1},
			{Key: "repo", Value: "$repo.name"},
			{Key: "actor", Value: "$actor.login"},
			{Key: "created_at", Value: "$__created_at"},
			{Key: "payload", Value: 1},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate user events: %w", err)
	}
	defer cur.Close(ctx)

	rows := make([]entity.RawEventRow, 0)
	for cur.Next(ctx) {
		var doc struct {
			ID        string    `bson:"id"`
			Type      string    `bson:"type"`
			Repo      string    `bson:"repo"`
			Actor     string    `bson:"actor"`
			CreatedAt time.Time `bson:"created_at"`
			Payload   bson.M    `bson:"payload"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode event row: %w", err)
		}
		rows = append(rows, entity.RawEventRow{
			ID:        doc.ID,
			Type:      doc.Type,
			Repo:      doc.Repo,
			Actor:     doc.Actor,
			CreatedAt: doc.CreatedAt,
			Payload:   plainMap(doc.Payload),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("event row cursor: %w", err)
	}
	return rows, nil
}

func plainMap(m bson.M) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = plainValue(v)
	}
	return out
}

// plainValue strips driver document types so the engine only ever sees
// plain maps and slices, same as when the payload comes straight from
// archive JSON.
func plainValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		return plainMap(t)
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = plainValue(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	case bson.DateTime:
		return t.Time().UTC()
	default:
		return v
	}
}
