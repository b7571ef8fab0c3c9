package repository

import (
	"context"

	"github.com/okorolev/gh-activity-report/app/domain/entity"
)

// EventSource is the warehouse query boundary: one synchronous call
// returning every raw event row for a user within a period. Errors are
// surfaced to the caller unchanged; retry policy is not this layer's job.
type EventSource interface {
	FetchEvents(ctx context.Context, user, period string) ([]entity.RawEventRow, error)
}
