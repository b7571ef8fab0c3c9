package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/okorolev/gh-activity-report/app/domain/entity"
	"github.com/okorolev/gh-activity-report/app/domain/repository"
)

// ReportCacheKey is the cache key for one (user, period) report. The
// loader invalidates by the "report:<user>:" prefix, so the layout is
// shared with the redis store.
func ReportCacheKey(user, period string) string {
	return "report:" + user + ":" + period
}

// ReportService runs the full pipeline for one request: cached text if
// available, otherwise query, normalize, aggregate, render, cache.
type ReportService struct {
	Source repository.EventSource
	Cache  repository.ReportCacheRepository

	Aggregator *Aggregator
	Renderer   *Renderer

	CacheTTL time.Duration
	Log      *logrus.Logger
}

// BuildReport returns the rendered report text for a user and period.
// Errors from the warehouse query pass through unchanged; a nil row
// sequence from the source is entity.ErrEmptyInput.
func (s *ReportService) BuildReport(ctx context.Context, user, period string) (string, error) {
	log := s.Log.WithFields(logrus.Fields{"user": user, "period": period})

	key := ReportCacheKey(user, period)
	cached, err := s.Cache.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("report cache get: %w", err)
	}
	if cached != nil {
		log.Debug("report served from cache")
		return string(cached), nil
	}

	rows, err := s.Source.FetchEvents(ctx, user, period)
	if err != nil {
		// query failures are the caller's to handle, no retries here
		return "", fmt.Errorf("fetch events: %w", err)
	}
	if rows == nil {
		return "", entity.ErrEmptyInput
	}

	report, err := s.Aggregator.Aggregate(user, period, NormalizeEvents(rows))
	if err != nil {
		return "", fmt.Errorf("aggregate events: %w", err)
	}

	text := s.Renderer.Render(report)

	if err := s.Cache.Set(ctx, key, []byte(text), s.CacheTTL); err != nil {
		// a cold cache on the next request is acceptable
		log.WithError(err).Warn("failed to cache report")
	}

	log.WithFields(logrus.Fields{
		"rows":   len(rows),
		"events": report.TotalEvents,
		"repos":  len(report.Repos),
	}).Info("report built")

	return text, nil
}
