package usecase_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/okorolev/gh-activity-report/app/domain/entity"
	"github.com/okorolev/gh-activity-report/app/usecase"
)

type mockEventSource struct {
	mock.Mock
}

func (m *mockEventSource) FetchEvents(ctx context.Context, user, period string) ([]entity.RawEventRow, error) {
	args := m.Called(ctx, user, period)
	if rows := args.Get(0); rows != nil {
		return rows.([]entity.RawEventRow), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockReportCache struct {
	mock.Mock
}

func (m *mockReportCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if val := args.Get(0); val != nil {
		return val.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReportCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *mockReportCache) InvalidateUsers(ctx context.Context, users map[string]struct{}) error {
	args := m.Called(ctx, users)
	return args.Error(0)
}

func (m *mockReportCache) InvalidateTouched(ctx context.Context, touched *sync.Map) error {
	args := m.Called(ctx, touched)
	return args.Error(0)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newReportService(source *mockEventSource, cache *mockReportCache) *usecase.ReportService {
	return &usecase.ReportService{
		Source:     source,
		Cache:      cache,
		Aggregator: usecase.NewAggregator(nil),
		Renderer:   usecase.NewRenderer(nil),
		CacheTTL:   time.Hour,
		Log:        quietLogger(),
	}
}

func TestBuildReport_CacheHitSkipsQuery(t *testing.T) {
	ctx := context.Background()
	source := &mockEventSource{}
	cache := &mockReportCache{}
	svc := newReportService(source, cache)

	cache.On("Get", ctx, "report:djc:202410").Return([]byte("cached text"), nil)

	text, err := svc.BuildReport(ctx, "djc", "202410")

	require.NoError(t, err)
	assert.Equal(t, "cached text", text)
	source.AssertNotCalled(t, "FetchEvents", mock.Anything, mock.Anything, mock.Anything)
}

func TestBuildReport_CacheMissBuildsAndCaches(t *testing.T) {
	ctx := context.Background()
	source := &mockEventSource{}
	cache := &mockReportCache{}
	svc := newReportService(source, cache)

	rows := []entity.RawEventRow{{
		ID: "1", Type: "WatchEvent", Repo: "x/y", Actor: "djc", CreatedAt: t0,
	}}
	cache.On("Get", ctx, "report:djc:202410").Return(nil, nil)
	source.On("FetchEvents", ctx, "djc", "202410").Return(rows, nil)
	cache.On("Set", ctx, "report:djc:202410", mock.Anything, time.Hour).Return(nil)

	text, err := svc.BuildReport(ctx, "djc", "202410")

	require.NoError(t, err)
	assert.Contains(t, text, "x/y")
	assert.Contains(t, text, "- starred repository")
	cache.AssertCalled(t, "Set", ctx, "report:djc:202410", []byte(text), time.Hour)
}

func TestBuildReport_QueryFailurePropagates(t *testing.T) {
	ctx := context.Background()
	source := &mockEventSource{}
	cache := &mockReportCache{}
	svc := newReportService(source, cache)

	queryErr := errors.New("warehouse unreachable")
	cache.On("Get", ctx, "report:djc:202410").Return(nil, nil)
	source.On("FetchEvents", ctx, "djc", "202410").Return(nil, queryErr)

	_, err := svc.BuildReport(ctx, "djc", "202410")

	assert.ErrorIs(t, err, queryErr)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBuildReport_NilRowSetIsEmptyInput(t *testing.T) {
	ctx := context.Background()
	source := &mockEventSource{}
	cache := &mockReportCache{}
	svc := newReportService(source, cache)

	cache.On("Get", ctx, "report:djc:202410").Return(nil, nil)
	source.On("FetchEvents", ctx, "djc", "202410").Return(nil, nil)

	_, err := svc.BuildReport(ctx, "djc", "202410")

	assert.ErrorIs(t, err, entity.ErrEmptyInput)
}

func TestBuildReport_ZeroRowsRendersNoActivity(t *testing.T) {
	ctx := context.Background()
	source := &mockEventSource{}
	cache := &mockReportCache{}
	svc := newReportService(source, cache)

	cache.On("Get", ctx, "report:ghost:202410").Return(nil, nil)
	source.On("FetchEvents", ctx, "ghost", "202410").Return([]entity.RawEventRow{}, nil)
	cache.On("Set", ctx, "report:ghost:202410", mock.Anything, time.Hour).Return(nil)

	text, err := svc.BuildReport(ctx, "ghost", "202410")

	require.NoError(t, err)
	assert.Contains(t, text, "No recorded activity for this period.")
}
