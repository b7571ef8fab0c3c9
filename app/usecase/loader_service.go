package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/okorolev/gh-activity-report/app/domain/entity"
	"github.com/okorolev/gh-activity-report/app/domain/repository"
)

const (
	producerWorkers = 3
	consumerWorkers = 8
	batchSize       = 1500
)

// LoaderService pulls hourly archive partitions into the event warehouse.
// Downloads fan out over producers, inserts over consumers; actors seen
// in the ingested documents get their cached reports invalidated.
type LoaderService struct {
	EventStore  repository.EventStoreRepository
	Downloader  repository.ArchiveDownloader
	ReportCache repository.ReportCacheRepository
	Log         *logrus.Logger
}

// LoadResult describes one finished load run.
type LoadResult struct {
	RunID    string
	Inserted int64
}

// LoadPeriod ingests every hourly partition of the given YYYYMM period.
func (ls *LoaderService) LoadPeriod(ctx context.Context, period string) (*LoadResult, error) {
	start, end, err := entity.PeriodRange(period)
	if err != nil {
		return nil, err
	}
	// the range is inclusive of the period's last day only
	return ls.load(ctx, partitionURLs(start, end.AddDate(0, 0, -1)))
}

// LoadPartitions ingests an explicit URL list. The hourly sync job uses
// this for single partitions.
func (ls *LoaderService) LoadPartitions(ctx context.Context, urls []string) (*LoadResult, error) {
	return ls.load(ctx, urls)
}

func (ls *LoaderService) load(ctx context.Context, urls []string) (*LoadResult, error) {
	runID := uuid.NewString()
	log := ls.Log.WithField("run_id", runID)
	log.WithField("partitions", len(urls)).Info("starting archive load")

	docCh := make(chan map[string]any, 6000)
	urlCh := make(chan string, len(urls))

	var inserted int64
	var touched sync.Map

	var consWG sync.WaitGroup
	for i := 0; i < consumerWorkers; i++ {
		consWG.Add(1)
		go func(id int) {
			defer consWG.Done()
			batch := make([]interface{}, 0, batchSize)
			flush := func() {
				if len(batch) == 0 {
					return
				}
				ins, err := ls.EventStore.InsertMany(ctx, batch)
				if err != nil {
					log.WithError(err).WithField("consumer", id).Error("batch insert failed")
				} else {
					atomic.AddInt64(&inserted, ins)
				}
				batch = batch[:0]
			}
			for doc := range docCh {
				if actor, ok := actorLogin(doc); ok {
					touched.Store(actor, struct{}{})
				}
				batch = append(batch, doc)
				if len(batch) >= batchSize {
					flush()
				}
			}
			flush()
		}(i)
	}

	var prodWG sync.WaitGroup
	for i := 0; i < producerWorkers; i++ {
		prodWG.Add(1)
		go func(id int) {
			defer prodWG.Done()
			for url := range urlCh {
				plog := log.WithFields(logrus.Fields{"producer": id, "url": url})
				plog.Debug("downloading partition")
				if err := ls.Downloader.FetchAndParse(ctx, url, docCh); err != nil {
					plog.WithError(err).Error("partition download failed")
					continue
				}
			}
		}(i)
	}

	for _, u := range urls {
		urlCh <- u
	}
	close(urlCh)

	prodWG.Wait()
	close(docCh)
	consWG.Wait()

	if err := ls.ReportCache.InvalidateTouched(ctx, &touched); err != nil {
		log.WithError(err).Warn("report cache invalidation failed")
	}

	log.WithField("inserted", atomic.LoadInt64(&inserted)).Info("archive load finished")
	return &LoadResult{RunID: runID, Inserted: atomic.LoadInt64(&inserted)}, nil
}

// partitionURLs enumerates the hourly archive files for an inclusive
// day range.
func partitionURLs(start, end time.Time) []string {
	var urls []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		for h := 0; h < 24; h++ {
			urls = append(urls, PartitionURL(d, h))
		}
	}
	return urls
}

// PartitionURL names the archive file holding one hour of events.
func PartitionURL(day time.Time, hour int) string {
	return fmt.Sprintf("https://data.gharchive.org/%s-%d.json.gz", day.Format("2006-01-02"), hour)
}

func actorLogin(doc map[string]any) (string, bool) {
	actor, ok := doc["actor"].(map[string]any)
	if !ok {
		return "", false
	}
	login, ok := actor["login"].(string)
	if !ok || login == "" {
		return "", false
	}
	return login, true
}
