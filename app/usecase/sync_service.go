package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// SyncService keeps the warehouse current: on every tick the leading
// replica ingests the most recent completed hourly partition, so reports
// for the in-progress period pick up fresh activity.
type SyncService struct {
	Loader *LoaderService
	Leader *ReplicaLeaderService

	Interval time.Duration
	Log      *logrus.Logger
}

// Run blocks until ctx is canceled. Non-leader replicas keep retrying the
// election each tick so a crashed leader is replaced within one interval.
func (s *SyncService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.Leader.AmILeader() {
				if err := s.Leader.RunElection(ctx); err != nil {
					s.Log.WithError(err).Warn("leader election failed")
					continue
				}
				if !s.Leader.AmILeader() {
					if leader, err := s.Leader.WhoLeader(ctx); err == nil {
						s.Log.WithField("leader", leader).Debug("sync deferred to leader")
					}
					continue
				}
			}
			s.syncOnce(ctx)
		}
	}
}

func (s *SyncService) syncOnce(ctx context.Context) {
	// the partition for hour H is published once hour H is over
	prev := time.Now().UTC().Add(-2 * time.Hour)
	url := PartitionURL(prev, prev.Hour())

	res, err := s.Loader.LoadPartitions(ctx, []string{url})
	if err != nil {
		s.Log.WithError(err).WithField("url", url).Error("hourly sync failed")
		return
	}
	s.Log.WithFields(logrus.Fields{
		"url":      url,
		"run_id":   res.RunID,
		"inserted": res.Inserted,
	}).Info("hourly sync finished")
}
