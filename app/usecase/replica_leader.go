package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/okorolev/gh-activity-report/app/domain/repository"
)

// ReplicaLeaderService elects one replica to run the background sync.
// Leadership lives in the leader store as a leased key; the holder renews
// the lease at half its duration and steps down when renewal fails.
type ReplicaLeaderService struct {
	leaderRepo repository.ReplicaLeaderRepository

	leaderKey string
	replicaID string
	lease     time.Duration

	iAmLeader    atomic.Bool
	cancelKeeper context.CancelFunc

	log *logrus.Logger
}

func NewReplicaLeaderService(
	leaderRepo repository.ReplicaLeaderRepository,
	leaderKey, replicaID string,
	lease time.Duration,
	log *logrus.Logger,
) *ReplicaLeaderService {
	return &ReplicaLeaderService{
		leaderRepo: leaderRepo,
		leaderKey:  leaderKey,
		replicaID:  replicaID,
		lease:      lease,
		log:        log,
	}
}

// RunElection tries to take the leader key once. Losing is not an error.
func (s *ReplicaLeaderService) RunElection(ctx context.Context) error {
	ok, err := s.leaderRepo.TryAcquireLeader(ctx, s.leaderKey, s.replicaID, s.lease)
	if err != nil {
		s.iAmLeader.Store(false)
		return fmt.Errorf("acquire leader: %w", err)
	}
	if !ok {
		s.iAmLeader.Store(false)
		s.log.WithField("replica", s.replicaID).Info("not the leader")
		return nil
	}

	if s.cancelKeeper != nil {
		s.cancelKeeper()
	}
	s.log.WithField("replica", s.replicaID).Info("acquired leadership")
	s.iAmLeader.Store(true)

	keeperCtx, cancel := context.WithCancel(context.Background())
	s.cancelKeeper = func() {
		cancel()
		s.iAmLeader.Store(false)
	}
	go s.keepLeadership(keeperCtx)
	return nil
}

func (s *ReplicaLeaderService) keepLeadership(ctx context.Context) {
	ticker := time.NewTicker(s.lease / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.leaderRepo.RenewLock(ctx, s.leaderKey, s.replicaID, s.lease); err != nil {
				s.log.WithError(err).Warn("lost leadership on renew")
				s.stepDown()
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *ReplicaLeaderService) AmILeader() bool {
	return s.iAmLeader.Load()
}

// WhoLeader reports the current holder of the leader key, which may be
// another replica.
func (s *ReplicaLeaderService) WhoLeader(ctx context.Context) (string, error) {
	return s.leaderRepo.WhoLeader(ctx, s.leaderKey)
}

func (s *ReplicaLeaderService) Shutdown() {
	if s.cancelKeeper != nil {
		s.cancelKeeper()
	}
	releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.leaderRepo.ReleaseLeader(releaseCtx, s.leaderKey, s.replicaID); err != nil {
		s.log.WithError(err).Warn("leader release failed")
	}
}

func (s *ReplicaLeaderService) stepDown() {
	if s.cancelKeeper != nil {
		s.cancelKeeper()
	}
	s.iAmLeader.Store(false)
}
