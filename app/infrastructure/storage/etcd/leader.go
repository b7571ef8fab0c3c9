package etcd

import (
	"context"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/okorolev/gh-activity-report/app/domain/entity"
	"github.com/okorolev/gh-activity-report/app/domain/repository"
)

// ETCDReplicaLeader holds leadership as a leased key created only when no
// one else owns it. Renewal re-checks ownership inside a transaction.
type ETCDReplicaLeader struct {
	client  *clientv3.Client
	leaseID clientv3.LeaseID
}

func NewETCDReplicaLeader(cli *clientv3.Client) repository.ReplicaLeaderRepository {
	return &ETCDReplicaLeader{client: cli}
}

func (s *ETCDReplicaLeader) TryAcquireLeader(ctx context.Context, leaderKey, replicaID string, lease time.Duration) (bool, error) {
	grant, err := s.client.Grant(ctx, int64(lease.Seconds()))
	if err != nil {
		return false, fmt.Errorf("grant lease: %w", err)
	}

	txn := s.client.Txn(ctx)
	txn.If(clientv3.Compare(clientv3.CreateRevision(leaderKey), "=", 0)).
		Then(clientv3.OpPut(leaderKey, replicaID, clientv3.WithLease(grant.ID)))

	resp, err := txn.Commit()
	if err != nil {
		return false, fmt.Errorf("acquire txn commit: %w", err)
	}
	if !resp.Succeeded {
		return false, nil
	}

	s.leaseID = grant.ID
	return true, nil
}

func (s *ETCDReplicaLeader) WhoLeader(ctx context.Context, leaderKey string) (string, error) {
	resp, err := s.client.Get(ctx, leaderKey)
	if err != nil {
		return "", fmt.Errorf("etcd get leader: %w", err)
	}
	if len(resp.Kvs) == 0 {
		return "", entity.ErrNoLeader
	}
	return string(resp.Kvs[0].Value), nil
}

func (s *ETCDReplicaLeader) RenewLock(ctx context.Context, leaderKey, lockHolder string, lease time.Duration) error {
	if s.leaseID == 0 {
		return fmt.Errorf("renew lock: no lease held")
	}

	txn := s.client.Txn(ctx).
		If(clientv3.Compare(clientv3.Value(leaderKey), "=", lockHolder)).
		Then(clientv3.OpPut(leaderKey, lockHolder, clientv3.WithLease(s.leaseID)))

	resp, err := txn.Commit()
	if err != nil {
		return fmt.Errorf("renew txn commit: %w", err)
	}
	if !resp.Succeeded {
		return fmt.Errorf("renew lock: leader changed (expected %s)", lockHolder)
	}

	kaResp, err := s.client.KeepAliveOnce(ctx, s.leaseID)
	if err != nil {
		return fmt.Errorf("keepalive for lease %d: %w", s.leaseID, err)
	}
	if kaResp == nil {
		return fmt.Errorf("keepalive returned nil for lease %d", s.leaseID)
	}
	return nil
}

func (s *ETCDReplicaLeader) ReleaseLeader(ctx context.Context, leaderKey, lockHolder string) error {
	txn := s.client.Txn(ctx)
	txn.If(clientv3.Compare(clientv3.Value(leaderKey), "=", lockHolder)).
		Then(clientv3.OpDelete(leaderKey))
	resp, err := txn.Commit()
	if err != nil {
		return fmt.Errorf("release txn commit: %w", err)
	}
	if !resp.Succeeded {
		return fmt.Errorf("release leader: not the owner of %s", leaderKey)
	}
	if s.leaseID != 0 {
		s.client.Revoke(ctx, s.leaseID)
		s.leaseID = 0
	}
	return nil
}
