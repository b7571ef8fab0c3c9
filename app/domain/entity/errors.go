package entity

import "errors"

var (
	// ErrEmptyInput means the event sequence itself was absent. A present
	// but empty sequence is valid and produces an empty-period report.
	ErrEmptyInput = errors.New("event input is absent")

	// ErrNoLeader means no replica currently holds the leader key.
	ErrNoLeader = errors.New("no leader elected")

	ErrBadPeriod = errors.New("period must be a YYYYMM token")
)
