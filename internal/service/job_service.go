package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// JobStore is the slice of the booking table the reconciliation sweep
// touches.
type JobStore interface {
	StalePendingBookingIDs(before time.Time) ([]string, error)
	CancelBookings(ids []string) (int64, error)
}

// JobService cancels PENDING_PAYMENT bookings whose payment step never
// completed within the grace period, releasing their slots.
type JobService struct {
	store JobStore
	grace time.Duration
	log   *zap.SugaredLogger
	nowFn func() time.Time
}

func NewJobService(store JobStore, grace time.Duration, log *zap.SugaredLogger) *JobService {
	return &JobService{store: store, grace: grace, log: log, nowFn: time.Now}
}

// ReconcilePendingBookings runs one sweep.
func (s *JobService) ReconcilePendingBookings() error {
	cutoff := s.nowFn().UTC().Add(-s.grace)

	ids, err := s.store.StalePendingBookingIDs(cutoff)
	if err != nil {
		return fmt.Errorf("reconciliation: listing stale pending bookings: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	n, err := s.store.CancelBookings(ids)
	if err != nil {
		return fmt.Errorf("reconciliation: canceling stale bookings: %w", err)
	}
	s.log.Infow("reconciliation sweep released stale pending bookings",
		"candidates", len(ids), "canceled", n)
	return nil
}
