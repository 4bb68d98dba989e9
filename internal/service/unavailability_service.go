package service

import (
	"context"
	"time"

	"benevita/internal/db"
	"benevita/internal/entities"
	apperr "benevita/internal/errors"
	"benevita/internal/schedule"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UnavailabilityService is the provider-owned ledger of non-working
// intervals. Intervals may overlap; they are stored as declared and never
// merged.
type UnavailabilityService struct {
	intervals UnavailabilityStore
	bookings  BookingStore
	calendar  *CalendarService
	log       *zap.SugaredLogger
	nowFn     func() time.Time
}

func NewUnavailabilityService(intervals UnavailabilityStore, bookings BookingStore, calendar *CalendarService, log *zap.SugaredLogger) *UnavailabilityService {
	return &UnavailabilityService{
		intervals: intervals,
		bookings:  bookings,
		calendar:  calendar,
		log:       log,
		nowFn:     time.Now,
	}
}

// Declare records a new unavailability interval for the provider.
// A confirmed appointment inside the interval blocks the declaration: the
// provider must cancel the appointment first.
func (s *UnavailabilityService) Declare(ctx context.Context, providerID string, begin, end time.Time) (*entities.UnavailabilityResponse, error) {
	now := s.nowFn().UTC()
	begin = begin.UTC()
	end = end.UTC()

	if !end.After(begin) {
		return nil, apperr.ErrInvalidRange
	}
	if begin.Before(now) {
		return nil, apperr.ErrInThePast
	}

	booked, err := s.bookings.ActiveBookingsInRange(providerID, begin, end)
	if err != nil {
		return nil, err
	}
	for _, b := range booked {
		if b.Status == db.StatusConfirmed {
			return nil, apperr.ErrSlotConflict
		}
	}

	iv := &db.UnavailabilityInterval{
		ID:         uuid.NewString(),
		ProviderID: providerID,
		BeginAt:    begin,
		EndAt:      end,
		CreatedAt:  now,
	}
	if err := s.intervals.CreateInterval(iv); err != nil {
		return nil, err
	}

	s.dropWeeks(ctx, providerID, begin, end)
	s.log.Infow("unavailability declared", "provider_id", providerID, "begin", begin, "end", end)

	return &entities.UnavailabilityResponse{ID: iv.ID, BeginAt: iv.BeginAt, EndAt: iv.EndAt}, nil
}

// Revoke deletes an interval the provider owns. A foreign interval answers
// with the same denial as a missing one.
func (s *UnavailabilityService) Revoke(ctx context.Context, providerID, intervalID string) error {
	iv, err := s.intervals.GetIntervalByID(intervalID)
	if err != nil {
		return err
	}
	if iv.ProviderID != providerID {
		return apperr.ErrForbidden
	}
	if err := s.intervals.DeleteInterval(intervalID); err != nil {
		return err
	}

	s.dropWeeks(ctx, providerID, iv.BeginAt, iv.EndAt)
	s.log.Infow("unavailability revoked", "provider_id", providerID, "interval_id", intervalID)
	return nil
}

// List returns the provider's intervals overlapping [from, to), ordered by
// begin ascending.
func (s *UnavailabilityService) List(providerID string, from, to time.Time) ([]entities.UnavailabilityResponse, error) {
	intervals, err := s.intervals.ListOverlapping(providerID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	out := make([]entities.UnavailabilityResponse, len(intervals))
	for i, iv := range intervals {
		out[i] = entities.UnavailabilityResponse{ID: iv.ID, BeginAt: iv.BeginAt, EndAt: iv.EndAt}
	}
	return out, nil
}

// dropWeeks invalidates the cached grid of every week the interval touches,
// not just its endpoints.
func (s *UnavailabilityService) dropWeeks(ctx context.Context, providerID string, begin, end time.Time) {
	for _, week := range schedule.WeeksCovering(begin, end) {
		s.calendar.dropWeek(ctx, providerID, week)
	}
}
