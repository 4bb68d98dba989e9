package service

import (
	"context"
	"fmt"
	"time"

	"benevita/internal/entities"
	apperr "benevita/internal/errors"
	"benevita/internal/schedule"

	"go.uber.org/zap"
)

// CalendarService renders a provider's week as resolved slots. Clients get
// classifications, never raw intervals, so availability is decided in one
// place.
type CalendarService struct {
	bookings  BookingStore
	intervals UnavailabilityStore
	providers ProviderStore
	cache     *CalendarCache
	log       *zap.SugaredLogger
	nowFn     func() time.Time
}

func NewCalendarService(bookings BookingStore, intervals UnavailabilityStore, providers ProviderStore, cache *CalendarCache, log *zap.SugaredLogger) *CalendarService {
	return &CalendarService{
		bookings:  bookings,
		intervals: intervals,
		providers: providers,
		cache:     cache,
		log:       log,
		nowFn:     time.Now,
	}
}

func (s *CalendarService) WeekCalendar(ctx context.Context, providerID string, weekStart time.Time) (*entities.CalendarResponse, error) {
	now := s.nowFn().UTC()
	weekStart = schedule.NormalizeWeekStart(weekStart)

	if schedule.BeyondHorizon(weekStart, now) {
		return nil, apperr.ErrPastSlot
	}
	if _, err := s.providers.GetProviderByID(providerID); err != nil {
		return nil, err
	}

	if cached, ok := s.cache.Get(ctx, providerID, weekStart, now); ok {
		return cached, nil
	}

	blocks, occupancies, err := s.providerWeek(providerID, weekStart)
	if err != nil {
		return nil, err
	}

	grid := schedule.WeekGrid(weekStart)
	slots := schedule.Resolve(grid, now, blocks, occupancies)

	resp := &entities.CalendarResponse{
		ProviderID: providerID,
		WeekStart:  weekStart,
		Slots:      make([]entities.SlotView, len(slots)),
	}
	for i, sl := range slots {
		resp.Slots[i] = entities.SlotView{Start: sl.Start, Status: sl.Status.String()}
	}

	s.cache.Set(ctx, providerID, weekStart, now, resp)
	return resp, nil
}

// providerWeek loads the two occupancy sources of the calendar for the week
// starting at weekStart.
func (s *CalendarService) providerWeek(providerID string, weekStart time.Time) ([]schedule.Interval, []schedule.Interval, error) {
	weekEnd := weekStart.AddDate(0, 0, schedule.DaysPerWeek)

	declared, err := s.intervals.ListOverlapping(providerID, weekStart, weekEnd)
	if err != nil {
		return nil, nil, fmt.Errorf("loading unavailability: %w", err)
	}
	booked, err := s.bookings.ActiveBookingsInRange(providerID, weekStart, weekEnd)
	if err != nil {
		return nil, nil, fmt.Errorf("loading bookings: %w", err)
	}

	blocks := make([]schedule.Interval, len(declared))
	for i, iv := range declared {
		blocks[i] = schedule.Interval{Begin: iv.BeginAt, End: iv.EndAt}
	}
	occupancies := make([]schedule.Interval, len(booked))
	for i, b := range booked {
		occupancies[i] = schedule.Interval{Begin: b.StartsAt, End: b.EndsAt}
	}
	return blocks, occupancies, nil
}

// dropWeek invalidates the cached grid of the week containing at.
func (s *CalendarService) dropWeek(ctx context.Context, providerID string, at time.Time) {
	s.cache.Drop(ctx, providerID, schedule.NormalizeWeekStart(at), s.nowFn().UTC())
}

// freeAt re-resolves a single slot against committed state. The reserve
// path calls this right before the atomic insert.
func (s *CalendarService) freeAt(providerID string, at, now time.Time) (bool, error) {
	weekStart := schedule.NormalizeWeekStart(at)
	blocks, occupancies, err := s.providerWeek(providerID, weekStart)
	if err != nil {
		return false, err
	}
	return schedule.FreeAt(at, now, blocks, occupancies), nil
}
