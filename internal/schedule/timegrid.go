package schedule

import "time"

// Operating window of the platform. Consultations run in fixed 30-minute
// slots between 10:00 and 19:00 UTC, Monday through Saturday. Sunday is the
// weekly rest day and is never bookable.
const (
	DayStartHour = 10
	DayEndHour   = 19
	SlotDuration = 30 * time.Minute
	DaysPerWeek  = 7

	// SlotsPerDay = (DayEndHour - DayStartHour) / SlotDuration
	SlotsPerDay = int((DayEndHour - DayStartHour) * time.Hour / SlotDuration)

	// HorizonMonths bounds how far ahead a week grid may be requested.
	HorizonMonths = 3
)

// RestDay is excluded from bookability entirely, not merely marked busy.
const RestDay = time.Sunday

// Grid is the canonical sequence of bookable time points for one week:
// DaysPerWeek days of SlotsPerDay points each, day-major order, all UTC.
type Grid struct {
	WeekStart time.Time
	Points    []time.Time
}

// NormalizeWeekStart floors t to the start of its ISO week (Monday 00:00 UTC).
// Every component normalizes through here so grids cannot desync.
func NormalizeWeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	sinceMonday := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -sinceMonday)
}

// WeekGrid builds the grid for the week containing weekStart. An unnormalized
// weekStart is floored to the ISO week boundary first.
func WeekGrid(weekStart time.Time) Grid {
	start := NormalizeWeekStart(weekStart)
	points := make([]time.Time, 0, DaysPerWeek*SlotsPerDay)
	for d := 0; d < DaysPerWeek; d++ {
		day := start.AddDate(0, 0, d)
		slot := day.Add(DayStartHour * time.Hour)
		for s := 0; s < SlotsPerDay; s++ {
			points = append(points, slot)
			slot = slot.Add(SlotDuration)
		}
	}
	return Grid{WeekStart: start, Points: points}
}

// BeyondHorizon reports whether the week containing weekStart starts after
// the last week reachable from now (now + HorizonMonths, end of that ISO week).
func BeyondHorizon(weekStart, now time.Time) bool {
	maxWeek := NormalizeWeekStart(now.UTC().AddDate(0, HorizonMonths, 0))
	return NormalizeWeekStart(weekStart).After(maxWeek)
}

// IsGridPoint reports whether t is a valid bookable time point: aligned to
// the slot raster, inside the operating window, and not on the rest day.
func IsGridPoint(t time.Time) bool {
	t = t.UTC()
	if t.Weekday() == RestDay {
		return false
	}
	if t.Second() != 0 || t.Nanosecond() != 0 {
		return false
	}
	if t.Minute()%int(SlotDuration/time.Minute) != 0 {
		return false
	}
	dayStart := time.Date(t.Year(), t.Month(), t.Day(), DayStartHour, 0, 0, 0, time.UTC)
	dayEnd := time.Date(t.Year(), t.Month(), t.Day(), DayEndHour, 0, 0, 0, time.UTC)
	return !t.Before(dayStart) && t.Before(dayEnd)
}

// SlotEnd returns the end of the slot starting at t.
func SlotEnd(t time.Time) time.Time {
	return t.Add(SlotDuration)
}

// WeeksCovering returns the normalized week start of every ISO week the
// half-open interval [begin, end) touches, in order.
func WeeksCovering(begin, end time.Time) []time.Time {
	if !end.After(begin) {
		return nil
	}
	last := NormalizeWeekStart(end.Add(-time.Nanosecond))
	var weeks []time.Time
	for w := NormalizeWeekStart(begin); !w.After(last); w = w.AddDate(0, 0, DaysPerWeek) {
		weeks = append(weeks, w)
	}
	return weeks
}
