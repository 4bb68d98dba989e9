package schedule

import "time"

// SlotStatus classifies one grid point for one provider.
type SlotStatus int

const (
	StatusPast SlotStatus = iota
	StatusPastToday
	StatusBlocked
	StatusReserved
	StatusAvailable
)

func (s SlotStatus) String() string {
	switch s {
	case StatusPast:
		return "past"
	case StatusPastToday:
		return "past_today"
	case StatusBlocked:
		return "blocked"
	case StatusReserved:
		return "reserved"
	case StatusAvailable:
		return "available"
	default:
		return "unknown"
	}
}

// Interval is a half-open [Begin, End) time range.
type Interval struct {
	Begin time.Time
	End   time.Time
}

// Contains reports whether t falls inside the interval, begin inclusive and
// end exclusive.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Begin) && t.Before(iv.End)
}

// Slot is one resolved grid point.
type Slot struct {
	Start  time.Time
	Status SlotStatus
}

// Resolve classifies every point of the grid against the current time, the
// provider's declared unavailability and the provider's non-canceled
// bookings. It is a pure function: callers fetch state, Resolve only reads
// it.
//
// Evaluation order follows the display contract: past days (and the rest
// day) win over everything, then elapsed slots of the current day, then
// blocks, then reservations. Occupancies wider than a single slot render as
// blocked so a viewer cannot tell a long manual block from back-to-back
// bookings.
func Resolve(grid Grid, now time.Time, blocks []Interval, bookings []Interval) []Slot {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	slots := make([]Slot, len(grid.Points))
	for i, p := range grid.Points {
		slots[i] = Slot{Start: p, Status: classify(p, now, today, blocks, bookings)}
	}
	return slots
}

func classify(p, now, today time.Time, blocks []Interval, bookings []Interval) SlotStatus {
	day := time.Date(p.Year(), p.Month(), p.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(today) || p.Weekday() == RestDay {
		return StatusPast
	}
	if day.Equal(today) && p.Before(now) {
		return StatusPastToday
	}
	for _, b := range blocks {
		if b.Contains(p) {
			return StatusBlocked
		}
	}
	for _, b := range bookings {
		if !b.Contains(p) {
			continue
		}
		if b.End.Sub(b.Begin) == SlotDuration {
			return StatusReserved
		}
		return StatusBlocked
	}
	return StatusAvailable
}

// FreeAt reports whether the provider calendar leaves the slot starting at
// t bookable. It is the same predicate Resolve applies, exposed for the
// reserve path, where t arrives from the client rather than from a grid.
func FreeAt(t, now time.Time, blocks []Interval, bookings []Interval) bool {
	if !IsGridPoint(t) {
		return false
	}
	today := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
	return classify(t.UTC(), now.UTC(), today, blocks, bookings) == StatusAvailable
}
