package entities

import "time"

// SlotView is one resolved grid cell of a provider's week.
type SlotView struct {
	Start  time.Time `json:"start"`
	Status string    `json:"status"`
}

// CalendarResponse is the server-resolved week grid for one provider.
// Clients render it as-is; they never re-derive availability.
type CalendarResponse struct {
	ProviderID string     `json:"provider_id"`
	WeekStart  time.Time  `json:"week_start"`
	Slots      []SlotView `json:"slots"`
}

type UnavailabilityRequest struct {
	BeginAt time.Time `json:"begin_at"`
	EndAt   time.Time `json:"end_at"`
}

type UnavailabilityResponse struct {
	ID      string    `json:"id"`
	BeginAt time.Time `json:"begin_at"`
	EndAt   time.Time `json:"end_at"`
}
