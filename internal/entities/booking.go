package entities

import "time"

type BookAppointmentRequest struct {
	ProviderID             string    `json:"provider_id"`
	AppointmentDatetimeUTC time.Time `json:"appointment_datetime_utc"`
	AppointmentType        string    `json:"appointment_type"` // incall | outcall
}

// BookAppointmentResponse carries either a checkout handle (payment still
// pending) or a directly confirmed booking (subsidized consultation).
type BookAppointmentResponse struct {
	BookingID         string `json:"booking_id"`
	Status            string `json:"status"`
	CheckoutSessionID string `json:"checkout_session_id,omitempty"`
	CheckoutURL       string `json:"checkout_url,omitempty"`
	Message           string `json:"message"`
}

type RateRequest struct {
	Note int `json:"note"`
}

// BookingView is the companion's read-enriched form of a booking.
type BookingView struct {
	BookingID       string    `json:"booking_id"`
	ProviderID      string    `json:"provider_id"`
	SubjectID       string    `json:"subject_id"`
	CounterpartName string    `json:"counterpart_name"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	AppointmentType string    `json:"appointment_type"`
	Status          string    `json:"status"`
	Note            *int      `json:"note,omitempty"`
	HasInvoice      bool      `json:"has_invoice"`
	CanCancel       bool      `json:"can_cancel"`
	CanRate         bool      `json:"can_rate"`
}

// SlotHolder identifies who holds a reserved slot. Only the provider of the
// calendar or the booking party themselves may see it.
type SlotHolder struct {
	BookingID string    `json:"booking_id"`
	SubjectID string    `json:"subject_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	StartsAt  time.Time `json:"starts_at"`
}
