package db

import (
	"database/sql"
	"time"
)

// BookingStatus is the explicit booking state machine. Bookings are never
// hard-deleted: cancellation is a transition, so history survives.
type BookingStatus string

const (
	StatusPendingPayment BookingStatus = "PENDING_PAYMENT"
	StatusConfirmed      BookingStatus = "CONFIRMED"
	StatusCanceled       BookingStatus = "CANCELED"
)

// Active reports whether the booking occupies its time slot.
func (s BookingStatus) Active() bool {
	return s == StatusPendingPayment || s == StatusConfirmed
}

// Terminal reports whether no further transition is allowed.
func (s BookingStatus) Terminal() bool {
	return s == StatusCanceled
}

// CanTransitionTo enforces the allowed transitions:
// PENDING_PAYMENT -> CONFIRMED, and any active state -> CANCELED.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case StatusPendingPayment:
		return next == StatusConfirmed || next == StatusCanceled
	case StatusConfirmed:
		return next == StatusCanceled
	default:
		return false
	}
}

// Appointment placement. Providers declare which modes they offer;
// InterventionBoth accepts either per-booking type.
const (
	AppointmentIncall  = "incall"  // on-site
	AppointmentOutcall = "outcall" // remote
	InterventionBoth   = "both"
)

// InterventionAllows reports whether a provider offering the given
// intervention mode accepts a booking of the given appointment type.
func InterventionAllows(intervention, appointmentType string) bool {
	if appointmentType != AppointmentIncall && appointmentType != AppointmentOutcall {
		return false
	}
	return intervention == InterventionBoth || intervention == appointmentType
}

type Provider struct {
	ID              string
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Service         string
	Intervention    string // incall | outcall | both
	PriceCents      int
	StripeAccountID string
	CreatedAt       time.Time
}

type Booking struct {
	ID               string
	ProviderID       string
	SubjectID        string
	StartsAt         time.Time
	EndsAt           time.Time
	AppointmentType  string // incall | outcall
	Status           BookingStatus
	PriceCents       int
	Note             sql.NullInt64
	InvoiceReference sql.NullString
	StripeSessionID  sql.NullString
	PaymentReference sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Rated reports whether a satisfaction note has been recorded.
func (b *Booking) Rated() bool {
	return b.Note.Valid
}

type UnavailabilityInterval struct {
	ID         string
	ProviderID string
	BeginAt    time.Time
	EndAt      time.Time
	CreatedAt  time.Time
}

// Account backs the boundary login endpoint. Identity is otherwise
// established by the JWT middleware; the core never re-authenticates.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string // provider | subject
	FirstName    string
	LastName     string
	Phone        string
	CompanyID    sql.NullString
	CreatedAt    time.Time
}
