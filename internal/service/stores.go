package service

import (
	"context"
	"database/sql"
	"time"

	"benevita/internal/db"
)

// Store interfaces decouple the services from Postgres so the scheduling
// logic can be exercised against in-memory fakes.

type BookingStore interface {
	CreateBooking(b *db.Booking) error
	CreateSubsidizedBooking(b *db.Booking) (bool, error)
	GetBookingByID(id string) (*db.Booking, error)
	GetBookingByStripeSessionID(sessionID string) (*db.Booking, error)
	UpdateBookingStatus(id string, from, to db.BookingStatus, paymentRef, invoiceRef sql.NullString) error
	SetStripeSession(id, sessionID string) error
	SetNote(id string, note int) error
	ActiveBookingsInRange(providerID string, from, to time.Time) ([]db.Booking, error)
	GetActiveBookingAt(providerID string, at time.Time) (*db.Booking, error)
	ListBookingsForSubject(subjectID string) ([]db.Booking, error)
	ListBookingsForProvider(providerID string) ([]db.Booking, error)
}

type UnavailabilityStore interface {
	CreateInterval(iv *db.UnavailabilityInterval) error
	GetIntervalByID(id string) (*db.UnavailabilityInterval, error)
	DeleteInterval(id string) error
	ListOverlapping(providerID string, from, to time.Time) ([]db.UnavailabilityInterval, error)
}

type ProviderStore interface {
	GetProviderByID(id string) (*db.Provider, error)
	ListProviders(service, intervention string) ([]db.Provider, error)
}

type AccountStore interface {
	GetAccountByEmail(email string) (*db.Account, error)
	GetAccountByID(id string) (*db.Account, error)
}

// CheckoutParams describes one payment to collect.
type CheckoutParams struct {
	AmountCents        int64
	Description        string
	CustomerEmail      string
	DestinationAccount string
	BookingID          string
}

// CheckoutClient is the payment-processor collaborator. Implementations
// must honor ctx cancellation; the orchestrator bounds every call.
type CheckoutClient interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (url, sessionID string, err error)
}

// InvoiceStore resolves whether an invoice artifact exists for a stored
// reference. The core never generates documents.
type InvoiceStore interface {
	Exists(reference string) bool
}

// Notifier delivers post-transition notifications. Delivery failures are
// logged, never surfaced to the booking party.
type Notifier interface {
	BookingConfirmed(booking *db.Booking, provider *db.Provider, subject *db.Account)
	BookingCanceled(booking *db.Booking, provider *db.Provider, subject *db.Account)
}
