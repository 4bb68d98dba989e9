package service

import (
	"time"

	"benevita/internal/db"
	"benevita/internal/entities"
)

// CompanionService enriches bookings for display: counterpart identity,
// invoice presence, what the viewer may still do. It reads, it never
// mutates.
type CompanionService struct {
	bookings  BookingStore
	providers ProviderStore
	accounts  AccountStore
	invoices  InvoiceStore
	nowFn     func() time.Time
}

func NewCompanionService(bookings BookingStore, providers ProviderStore, accounts AccountStore, invoices InvoiceStore) *CompanionService {
	return &CompanionService{
		bookings:  bookings,
		providers: providers,
		accounts:  accounts,
		invoices:  invoices,
		nowFn:     time.Now,
	}
}

// BookingsForSubject returns the subject's bookings, newest first, with the
// provider as counterpart.
func (s *CompanionService) BookingsForSubject(subjectID string) ([]entities.BookingView, error) {
	bookings, err := s.bookings.ListBookingsForSubject(subjectID)
	if err != nil {
		return nil, err
	}
	views := make([]entities.BookingView, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		name := ""
		if p, err := s.providers.GetProviderByID(b.ProviderID); err == nil {
			name = p.FirstName + " " + p.LastName
		}
		views = append(views, s.view(b, name, true))
	}
	return views, nil
}

// BookingsForProvider returns the provider's bookings with the subject as
// counterpart. Rating is a subject-side action, so CanRate is always false
// here.
func (s *CompanionService) BookingsForProvider(providerID string) ([]entities.BookingView, error) {
	bookings, err := s.bookings.ListBookingsForProvider(providerID)
	if err != nil {
		return nil, err
	}
	views := make([]entities.BookingView, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		name := ""
		if a, err := s.accounts.GetAccountByID(b.SubjectID); err == nil {
			name = a.FirstName + " " + a.LastName
		}
		views = append(views, s.view(b, name, false))
	}
	return views, nil
}

func (s *CompanionService) view(b *db.Booking, counterpart string, asSubject bool) entities.BookingView {
	now := s.nowFn().UTC()
	past := b.StartsAt.Before(now)

	v := entities.BookingView{
		BookingID:       b.ID,
		ProviderID:      b.ProviderID,
		SubjectID:       b.SubjectID,
		CounterpartName: counterpart,
		StartsAt:        b.StartsAt,
		EndsAt:          b.EndsAt,
		AppointmentType: b.AppointmentType,
		Status:          string(b.Status),
		HasInvoice:      b.InvoiceReference.Valid && s.invoices.Exists(b.InvoiceReference.String),
		CanCancel:       b.Status.Active() && !(b.Status == db.StatusConfirmed && past),
		CanRate:         asSubject && b.Status == db.StatusConfirmed && past && !b.Rated(),
	}
	if b.Note.Valid {
		note := int(b.Note.Int64)
		v.Note = &note
	}
	return v
}
