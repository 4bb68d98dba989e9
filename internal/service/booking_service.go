package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"benevita/internal/db"
	"benevita/internal/entities"
	apperr "benevita/internal/errors"
	"benevita/internal/schedule"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingService runs the reserve -> pay -> confirm -> cancel protocol.
// The uniqueness constraint behind BookingStore.CreateBooking is the only
// mutual-exclusion boundary; everything before the insert is advisory.
type BookingService struct {
	bookings  BookingStore
	providers ProviderStore
	accounts  AccountStore
	calendar  *CalendarService
	checkout  CheckoutClient
	notifier  Notifier
	log       *zap.SugaredLogger

	nowFn          func() time.Time
	paymentTimeout time.Duration
}

func NewBookingService(
	bookings BookingStore,
	providers ProviderStore,
	accounts AccountStore,
	calendar *CalendarService,
	checkout CheckoutClient,
	notifier Notifier,
	paymentTimeout time.Duration,
	log *zap.SugaredLogger,
) *BookingService {
	return &BookingService{
		bookings:       bookings,
		providers:      providers,
		accounts:       accounts,
		calendar:       calendar,
		checkout:       checkout,
		notifier:       notifier,
		log:            log,
		nowFn:          time.Now,
		paymentTimeout: paymentTimeout,
	}
}

// Reserve books the slot for the subject. When the subject's company plan
// still covers a consultation this month the booking confirms immediately;
// otherwise it is created PENDING_PAYMENT and the caller is handed a
// checkout session to complete.
func (s *BookingService) Reserve(ctx context.Context, subjectID string, req entities.BookAppointmentRequest) (*entities.BookAppointmentResponse, error) {
	now := s.nowFn().UTC()
	at := req.AppointmentDatetimeUTC.UTC()

	provider, err := s.providers.GetProviderByID(req.ProviderID)
	if err != nil {
		return nil, err
	}
	if !db.InterventionAllows(provider.Intervention, req.AppointmentType) {
		return nil, apperr.ErrInvalidIntervention
	}
	if at.Before(now) || !schedule.IsGridPoint(at) || schedule.BeyondHorizon(at, now) {
		return nil, apperr.ErrPastSlot
	}

	// Advisory availability check against committed state. The insert
	// below remains the arbiter under concurrency.
	free, err := s.calendar.freeAt(provider.ID, at, now)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, apperr.ErrSlotConflict
	}

	subject, err := s.accounts.GetAccountByID(subjectID)
	if err != nil {
		return nil, err
	}

	booking := &db.Booking{
		ID:              uuid.NewString(),
		ProviderID:      provider.ID,
		SubjectID:       subjectID,
		StartsAt:        at,
		EndsAt:          schedule.SlotEnd(at),
		AppointmentType: req.AppointmentType,
		PriceCents:      provider.PriceCents,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// Try the subsidized path first. Quota consumption and insert commit
	// in one transaction, so racing reserves cannot both spend the last
	// covered consultation of the month.
	subsidized := *booking
	subsidized.Status = db.StatusConfirmed
	subsidized.PriceCents = 0
	subsidized.InvoiceReference = sql.NullString{String: booking.ID + ".pdf", Valid: true}
	covered, err := s.bookings.CreateSubsidizedBooking(&subsidized)
	if err != nil {
		return nil, err
	}
	if covered {
		s.calendar.dropWeek(ctx, provider.ID, at)
		s.notify(func(n Notifier) { n.BookingConfirmed(&subsidized, provider, subject) })
		s.log.Infow("subsidized appointment booked",
			"booking_id", subsidized.ID, "provider_id", provider.ID, "starts_at", at)
		return &entities.BookAppointmentResponse{
			BookingID: subsidized.ID,
			Status:    string(subsidized.Status),
			Message:   "appointment successfully booked",
		}, nil
	}

	booking.Status = db.StatusPendingPayment
	if err := s.bookings.CreateBooking(booking); err != nil {
		return nil, err
	}
	s.calendar.dropWeek(ctx, provider.ID, at)

	url, sessionID, err := s.createCheckout(ctx, CheckoutParams{
		AmountCents:        int64(provider.PriceCents),
		Description:        fmt.Sprintf("Consultation with %s %s", provider.FirstName, provider.LastName),
		CustomerEmail:      subject.Email,
		DestinationAccount: provider.StripeAccountID,
		BookingID:          booking.ID,
	})
	if err != nil {
		// The slot stays held in PENDING_PAYMENT; the reconciliation
		// sweep releases it if payment never completes.
		s.log.Errorw("checkout session creation failed",
			"booking_id", booking.ID, "err", err)
		return nil, err
	}
	if err := s.bookings.SetStripeSession(booking.ID, sessionID); err != nil {
		return nil, err
	}

	s.log.Infow("appointment reserved, awaiting payment",
		"booking_id", booking.ID, "provider_id", provider.ID, "starts_at", at)
	return &entities.BookAppointmentResponse{
		BookingID:         booking.ID,
		Status:            string(booking.Status),
		CheckoutSessionID: sessionID,
		CheckoutURL:       url,
		Message:           "payment required to confirm the appointment",
	}, nil
}

// createCheckout bounds the processor call and retries a processor failure
// at most once.
func (s *BookingService) createCheckout(ctx context.Context, p CheckoutParams) (string, string, error) {
	attempt := func() (string, string, error) {
		cctx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
		defer cancel()
		return s.checkout.CreateCheckoutSession(cctx, p)
	}

	url, id, err := attempt()
	if err == nil {
		return url, id, nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "", "", fmt.Errorf("%w: %v", apperr.ErrPaymentTimeout, err)
	}

	url, id, err = attempt()
	if err == nil {
		return url, id, nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "", "", fmt.Errorf("%w: %v", apperr.ErrPaymentTimeout, err)
	}
	return "", "", fmt.Errorf("%w: %v", apperr.ErrPaymentProcessorError, err)
}

// ConfirmPayment is the idempotent payment callback: a repeated delivery
// for an already confirmed booking is a no-op returning the booking.
func (s *BookingService) ConfirmPayment(ctx context.Context, sessionID, paymentRef string) (*db.Booking, error) {
	booking, err := s.bookings.GetBookingByStripeSessionID(sessionID)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case db.StatusConfirmed:
		return booking, nil
	case db.StatusCanceled:
		// Payment landed after the reconciliation sweep released the
		// slot; humans resolve this one.
		s.log.Errorw("payment received for canceled booking",
			"booking_id", booking.ID, "payment_reference", paymentRef)
		return nil, apperr.ErrSlotConflict
	}

	invoiceRef := sql.NullString{String: booking.ID + ".pdf", Valid: true}
	payRef := sql.NullString{String: paymentRef, Valid: paymentRef != ""}
	err = s.bookings.UpdateBookingStatus(booking.ID, db.StatusPendingPayment, db.StatusConfirmed, payRef, invoiceRef)
	if err != nil {
		if !errors.Is(err, apperr.ErrSlotConflict) {
			return nil, err
		}
		// Another transition committed between our read and the update;
		// re-read and decide.
		current, rerr := s.bookings.GetBookingByID(booking.ID)
		if rerr != nil {
			return nil, rerr
		}
		if current.Status == db.StatusConfirmed {
			return current, nil
		}
		s.log.Errorw("payment received for canceled booking",
			"booking_id", booking.ID, "payment_reference", paymentRef)
		return nil, apperr.ErrSlotConflict
	}
	booking.Status = db.StatusConfirmed
	booking.PaymentReference = payRef
	booking.InvoiceReference = invoiceRef

	provider, perr := s.providers.GetProviderByID(booking.ProviderID)
	subject, aerr := s.accounts.GetAccountByID(booking.SubjectID)
	if perr == nil && aerr == nil {
		s.notify(func(n Notifier) { n.BookingConfirmed(booking, provider, subject) })
	}

	s.log.Infow("booking confirmed", "booking_id", booking.ID, "payment_reference", paymentRef)
	return booking, nil
}

// Cancel transitions a non-terminal booking to CANCELED and releases its
// slot. Only the booking party or the provider may cancel. No refund is
// issued; callers warn the user before committing. A past CONFIRMED
// appointment can no longer be canceled, while an expired PENDING_PAYMENT
// one can, for cleanup.
func (s *BookingService) Cancel(ctx context.Context, bookingID, actorID string) error {
	booking, err := s.bookings.GetBookingByID(bookingID)
	if err != nil {
		return err
	}
	if actorID != booking.SubjectID && actorID != booking.ProviderID {
		return apperr.ErrForbidden
	}
	if !booking.Status.CanTransitionTo(db.StatusCanceled) {
		return apperr.ErrSlotConflict
	}
	now := s.nowFn().UTC()
	if booking.Status == db.StatusConfirmed && booking.StartsAt.Before(now) {
		return apperr.ErrPastSlot
	}

	if err := s.bookings.UpdateBookingStatus(bookingID, booking.Status, db.StatusCanceled, sql.NullString{}, sql.NullString{}); err != nil {
		return err
	}
	booking.Status = db.StatusCanceled
	s.calendar.dropWeek(ctx, booking.ProviderID, booking.StartsAt)

	provider, perr := s.providers.GetProviderByID(booking.ProviderID)
	subject, aerr := s.accounts.GetAccountByID(booking.SubjectID)
	if perr == nil && aerr == nil {
		s.notify(func(n Notifier) { n.BookingCanceled(booking, provider, subject) })
	}

	s.log.Infow("booking canceled", "booking_id", bookingID, "actor_id", actorID)
	return nil
}

// Rate records the subject's satisfaction note, once, after the
// appointment has taken place.
func (s *BookingService) Rate(bookingID, subjectID string, note int) error {
	if note < 0 || note > 5 {
		return apperr.ErrInvalidNote
	}

	booking, err := s.bookings.GetBookingByID(bookingID)
	if err != nil {
		return err
	}
	if booking.SubjectID != subjectID {
		return apperr.ErrForbidden
	}
	if booking.Status != db.StatusConfirmed {
		return apperr.ErrSlotConflict
	}
	if booking.StartsAt.After(s.nowFn().UTC()) {
		return apperr.ErrPastSlot
	}
	if booking.Rated() {
		return apperr.ErrAlreadyRated
	}

	return s.bookings.SetNote(bookingID, note)
}

// SlotHolder reveals who holds a reserved slot. Available to the calendar's
// provider and to the booking party; everyone else gets a generic denial.
func (s *BookingService) SlotHolder(providerID string, at time.Time, actorID string) (*entities.SlotHolder, error) {
	booking, err := s.bookings.GetActiveBookingAt(providerID, at.UTC())
	if err != nil {
		return nil, err
	}
	if actorID != providerID && actorID != booking.SubjectID {
		return nil, apperr.ErrForbidden
	}

	subject, err := s.accounts.GetAccountByID(booking.SubjectID)
	if err != nil {
		return nil, err
	}
	return &entities.SlotHolder{
		BookingID: booking.ID,
		SubjectID: subject.ID,
		Name:      subject.FirstName + " " + subject.LastName,
		Email:     subject.Email,
		StartsAt:  booking.StartsAt,
	}, nil
}

func (s *BookingService) notify(f func(Notifier)) {
	if s.notifier != nil {
		f(s.notifier)
	}
}
