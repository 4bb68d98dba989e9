package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"benevita/internal/db"
	"benevita/internal/entities"
	apperr "benevita/internal/errors"

	"go.uber.org/zap"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts.UTC()
}

// bookingFixture wires a BookingService to in-memory stores with a frozen
// clock. Tests move time by assigning fx.now.
type bookingFixture struct {
	now       time.Time
	bookings  *fakeBookingStore
	intervals *fakeUnavailabilityStore
	providers *fakeProviderStore
	accounts  *fakeAccountStore
	checkout  *fakeCheckout
	notifier  *fakeNotifier
	calendar  *CalendarService
	svc       *BookingService
}

func newBookingFixture(t *testing.T, now time.Time) *bookingFixture {
	t.Helper()

	fx := &bookingFixture{
		now:       now,
		bookings:  newFakeBookingStore(),
		intervals: newFakeUnavailabilityStore(),
		providers: newFakeProviderStore(
			&db.Provider{
				ID:              "prov-1",
				FirstName:       "Ana",
				LastName:        "Lopez",
				Email:           "ana@clinic.test",
				Service:         "nutrition",
				Intervention:    db.InterventionBoth,
				PriceCents:      6000,
				StripeAccountID: "acct_prov1",
			},
			&db.Provider{
				ID:           "prov-incall",
				FirstName:    "Bruno",
				LastName:     "Keller",
				Service:      "osteopathy",
				Intervention: db.AppointmentIncall,
				PriceCents:   8000,
			},
		),
		accounts: newFakeAccountStore(
			&db.Account{ID: "subj-1", Email: "subject@corp.test", Role: "subject", FirstName: "Mia", LastName: "Faure"},
			&db.Account{ID: "subj-2", Email: "other@corp.test", Role: "subject", FirstName: "Leo", LastName: "Marchand"},
		),
		checkout: &fakeCheckout{},
		notifier: &fakeNotifier{},
	}

	log := zap.NewNop().Sugar()
	fx.calendar = NewCalendarService(fx.bookings, fx.intervals, fx.providers, nil, log)
	fx.calendar.nowFn = func() time.Time { return fx.now }
	fx.svc = NewBookingService(fx.bookings, fx.providers, fx.accounts, fx.calendar, fx.checkout, fx.notifier, 50*time.Millisecond, log)
	fx.svc.nowFn = func() time.Time { return fx.now }
	return fx
}

func (fx *bookingFixture) reserve(t *testing.T, subjectID string, at time.Time) *entities.BookAppointmentResponse {
	t.Helper()
	resp, err := fx.svc.Reserve(context.Background(), subjectID, entities.BookAppointmentRequest{
		ProviderID:             "prov-1",
		AppointmentDatetimeUTC: at,
		AppointmentType:        db.AppointmentIncall,
	})
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	return resp
}

func TestReservePendingPaymentWithCheckout(t *testing.T) {
	now := mustTime(t, "2025-06-02T09:00:00Z")
	at := mustTime(t, "2025-06-03T10:00:00Z")
	fx := newBookingFixture(t, now)

	resp := fx.reserve(t, "subj-1", at)

	if resp.Status != string(db.StatusPendingPayment) {
		t.Fatalf("status = %s, want PENDING_PAYMENT", resp.Status)
	}
	if resp.CheckoutURL == "" || resp.CheckoutSessionID == "" {
		t.Fatalf("missing checkout handle: %+v", resp)
	}
	booking, err := fx.bookings.GetBookingByID(resp.BookingID)
	if err != nil {
		t.Fatalf("stored booking: %v", err)
	}
	if !booking.StripeSessionID.Valid || booking.StripeSessionID.String != resp.CheckoutSessionID {
		t.Fatalf("session not persisted: %+v", booking.StripeSessionID)
	}
	if booking.PriceCents != 6000 {
		t.Fatalf("price = %d, want provider price", booking.PriceCents)
	}
	if !booking.EndsAt.Equal(at.Add(30 * time.Minute)) {
		t.Fatalf("ends_at = %v", booking.EndsAt)
	}
	if len(fx.notifier.confirmed) != 0 {
		t.Fatalf("pending booking must not notify confirmation")
	}
}

func TestReserveSubsidizedConfirmsImmediately(t *testing.T) {
	now := mustTime(t, "2025-06-02T09:00:00Z")
	at := mustTime(t, "2025-06-03T14:30:00Z")
	fx := newBookingFixture(t, now)
	fx.bookings.quota["subj-1"] = 1

	resp := fx.reserve(t, "subj-1", at)

	if resp.Status != string(db.StatusConfirmed) {
		t.Fatalf("status = %s, want CONFIRMED", resp.Status)
	}
	if resp.CheckoutURL != "" || resp.CheckoutSessionID != "" {
		t.Fatalf("subsidized booking must not open checkout: %+v", resp)
	}
	if fx.checkout.calls != 0 {
		t.Fatalf("checkout called %d times", fx.checkout.calls)
	}
	booking, _ := fx.bookings.GetBookingByID(resp.BookingID)
	if booking.PriceCents != 0 {
		t.Fatalf("subsidized price = %d, want 0", booking.PriceCents)
	}
	if !booking.InvoiceReference.Valid {
		t.Fatalf("subsidized booking gets an invoice reference")
	}
	if len(fx.notifier.confirmed) != 1 {
		t.Fatalf("confirmed notifications = %d, want 1", len(fx.notifier.confirmed))
	}
}

func TestReserveRejectsBadSlots(t *testing.T) {
	now := mustTime(t, "2025-06-02T09:00:00Z")
	fx := newBookingFixture(t, now)

	tests := []struct {
		name string
		at   time.Time
	}{
		{"in the past", mustTime(t, "2025-05-30T11:00:00Z")},
		{"off grid minute", mustTime(t, "2025-06-03T10:15:00Z")},
		{"before opening", mustTime(t, "2025-06-03T09:30:00Z")},
		{"closing boundary", mustTime(t, "2025-06-03T19:00:00Z")},
		{"beyond horizon", mustTime(t, "2025-09-15T10:00:00Z")},
		{"rest day", mustTime(t, "2025-06-08T10:00:00Z")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.svc.Reserve(context.Background(), "subj-1", entities.BookAppointmentRequest{
				ProviderID:             "prov-1",
				AppointmentDatetimeUTC: tc.at,
				AppointmentType:        db.AppointmentIncall,
			})
			if !errors.Is(err, apperr.ErrPastSlot) {
				t.Fatalf("err = %v, want PastSlot", err)
			}
		})
	}
}

func TestReserveInterventionMismatch(t *testing.T) {
	now := mustTime(t, "2025-06-02T09:00:00Z")
	fx := newBookingFixture(t, now)

	_, err := fx.svc.Reserve(context.Background(), "subj-1", entities.BookAppointmentRequest{
		ProviderID:             "prov-incall",
		AppointmentDatetimeUTC: mustTime(t, "2025-06-03T10:00:00Z"),
		AppointmentType:        db.AppointmentOutcall,
	})
	if !errors.Is(err, apperr.ErrInvalidIntervention) {
		t.Fatalf("err = %v, want InvalidIntervention", err)
	}

	_, err = fx.svc.Reserve(context.Background(), "subj-1", entities.BookAppointmentRequest{
		ProviderID:             "prov-1",
		AppointmentDatetimeUTC: mustTime(t, "2025-06-03T10:00:00Z"),
		AppointmentType:        "video",
	})
	if !errors.Is(err, apperr.ErrInvalidIntervention) {
		t.Fatalf("err = %v, want InvalidIntervention for unknown type", err)
	}
}

func TestReserveUnknownProvider(t *testing.T) {
	fx := newBookingFixture(t, mustTime(t, "2025-06-02T09:00:00Z"))

	_, err := fx.svc.Reserve(context.Background(), "subj-1", entities.BookAppointmentRequest{
		ProviderID:             "nobody",
		AppointmentDatetimeUTC: mustTime(t, "2025-06-03T10:00:00Z"),
		AppointmentType:        db.AppointmentIncall,
	})
	if !errors.Is(err, apperr.ErrProviderNotFound) {
		t.Fatalf("err = %v, want ProviderNotFound", err)
	}
}

func TestReserveBlockedByUnavailability(t *testing.T) {
	now := mustTime(t, "2025-06-02T09:00:00Z")
	fx := newBookingFixture(t, now)
	fx.intervals.intervals["iv-1"] = &db.UnavailabilityInterval{
		ID:         "iv-1",
		ProviderID: "prov-1",
		BeginAt:    mustTime(t, "2025-06-03T10:00:00Z"),
		EndAt:      mustTime(t, "2025-06-03T12:00:00Z"),
	}

	_, err := fx.svc.Reserve(context.Background(), "subj-1", entities.BookAppointmentRequest{
		ProviderID:             "prov-1",
		AppointmentDatetimeUTC: mustTime(t, "2025-06-03T11:30:00Z"),
		AppointmentType:        db.AppointmentIncall,
	})
	if !errors.Is(err, apperr.ErrSlotConflict) {
		t.Fatalf("err = %v, want SlotConflict", err)
	}

	// The interval end is exclusive: the 12:00 slot is bookable.
	fx.reserve(t, "subj-1", mustTime(t, "2025-06-03T12:00:00Z"))
}

func TestReserveConcurrentSingleWinner(t *testing.T) {
	now := mustTime(t, "2025-06-02T09:00:00Z")
	at := mustTime(t, "2025-06-04T16:00:00Z")
	fx := newBookingFixture(t, now)

	const racers = 16
	errs := make([]error, racers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = fx.svc.Reserve(context.Background(), "subj-1", entities.BookAppointmentRequest{
				ProviderID:             "prov-1",
				AppointmentDatetimeUTC: at,
				AppointmentType:        db.AppointmentIncall,
			})
		}(i)
	}
	close(start)
	wg.Wait()

	winners := 0
	for i, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, apperr.ErrSlotConflict):
		default:
			t.Fatalf("racer %d: unexpected err %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
}

func TestCancelReleasesSlotForRebooking(t *testing.T) {
	now := mustTime(t, "2025-06-02T09:00:00Z")
	at := mustTime(t, "2025-06-05T11:00:00Z")
	fx := newBookingFixture(t, now)

	first := fx.reserve(t, "subj-1", at)
	if err := fx.svc.Cancel(context.Background(), first.BookingID, "subj-1"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if len(fx.notifier.canceled) != 1 {
		t.Fatalf("canceled notifications = %d, want 1", len(fx.notifier.canceled))
	}

	second := fx.reserve(t, "subj-2", at)
	if second.BookingID == first.BookingID {
		t.Fatalf("rebooking reused booking id")
	}
}

func TestCancelAuthorizationAndState(t *testing.T) {
	now := mustTime(t, "2025-06-02T09:00:00Z")
	at := mustTime(t, "2025-06-05T11:00:00Z")
	fx := newBookingFixture(t, now)
	resp := fx.reserve(t, "subj-1", at)

	if err := fx.svc.Cancel(context.Background(), resp.BookingID, "subj-2"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("stranger cancel err = %v, want Forbidden", err)
	}
	if err := fx.svc.Cancel(context.Background(), "missing", "subj-1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("missing booking err = %v, want NotFound", err)
	}

	// The provider may cancel too.
	if err := fx.svc.Cancel(context.Background(), resp.BookingID, "prov-1"); err != nil {
		t.Fatalf("provider cancel: %v", err)
	}
	// Canceling a terminal booking is a state conflict, not a silent no-op.
	if err := fx.svc.Cancel(context.Background(), resp.BookingID, "subj-1"); !errors.Is(err, apperr.ErrSlotConflict) {
		t.Fatalf("double cancel err = %v, want SlotConflict", err)
	}
}

func TestCancelPastConfirmedRejected(t *testing.T) {
	now := mustTime(t, "2025-06-02T09:00:00Z")
	at := mustTime(t, "2025-06-03T10:00:00Z")
	fx := newBookingFixture(t, now)
	fx.bookings.quota["subj-1"] = 1
	resp := fx.reserve(t, "subj-1", at)

	fx.now = at.Add(2 * time.Hour)
	if err := fx.svc.Cancel(context.Background(), resp.BookingID, "subj-1"); !errors.Is(err, apperr.ErrPastSlot) {
		t.Fatalf("err = %v, want PastSlot", err)
	}
}

func TestCancelExpiredPendingAllowed(t *testing.T) {
	now := mustTime(t, "2025-06-02T09:00:00Z")
	at := mustTime(t, "2025-06-03T10:00:00Z")
	fx := newBookingFixture(t, now)
	resp := fx.reserve(t, "subj-1", at)

	// A pending booking whose slot already passed can still be cleaned up.
	fx.now = at.Add(2 * time.Hour)
	if err := fx.svc.Cancel(context.Background(), resp.BookingID, "subj-1"); err != nil {
		t.Fatalf("Cancel expired pending: %v", err)
	}
}

func TestCheckoutTimeoutLeavesBookingPending(t *testing.T) {
	now := mustTime(t, "2025-06-02T09:00:00Z")
	at := mustTime(t, "2025-06-03T10:00:00Z")
	fx := newBookingFixture(t, now)
	fx.checkout.hang = true

	_, err := fx.svc.Reserve(context.Background(), "subj-1", entities.BookAppointmentRequest{
		ProviderID:             "prov-1",
		AppointmentDatetimeUTC: at,
		AppointmentType:        db.AppointmentIncall,
	})
	if !errors.Is(err, apperr.ErrPaymentTimeout) {
		t.Fatalf("err = %v, want PaymentTimeout", err)
	}

	// The slot stays held; the reconciliation sweep releases it later.
	booking, gerr := fx.bookings.GetActiveBookingAt("prov-1", at)
	if gerr != nil {
		t.Fatalf("booking lookup: %v", gerr)
	}
	if booking.Status != db.StatusPendingPayment {
		t.Fatalf("status = %s, want PENDING_PAYMENT", booking.Status)
	}
}

func TestCheckoutRetriesProcessorFailureOnce(t *testing.T) {
	now := mustTime(t, "2025-06-02T09:00:00Z")
	fx := newBookingFixture(t, now)
	fx.checkout.failures = 1

	resp := fx.reserve(t, "subj-1", mustTime(t, "2025-06-03T10:00:00Z"))
	if fx.checkout.calls != 2 {
		t.Fatalf("checkout calls = %d, want 2", fx.checkout.calls)
	}
	if resp.CheckoutSessionID == "" {
		t.Fatalf("retry should have produced a session")
	}

	fx.checkout.failures = 2
	_, err := fx.svc.Reserve(context.Background(), "subj-1", entities.BookAppointmentRequest{
		ProviderID:             "prov-1",
		AppointmentDatetimeUTC: mustTime(t, "2025-06-03T10:30:00Z"),
		AppointmentType:        db.AppointmentIncall,
	})
	if !errors.Is(err, apperr.ErrPaymentProcessorError) {
		t.Fatalf("err = %v, want PaymentProcessorError", err)
	}
	if fx.checkout.calls != 4 {
		t.Fatalf("checkout calls = %d, want 4 after one retry", fx.checkout.calls)
	}
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	now := mustTime(t, "2025-06-02T09:00:00Z")
	fx := newBookingFixture(t, now)
	resp := fx.reserve(t, "subj-1", mustTime(t, "2025-06-03T10:00:00Z"))

	first, err := fx.svc.ConfirmPayment(context.Background(), resp.CheckoutSessionID, "pi_123")
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if first.Status != db.StatusConfirmed {
		t.Fatalf("status = %s, want CONFIRMED", first.Status)
	}
	if !first.InvoiceReference.Valid {
		t.Fatalf("confirmation must assign an invoice reference")
	}

	second, err := fx.svc.ConfirmPayment(context.Background(), resp.CheckoutSessionID, "pi_123")
	if err != nil {
		t.Fatalf("replayed ConfirmPayment: %v", err)
	}
	if second.Status != db.StatusConfirmed {
		t.Fatalf("replay status = %s", second.Status)
	}
	if len(fx.notifier.confirmed) != 1 {
		t.Fatalf("confirmed notifications = %d, want 1", len(fx.notifier.confirmed))
	}
}

// cancelBehindLookup mimics a cancellation committing between the payment
// callback's read of the booking and its status update.
type cancelBehindLookup struct {
	*fakeBookingStore
	once sync.Once
}

func (s *cancelBehindLookup) GetBookingByStripeSessionID(sessionID string) (*db.Booking, error) {
	b, err := s.fakeBookingStore.GetBookingByStripeSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	s.once.Do(func() {
		s.fakeBookingStore.UpdateBookingStatus(b.ID, b.Status, db.StatusCanceled, sql.NullString{}, sql.NullString{})
	})
	return b, nil
}

func TestConfirmPaymentLosesRaceWithCancellation(t *testing.T) {
	now := mustTime(t, "2025-06-02T09:00:00Z")
	fx := newBookingFixture(t, now)
	resp := fx.reserve(t, "subj-1", mustTime(t, "2025-06-03T10:00:00Z"))

	racing := &cancelBehindLookup{fakeBookingStore: fx.bookings}
	svc := NewBookingService(racing, fx.providers, fx.accounts, fx.calendar, fx.checkout, fx.notifier, 50*time.Millisecond, zap.NewNop().Sugar())
	svc.nowFn = func() time.Time { return fx.now }

	_, err := svc.ConfirmPayment(context.Background(), resp.CheckoutSessionID, "pi_late")
	if !errors.Is(err, apperr.ErrSlotConflict) {
		t.Fatalf("err = %v, want SlotConflict", err)
	}
	booking, gerr := fx.bookings.GetBookingByID(resp.BookingID)
	if gerr != nil {
		t.Fatalf("booking lookup: %v", gerr)
	}
	if booking.Status != db.StatusCanceled {
		t.Fatalf("status = %s, a canceled booking must stay canceled", booking.Status)
	}
	if len(fx.notifier.confirmed) != 0 {
		t.Fatalf("no confirmation may go out for a canceled booking")
	}
}

func TestConcurrentSubsidizedReservesConsumeQuotaOnce(t *testing.T) {
	now := mustTime(t, "2025-06-02T09:00:00Z")
	fx := newBookingFixture(t, now)
	fx.bookings.quota["subj-1"] = 1

	slots := []time.Time{
		mustTime(t, "2025-06-03T10:00:00Z"),
		mustTime(t, "2025-06-03T10:30:00Z"),
	}
	resps := make([]*entities.BookAppointmentResponse, len(slots))
	errs := make([]error, len(slots))
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i, at := range slots {
		wg.Add(1)
		go func(i int, at time.Time) {
			defer wg.Done()
			<-start
			resps[i], errs[i] = fx.svc.Reserve(context.Background(), "subj-1", entities.BookAppointmentRequest{
				ProviderID:             "prov-1",
				AppointmentDatetimeUTC: at,
				AppointmentType:        db.AppointmentIncall,
			})
		}(i, at)
	}
	close(start)
	wg.Wait()

	confirmed, pending := 0, 0
	for i := range resps {
		if errs[i] != nil {
			t.Fatalf("reserve %d: %v", i, errs[i])
		}
		switch resps[i].Status {
		case string(db.StatusConfirmed):
			confirmed++
		case string(db.StatusPendingPayment):
			pending++
		}
	}
	if confirmed != 1 || pending != 1 {
		t.Fatalf("confirmed=%d pending=%d, the single covered consultation must be consumed once", confirmed, pending)
	}
}

func TestConfirmPaymentAfterCancellation(t *testing.T) {
	now := mustTime(t, "2025-06-02T09:00:00Z")
	fx := newBookingFixture(t, now)
	resp := fx.reserve(t, "subj-1", mustTime(t, "2025-06-03T10:00:00Z"))

	if err := fx.svc.Cancel(context.Background(), resp.BookingID, "subj-1"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	_, err := fx.svc.ConfirmPayment(context.Background(), resp.CheckoutSessionID, "pi_late")
	if !errors.Is(err, apperr.ErrSlotConflict) {
		t.Fatalf("err = %v, want SlotConflict", err)
	}

	_, err = fx.svc.ConfirmPayment(context.Background(), "cs_unknown", "pi_x")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown session err = %v, want NotFound", err)
	}
}

func TestRate(t *testing.T) {
	now := mustTime(t, "2025-06-02T09:00:00Z")
	at := mustTime(t, "2025-06-03T10:00:00Z")
	fx := newBookingFixture(t, now)
	fx.bookings.quota["subj-1"] = 1
	resp := fx.reserve(t, "subj-1", at)

	if err := fx.svc.Rate(resp.BookingID, "subj-1", -1); !errors.Is(err, apperr.ErrInvalidNote) {
		t.Fatalf("note -1 err = %v, want InvalidNote", err)
	}
	if err := fx.svc.Rate(resp.BookingID, "subj-1", 6); !errors.Is(err, apperr.ErrInvalidNote) {
		t.Fatalf("note 6 err = %v, want InvalidNote", err)
	}
	if err := fx.svc.Rate(resp.BookingID, "subj-1", 5); !errors.Is(err, apperr.ErrPastSlot) {
		t.Fatalf("rating before the appointment err = %v, want PastSlot", err)
	}

	fx.now = at.Add(time.Hour)
	if err := fx.svc.Rate(resp.BookingID, "subj-2", 5); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("foreign rating err = %v, want Forbidden", err)
	}
	if err := fx.svc.Rate(resp.BookingID, "subj-1", 0); err != nil {
		t.Fatalf("note 0: %v", err)
	}
	if err := fx.svc.Rate(resp.BookingID, "subj-1", 5); !errors.Is(err, apperr.ErrAlreadyRated) {
		t.Fatalf("second rating err = %v, want AlreadyRated", err)
	}

	booking, _ := fx.bookings.GetBookingByID(resp.BookingID)
	if !booking.Note.Valid || booking.Note.Int64 != 0 {
		t.Fatalf("stored note = %+v, want 0", booking.Note)
	}
}

func TestRateRequiresConfirmedBooking(t *testing.T) {
	now := mustTime(t, "2025-06-02T09:00:00Z")
	at := mustTime(t, "2025-06-03T10:00:00Z")
	fx := newBookingFixture(t, now)
	resp := fx.reserve(t, "subj-1", at)

	fx.now = at.Add(time.Hour)
	if err := fx.svc.Rate(resp.BookingID, "subj-1", 4); !errors.Is(err, apperr.ErrSlotConflict) {
		t.Fatalf("rating pending booking err = %v, want SlotConflict", err)
	}
}

func TestSlotHolderVisibility(t *testing.T) {
	now := mustTime(t, "2025-06-02T09:00:00Z")
	at := mustTime(t, "2025-06-03T10:00:00Z")
	fx := newBookingFixture(t, now)
	resp := fx.reserve(t, "subj-1", at)

	holder, err := fx.svc.SlotHolder("prov-1", at, "prov-1")
	if err != nil {
		t.Fatalf("provider lookup: %v", err)
	}
	if holder.BookingID != resp.BookingID || holder.SubjectID != "subj-1" {
		t.Fatalf("holder = %+v", holder)
	}
	if holder.Name != "Mia Faure" {
		t.Fatalf("holder name = %q", holder.Name)
	}

	if _, err := fx.svc.SlotHolder("prov-1", at, "subj-1"); err != nil {
		t.Fatalf("subject lookup: %v", err)
	}
	if _, err := fx.svc.SlotHolder("prov-1", at, "subj-2"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("stranger err = %v, want Forbidden", err)
	}
	if _, err := fx.svc.SlotHolder("prov-1", at.Add(30*time.Minute), "prov-1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("empty slot err = %v, want NotFound", err)
	}
}
