package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"benevita/internal/db"
	apperr "benevita/internal/errors"
)

// fakeBookingStore mimics the bookings table, including the partial unique
// index on (provider_id, starts_at) for non-canceled rows. The mutex makes
// CreateBooking the same check-and-insert atom the database provides.
type fakeBookingStore struct {
	mu       sync.Mutex
	bookings map[string]*db.Booking
	quota    map[string]int
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{
		bookings: make(map[string]*db.Booking),
		quota:    make(map[string]int),
	}
}

func (f *fakeBookingStore) CreateBooking(b *db.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createLocked(b)
}

func (f *fakeBookingStore) createLocked(b *db.Booking) error {
	for _, existing := range f.bookings {
		if existing.ProviderID == b.ProviderID &&
			existing.StartsAt.Equal(b.StartsAt) &&
			existing.Status != db.StatusCanceled {
			return apperr.ErrSlotConflict
		}
	}
	clone := *b
	f.bookings[b.ID] = &clone
	return nil
}

// CreateSubsidizedBooking mirrors the transactional quota consumption: the
// check and the insert happen under one lock.
func (f *fakeBookingStore) CreateSubsidizedBooking(b *db.Booking) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	quota := f.quota[b.SubjectID]
	if quota <= 0 {
		return false, nil
	}
	used := 0
	for _, existing := range f.bookings {
		if existing.SubjectID == b.SubjectID &&
			existing.Status != db.StatusCanceled &&
			existing.PriceCents == 0 {
			used++
		}
	}
	if used >= quota {
		return false, nil
	}
	if err := f.createLocked(b); err != nil {
		return false, err
	}
	return true, nil
}

func (f *fakeBookingStore) GetBookingByID(id string) (*db.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBookingStore) GetBookingByStripeSessionID(sessionID string) (*db.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.StripeSessionID.Valid && b.StripeSessionID.String == sessionID {
			clone := *b
			return &clone, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeBookingStore) UpdateBookingStatus(id string, from, to db.BookingStatus, paymentRef, invoiceRef sql.NullString) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Status != from {
		return apperr.ErrSlotConflict
	}
	b.Status = to
	if paymentRef.Valid {
		b.PaymentReference = paymentRef
	}
	if invoiceRef.Valid {
		b.InvoiceReference = invoiceRef
	}
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeBookingStore) SetStripeSession(id, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return apperr.ErrNotFound
	}
	b.StripeSessionID = sql.NullString{String: sessionID, Valid: true}
	return nil
}

func (f *fakeBookingStore) SetNote(id string, note int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return apperr.ErrNotFound
	}
	b.Note = sql.NullInt64{Int64: int64(note), Valid: true}
	return nil
}

func (f *fakeBookingStore) ActiveBookingsInRange(providerID string, from, to time.Time) ([]db.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db.Booking
	for _, b := range f.bookings {
		if b.ProviderID == providerID && b.Status != db.StatusCanceled &&
			b.StartsAt.Before(to) && b.EndsAt.After(from) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) GetActiveBookingAt(providerID string, at time.Time) (*db.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ProviderID == providerID && b.StartsAt.Equal(at) && b.Status != db.StatusCanceled {
			clone := *b
			return &clone, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeBookingStore) ListBookingsForSubject(subjectID string) ([]db.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db.Booking
	for _, b := range f.bookings {
		if b.SubjectID == subjectID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) ListBookingsForProvider(providerID string) ([]db.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db.Booking
	for _, b := range f.bookings {
		if b.ProviderID == providerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

type fakeUnavailabilityStore struct {
	mu        sync.Mutex
	intervals map[string]*db.UnavailabilityInterval
}

func newFakeUnavailabilityStore() *fakeUnavailabilityStore {
	return &fakeUnavailabilityStore{intervals: make(map[string]*db.UnavailabilityInterval)}
}

func (f *fakeUnavailabilityStore) CreateInterval(iv *db.UnavailabilityInterval) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *iv
	f.intervals[iv.ID] = &clone
	return nil
}

func (f *fakeUnavailabilityStore) GetIntervalByID(id string) (*db.UnavailabilityInterval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	iv, ok := f.intervals[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	clone := *iv
	return &clone, nil
}

func (f *fakeUnavailabilityStore) DeleteInterval(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.intervals[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(f.intervals, id)
	return nil
}

func (f *fakeUnavailabilityStore) ListOverlapping(providerID string, from, to time.Time) ([]db.UnavailabilityInterval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db.UnavailabilityInterval
	for _, iv := range f.intervals {
		if iv.ProviderID == providerID && iv.BeginAt.Before(to) && iv.EndAt.After(from) {
			out = append(out, *iv)
		}
	}
	return out, nil
}

type fakeProviderStore struct {
	providers map[string]*db.Provider
}

func newFakeProviderStore(providers ...*db.Provider) *fakeProviderStore {
	f := &fakeProviderStore{providers: make(map[string]*db.Provider)}
	for _, p := range providers {
		f.providers[p.ID] = p
	}
	return f
}

func (f *fakeProviderStore) GetProviderByID(id string) (*db.Provider, error) {
	p, ok := f.providers[id]
	if !ok {
		return nil, apperr.ErrProviderNotFound
	}
	return p, nil
}

func (f *fakeProviderStore) ListProviders(service, intervention string) ([]db.Provider, error) {
	var out []db.Provider
	for _, p := range f.providers {
		out = append(out, *p)
	}
	return out, nil
}

type fakeAccountStore struct {
	accounts map[string]*db.Account
}

func newFakeAccountStore(accounts ...*db.Account) *fakeAccountStore {
	f := &fakeAccountStore{accounts: make(map[string]*db.Account)}
	for _, a := range accounts {
		f.accounts[a.ID] = a
	}
	return f
}

func (f *fakeAccountStore) GetAccountByEmail(email string) (*db.Account, error) {
	for _, a := range f.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeAccountStore) GetAccountByID(id string) (*db.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return a, nil
}

// fakeCheckout counts calls and can be scripted to fail or hang past the
// caller's deadline.
type fakeCheckout struct {
	mu       sync.Mutex
	calls    int
	failures int
	hang     bool
}

func (f *fakeCheckout) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (string, string, error) {
	f.mu.Lock()
	f.calls++
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	hang := f.hang
	f.mu.Unlock()

	if hang {
		<-ctx.Done()
		return "", "", ctx.Err()
	}
	if fail {
		return "", "", errors.New("processor unavailable")
	}
	return "https://checkout.test/" + p.BookingID, "cs_" + p.BookingID, nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	confirmed []string
	canceled  []string
}

func (f *fakeNotifier) BookingConfirmed(b *db.Booking, _ *db.Provider, _ *db.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed = append(f.confirmed, b.ID)
}

func (f *fakeNotifier) BookingCanceled(b *db.Booking, _ *db.Provider, _ *db.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canceled = append(f.canceled, b.ID)
}

type fakeInvoiceStore struct {
	present map[string]bool
}

func (f *fakeInvoiceStore) Exists(reference string) bool {
	return f.present[reference]
}

type fakeJobStore struct {
	stale     []string
	canceled  []string
	gotBefore time.Time
}

func (f *fakeJobStore) StalePendingBookingIDs(before time.Time) ([]string, error) {
	f.gotBefore = before
	return f.stale, nil
}

func (f *fakeJobStore) CancelBookings(ids []string) (int64, error) {
	f.canceled = append(f.canceled, ids...)
	return int64(len(ids)), nil
}
