package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"benevita/internal/db"
	apperr "benevita/internal/errors"

	"github.com/lib/pq"
)

type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(database *sql.DB) *BookingRepository {
	return &BookingRepository{DB: database}
}

const bookingColumns = `id, provider_id, subject_id, starts_at, ends_at, appointment_type,
	status, price_cents, note, invoice_reference, stripe_session_id, payment_reference,
	created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*db.Booking, error) {
	var b db.Booking
	err := row.Scan(
		&b.ID, &b.ProviderID, &b.SubjectID, &b.StartsAt, &b.EndsAt, &b.AppointmentType,
		&b.Status, &b.PriceCents, &b.Note, &b.InvoiceReference, &b.StripeSessionID,
		&b.PaymentReference, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.StartsAt = b.StartsAt.UTC()
	b.EndsAt = b.EndsAt.UTC()
	return &b, nil
}

const insertBookingQuery = `
	INSERT INTO bookings
	(id, provider_id, subject_id, starts_at, ends_at, appointment_type, status,
	 price_cents, note, invoice_reference, stripe_session_id, payment_reference,
	 created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertBooking(ex execer, b *db.Booking) error {
	_, err := ex.Exec(insertBookingQuery,
		b.ID, b.ProviderID, b.SubjectID, b.StartsAt, b.EndsAt, b.AppointmentType,
		b.Status, b.PriceCents, b.Note, b.InvoiceReference, b.StripeSessionID,
		b.PaymentReference, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperr.ErrSlotConflict
		}
		return fmt.Errorf("error inserting booking: %w", err)
	}
	return nil
}

// CreateBooking inserts the booking. A partial unique index on
// (provider_id, starts_at) WHERE status <> 'CANCELED' is the atomicity
// boundary: when two parties race for the same slot, the loser gets a
// unique violation, surfaced as a slot conflict.
func (r *BookingRepository) CreateBooking(b *db.Booking) error {
	return insertBooking(r.DB, b)
}

// CreateSubsidizedBooking consumes one of the subject's subsidized
// consultations for the month and inserts the booking, in one transaction.
// The row lock on the subject's account serializes concurrent reserves, so
// the last covered consultation cannot be consumed twice. Returns false
// without inserting when the plan no longer covers one.
func (r *BookingRepository) CreateSubsidizedBooking(b *db.Booking) (bool, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return false, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var quota int
	err = tx.QueryRow(`
		SELECT p.monthly_quota
		FROM company_plans p
		JOIN accounts a ON a.company_id = p.company_id
		WHERE a.id = $1 AND p.active
		FOR UPDATE OF a`, b.SubjectID).Scan(&quota)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("error querying company plan: %w", err)
	}

	var used int
	err = tx.QueryRow(`
		SELECT COUNT(*)
		FROM bookings
		WHERE subject_id = $1
		  AND status <> 'CANCELED'
		  AND price_cents = 0
		  AND created_at >= date_trunc('month', NOW())`, b.SubjectID).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("error counting subsidized bookings: %w", err)
	}
	if used >= quota {
		return false, nil
	}

	if err := insertBooking(tx, b); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("error committing subsidized booking: %w", err)
	}
	return true, nil
}

func (r *BookingRepository) GetBookingByID(id string) (*db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.DB.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("error querying booking %s: %w", id, err)
	}
	return b, nil
}

func (r *BookingRepository) GetBookingByStripeSessionID(sessionID string) (*db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE stripe_session_id = $1`
	b, err := scanBooking(r.DB.QueryRow(query, sessionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("error querying booking by session %s: %w", sessionID, err)
	}
	return b, nil
}

// UpdateBookingStatus transitions a booking from the status the caller
// observed, recording the payment reference and invoice artifact when the
// transition is a confirmation. The status guard keeps the transition
// conditional: zero rows means another transition committed in between
// (callers load the booking first, so the row exists) and the caller must
// re-read before deciding.
func (r *BookingRepository) UpdateBookingStatus(id string, from, to db.BookingStatus, paymentRef, invoiceRef sql.NullString) error {
	query := `
		UPDATE bookings
		SET status = $3,
		    payment_reference = COALESCE($4, payment_reference),
		    invoice_reference = COALESCE($5, invoice_reference),
		    updated_at = NOW()
		WHERE id = $1 AND status = $2`
	res, err := r.DB.Exec(query, id, from, to, paymentRef, invoiceRef)
	if err != nil {
		return fmt.Errorf("error updating booking %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrSlotConflict
	}
	return nil
}

func (r *BookingRepository) SetStripeSession(id, sessionID string) error {
	query := `UPDATE bookings SET stripe_session_id = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.DB.Exec(query, id, sessionID)
	if err != nil {
		return fmt.Errorf("error attaching session to booking %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) SetNote(id string, note int) error {
	query := `UPDATE bookings SET note = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.DB.Exec(query, id, note)
	if err != nil {
		return fmt.Errorf("error rating booking %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ActiveBookingsInRange returns non-canceled bookings of the provider that
// overlap [from, to), ordered by start.
func (r *BookingRepository) ActiveBookingsInRange(providerID string, from, to time.Time) ([]db.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE provider_id = $1
		  AND status <> 'CANCELED'
		  AND starts_at < $3
		  AND ends_at > $2
		ORDER BY starts_at`
	rows, err := r.DB.Query(query, providerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying bookings in range: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// GetActiveBookingAt returns the non-canceled booking occupying the exact
// slot, if any.
func (r *BookingRepository) GetActiveBookingAt(providerID string, at time.Time) (*db.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE provider_id = $1 AND starts_at = $2 AND status <> 'CANCELED'`
	b, err := scanBooking(r.DB.QueryRow(query, providerID, at))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("error querying booking at %v: %w", at, err)
	}
	return b, nil
}

func (r *BookingRepository) ListBookingsForSubject(subjectID string) ([]db.Booking, error) {
	return r.listBookings(`subject_id`, subjectID)
}

func (r *BookingRepository) ListBookingsForProvider(providerID string) ([]db.Booking, error) {
	return r.listBookings(`provider_id`, providerID)
}

func (r *BookingRepository) listBookings(column, id string) ([]db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + column + ` = $1 ORDER BY starts_at DESC`
	rows, err := r.DB.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
