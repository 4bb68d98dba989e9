package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(database *sql.DB) *JobRepository {
	return &JobRepository{DB: database}
}

// StalePendingBookingIDs returns bookings still waiting for a payment
// callback that were created before the cutoff.
func (r *JobRepository) StalePendingBookingIDs(before time.Time) ([]string, error) {
	query := `SELECT id FROM bookings WHERE status = 'PENDING_PAYMENT' AND created_at < $1`
	rows, err := r.DB.Query(query, before)
	if err != nil {
		return nil, fmt.Errorf("error querying stale pending bookings: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning booking ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

// CancelBookings transitions the bookings to CANCELED, releasing their
// slots. Guarded on PENDING_PAYMENT so a payment callback racing with the
// sweep wins.
func (r *JobRepository) CancelBookings(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `
		UPDATE bookings SET status = 'CANCELED', updated_at = NOW()
		WHERE id = ANY($1) AND status = 'PENDING_PAYMENT'`
	result, err := r.DB.Exec(query, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("error canceling stale bookings: %w", err)
	}
	return result.RowsAffected()
}
