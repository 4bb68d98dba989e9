package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"benevita/internal/db"
	apperr "benevita/internal/errors"
)

type UnavailabilityRepository struct {
	DB *sql.DB
}

func NewUnavailabilityRepository(database *sql.DB) *UnavailabilityRepository {
	return &UnavailabilityRepository{DB: database}
}

func (r *UnavailabilityRepository) CreateInterval(iv *db.UnavailabilityInterval) error {
	query := `
		INSERT INTO unavailability_intervals (id, provider_id, begin_at, end_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.DB.Exec(query, iv.ID, iv.ProviderID, iv.BeginAt, iv.EndAt, iv.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting unavailability interval: %w", err)
	}
	return nil
}

func (r *UnavailabilityRepository) GetIntervalByID(id string) (*db.UnavailabilityInterval, error) {
	var iv db.UnavailabilityInterval
	query := `SELECT id, provider_id, begin_at, end_at, created_at FROM unavailability_intervals WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(&iv.ID, &iv.ProviderID, &iv.BeginAt, &iv.EndAt, &iv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("error querying unavailability interval %s: %w", id, err)
	}
	iv.BeginAt = iv.BeginAt.UTC()
	iv.EndAt = iv.EndAt.UTC()
	return &iv, nil
}

func (r *UnavailabilityRepository) DeleteInterval(id string) error {
	res, err := r.DB.Exec(`DELETE FROM unavailability_intervals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting unavailability interval %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ListOverlapping returns the provider's intervals overlapping [from, to),
// ordered by begin ascending. Overlapping rows are returned as stored, never
// merged.
func (r *UnavailabilityRepository) ListOverlapping(providerID string, from, to time.Time) ([]db.UnavailabilityInterval, error) {
	query := `
		SELECT id, provider_id, begin_at, end_at, created_at
		FROM unavailability_intervals
		WHERE provider_id = $1 AND begin_at < $3 AND end_at > $2
		ORDER BY begin_at`
	rows, err := r.DB.Query(query, providerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying unavailability intervals: %w", err)
	}
	defer rows.Close()

	var intervals []db.UnavailabilityInterval
	for rows.Next() {
		var iv db.UnavailabilityInterval
		if err := rows.Scan(&iv.ID, &iv.ProviderID, &iv.BeginAt, &iv.EndAt, &iv.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning unavailability interval: %w", err)
		}
		iv.BeginAt = iv.BeginAt.UTC()
		iv.EndAt = iv.EndAt.UTC()
		intervals = append(intervals, iv)
	}
	return intervals, rows.Err()
}
