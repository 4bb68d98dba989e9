package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"benevita/internal/db"
	apperr "benevita/internal/errors"
)

type ProviderRepository struct {
	DB *sql.DB
}

func NewProviderRepository(database *sql.DB) *ProviderRepository {
	return &ProviderRepository{DB: database}
}

const providerColumns = `id, first_name, last_name, email, phone, service, intervention,
	price_cents, stripe_account_id, created_at`

func (r *ProviderRepository) GetProviderByID(id string) (*db.Provider, error) {
	var p db.Provider
	query := `SELECT ` + providerColumns + ` FROM providers WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.Service,
		&p.Intervention, &p.PriceCents, &p.StripeAccountID, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrProviderNotFound
		}
		return nil, fmt.Errorf("error querying provider %s: %w", id, err)
	}
	return &p, nil
}

// ListProviders filters the provider directory by service specialty and
// intervention mode; empty filters match everything.
func (r *ProviderRepository) ListProviders(service, intervention string) ([]db.Provider, error) {
	query := `
		SELECT ` + providerColumns + `
		FROM providers
		WHERE ($1 = '' OR service = $1)
		  AND ($2 = '' OR intervention = $2 OR intervention = 'both')
		ORDER BY last_name, first_name`
	rows, err := r.DB.Query(query, service, intervention)
	if err != nil {
		return nil, fmt.Errorf("error listing providers: %w", err)
	}
	defer rows.Close()

	var providers []db.Provider
	for rows.Next() {
		var p db.Provider
		if err := rows.Scan(
			&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.Service,
			&p.Intervention, &p.PriceCents, &p.StripeAccountID, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning provider: %w", err)
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}
