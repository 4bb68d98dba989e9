package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"benevita/internal/db"
	apperr "benevita/internal/errors"
)

type AccountRepository struct {
	DB *sql.DB
}

func NewAccountRepository(database *sql.DB) *AccountRepository {
	return &AccountRepository{DB: database}
}

const accountColumns = `id, email, password_hash, role, first_name, last_name, phone, company_id, created_at`

func (r *AccountRepository) GetAccountByEmail(email string) (*db.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.scanOne(r.DB.QueryRow(query, email))
}

func (r *AccountRepository) GetAccountByID(id string) (*db.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanOne(r.DB.QueryRow(query, id))
}

func (r *AccountRepository) scanOne(row *sql.Row) (*db.Account, error) {
	var a db.Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.FirstName,
		&a.LastName, &a.Phone, &a.CompanyID, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("error querying account: %w", err)
	}
	return &a, nil
}
