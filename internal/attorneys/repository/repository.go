// Package repository provides database access for the attorney directory.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"legalintake_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Attorney is a directory entry used by the manual assignment flow.
type Attorney struct {
	ID        int64
	Name      string
	Email     string
	Phone     *string
	Specialty *string
	CreatedAt time.Time
}

// Repository provides database operations for attorneys.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new attorneys repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const attorneyColumns = `id, name, email, phone, specialty, created_at`

// List returns all attorneys ordered by name.
func (r *Repository) List(ctx context.Context) ([]Attorney, error) {
	query := `SELECT ` + attorneyColumns + ` FROM attorneys ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list attorneys: %w", err)
	}
	defer rows.Close()

	attorneys := make([]Attorney, 0)
	for rows.Next() {
		var a Attorney
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.Specialty, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attorney: %w", err)
		}
		attorneys = append(attorneys, a)
	}
	return attorneys, rows.Err()
}

// GetByID fetches a single attorney.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Attorney, error) {
	query := `SELECT ` + attorneyColumns + ` FROM attorneys WHERE id = $1`

	var a Attorney
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.Specialty, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("attorney not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get attorney: %w", err)
	}
	return &a, nil
}

// Create inserts a new attorney.
func (r *Repository) Create(ctx context.Context, attorney Attorney) (*Attorney, error) {
	query := `
		INSERT INTO attorneys (name, email, phone, specialty, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING ` + attorneyColumns

	var a Attorney
	err := r.pool.QueryRow(ctx, query,
		attorney.Name, attorney.Email, attorney.Phone, attorney.Specialty,
	).Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.Specialty, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create attorney: %w", err)
	}
	return &a, nil
}
