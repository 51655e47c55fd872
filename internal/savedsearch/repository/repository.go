// Package repository provides PostgreSQL persistence for saved searches.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rental_portal_backend/platform/apperr"
)

// SavedSearch is a stored listing filter a user wants alerts for.
type SavedSearch struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       string    `json:"ownerId"`
	Name          string    `json:"name"`
	City          string    `json:"city,omitempty"`
	MaxPriceCents *int64    `json:"maxPriceCents,omitempty"`
	MinBedrooms   *int      `json:"minBedrooms,omitempty"`
	PetsRequired  bool      `json:"petsRequired"`
	Notify        bool      `json:"notify"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

const searchColumns = `id, owner_id, name, city, max_price_cents, min_bedrooms, pets_required, notify, created_at, updated_at`

const maxSearchesPerOwner = 20

// Repository persists saved searches in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new saved searches repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a saved search, enforcing the per-owner limit.
func (r *Repository) Create(ctx context.Context, s SavedSearch) (SavedSearch, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM saved_searches WHERE owner_id = $1`, s.OwnerID).Scan(&count); err != nil {
		return SavedSearch{}, fmt.Errorf("count saved searches: %w", err)
	}
	if count >= maxSearchesPerOwner {
		return SavedSearch{}, apperr.Validation("saved search limit reached")
	}

	query := `
		INSERT INTO saved_searches (owner_id, name, city, max_price_cents, min_bedrooms, pets_required, notify)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + searchColumns

	row := r.pool.QueryRow(ctx, query, s.OwnerID, s.Name, s.City, s.MaxPriceCents, s.MinBedrooms, s.PetsRequired, s.Notify)
	created, err := scanSearch(row)
	if err != nil {
		return SavedSearch{}, fmt.Errorf("create saved search: %w", err)
	}
	return created, nil
}

// ListByOwner returns the owner's saved searches.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]SavedSearch, error) {
	query := `SELECT ` + searchColumns + ` FROM saved_searches WHERE owner_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list saved searches: %w", err)
	}
	defer rows.Close()

	return scanSearches(rows)
}

// ListNotifiable returns every search with alerts enabled. The dispatcher
// runs this on each new listing.
func (r *Repository) ListNotifiable(ctx context.Context) ([]SavedSearch, error) {
	query := `SELECT ` + searchColumns + ` FROM saved_searches WHERE notify = true`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list notifiable searches: %w", err)
	}
	defer rows.Close()

	return scanSearches(rows)
}

// Update replaces a saved search owned by the user.
func (r *Repository) Update(ctx context.Context, s SavedSearch) (SavedSearch, error) {
	query := `
		UPDATE saved_searches SET
			name = $3, city = $4, max_price_cents = $5, min_bedrooms = $6,
			pets_required = $7, notify = $8, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + searchColumns

	row := r.pool.QueryRow(ctx, query, s.ID, s.OwnerID, s.Name, s.City, s.MaxPriceCents, s.MinBedrooms, s.PetsRequired, s.Notify)
	updated, err := scanSearch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SavedSearch{}, apperr.NotFound("saved search not found")
		}
		return SavedSearch{}, fmt.Errorf("update saved search: %w", err)
	}
	return updated, nil
}

// Delete removes a saved search owned by the user.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM saved_searches WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete saved search: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("saved search not found")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSearch(row rowScanner) (SavedSearch, error) {
	var s SavedSearch
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.Name, &s.City, &s.MaxPriceCents, &s.MinBedrooms,
		&s.PetsRequired, &s.Notify, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func scanSearches(rows pgx.Rows) ([]SavedSearch, error) {
	searches := make([]SavedSearch, 0)
	for rows.Next() {
		s, err := scanSearch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan saved search: %w", err)
		}
		searches = append(searches, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return searches, nil
}
