// Package repository provides PostgreSQL persistence for property listings.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rental_portal_backend/platform/apperr"
)

// Property status values.
const (
	StatusDraft    = "draft"
	StatusListed   = "listed"
	StatusArchived = "archived"
)

// Photo is a stored listing photo reference with metadata extracted at
// upload confirmation time.
type Photo struct {
	FileKey     string     `json:"fileKey"`
	ContentType string     `json:"contentType"`
	SizeBytes   int64      `json:"sizeBytes,omitempty"`
	TakenAt     *time.Time `json:"takenAt,omitempty"`
	CameraModel string     `json:"cameraModel,omitempty"`
	Position    int        `json:"position"`
}

// Property is a rental listing.
type Property struct {
	ID            uuid.UUID  `json:"id"`
	OwnerID       string     `json:"ownerId"`
	Status        string     `json:"status"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Address       string     `json:"address"`
	City          string     `json:"city"`
	PostalCode    string     `json:"postalCode,omitempty"`
	PriceCents    int64      `json:"priceCents"`
	Bedrooms      int        `json:"bedrooms"`
	Bathrooms     int        `json:"bathrooms"`
	AreaSqm       int        `json:"areaSqm,omitempty"`
	PetsAllowed   bool       `json:"petsAllowed"`
	Furnished     bool       `json:"furnished"`
	AvailableFrom *time.Time `json:"availableFrom,omitempty"`
	Photos        []Photo    `json:"photos,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ListParams filters the public listing search.
type ListParams struct {
	City          string
	MinPriceCents *int64
	MaxPriceCents *int64
	MinBedrooms   *int
	PetsAllowed   *bool
	Furnished     *bool
	OwnerID       string
	Status        string
	Limit         int
	Offset        int
}

const propertyColumns = `id, owner_id, status, title, description, address, city, postal_code,
	price_cents, bedrooms, bathrooms, area_sqm, pets_allowed, furnished, available_from,
	photos, created_at, updated_at`

// Repository persists properties in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new properties repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new property.
func (r *Repository) Create(ctx context.Context, p Property) (Property, error) {
	photos, err := marshalPhotos(p.Photos)
	if err != nil {
		return Property{}, err
	}

	query := `
		INSERT INTO properties (owner_id, status, title, description, address, city, postal_code,
			price_cents, bedrooms, bathrooms, area_sqm, pets_allowed, furnished, available_from, photos)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + propertyColumns

	row := r.pool.QueryRow(ctx, query,
		p.OwnerID, p.Status, p.Title, p.Description, p.Address, p.City, p.PostalCode,
		p.PriceCents, p.Bedrooms, p.Bathrooms, p.AreaSqm, p.PetsAllowed, p.Furnished, p.AvailableFrom, photos,
	)

	created, err := scanProperty(row)
	if err != nil {
		return Property{}, fmt.Errorf("create property: %w", err)
	}
	return created, nil
}

// GetByID retrieves a property by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	p, err := scanProperty(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, apperr.NotFound("property not found")
		}
		return Property{}, fmt.Errorf("get property: %w", err)
	}
	return p, nil
}

// Update replaces the mutable fields of a property owned by ownerID.
func (r *Repository) Update(ctx context.Context, p Property) (Property, error) {
	photos, err := marshalPhotos(p.Photos)
	if err != nil {
		return Property{}, err
	}

	query := `
		UPDATE properties SET
			status = $3, title = $4, description = $5, address = $6, city = $7, postal_code = $8,
			price_cents = $9, bedrooms = $10, bathrooms = $11, area_sqm = $12,
			pets_allowed = $13, furnished = $14, available_from = $15, photos = $16,
			updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + propertyColumns

	row := r.pool.QueryRow(ctx, query,
		p.ID, p.OwnerID, p.Status, p.Title, p.Description, p.Address, p.City, p.PostalCode,
		p.PriceCents, p.Bedrooms, p.Bathrooms, p.AreaSqm, p.PetsAllowed, p.Furnished, p.AvailableFrom, photos,
	)

	updated, err := scanProperty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, apperr.NotFound("property not found")
		}
		return Property{}, fmt.Errorf("update property: %w", err)
	}
	return updated, nil
}

// Delete removes a property owned by ownerID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("property not found")
	}
	return nil
}

// List returns filtered properties plus the total match count for pagination.
func (r *Repository) List(ctx context.Context, params ListParams) ([]Property, int, error) {
	whereClause, args, argIdx := buildListWhere(params)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM properties WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count properties: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM properties
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, propertyColumns, whereClause, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	properties := make([]Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan property: %w", err)
		}
		properties = append(properties, p)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return properties, total, nil
}

func buildListWhere(params ListParams) (string, []interface{}, int) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	add := func(clause string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf(clause, argIdx))
		args = append(args, value)
		argIdx++
	}

	if params.Status != "" {
		add("status = $%d", params.Status)
	}
	if params.OwnerID != "" {
		add("owner_id = $%d", params.OwnerID)
	}
	if params.City != "" {
		add("city ILIKE $%d", params.City)
	}
	if params.MinPriceCents != nil {
		add("price_cents >= $%d", *params.MinPriceCents)
	}
	if params.MaxPriceCents != nil {
		add("price_cents <= $%d", *params.MaxPriceCents)
	}
	if params.MinBedrooms != nil {
		add("bedrooms >= $%d", *params.MinBedrooms)
	}
	if params.PetsAllowed != nil {
		add("pets_allowed = $%d", *params.PetsAllowed)
	}
	if params.Furnished != nil {
		add("furnished = $%d", *params.Furnished)
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (Property, error) {
	var p Property
	var photos []byte

	if err := row.Scan(
		&p.ID, &p.OwnerID, &p.Status, &p.Title, &p.Description, &p.Address, &p.City, &p.PostalCode,
		&p.PriceCents, &p.Bedrooms, &p.Bathrooms, &p.AreaSqm, &p.PetsAllowed, &p.Furnished, &p.AvailableFrom,
		&photos, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return Property{}, err
	}

	if len(photos) > 0 {
		if err := json.Unmarshal(photos, &p.Photos); err != nil {
			return Property{}, fmt.Errorf("decode photos: %w", err)
		}
	}

	return p, nil
}

func marshalPhotos(photos []Photo) ([]byte, error) {
	if photos == nil {
		photos = []Photo{}
	}
	data, err := json.Marshal(photos)
	if err != nil {
		return nil, fmt.Errorf("encode photos: %w", err)
	}
	return data, nil
}
