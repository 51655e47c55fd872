// Package repository provides PostgreSQL persistence for address reviews.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"rental_portal_backend/platform/apperr"
)

// Review is one tenant's review of a rental address. Reviews attach to the
// normalized address key rather than a listing, so they survive relistings.
type Review struct {
	ID             uuid.UUID `json:"id"`
	AddressKey     string    `json:"addressKey"`
	Address        string    `json:"address"`
	ReviewerID     string    `json:"reviewerId"`
	Rating         int       `json:"rating"`
	LandlordRating int       `json:"landlordRating,omitempty"`
	Comment        string    `json:"comment,omitempty"`
	TenancyStart   string    `json:"tenancyStart,omitempty"`
	TenancyEnd     string    `json:"tenancyEnd,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Aggregate summarizes all reviews of one address.
type Aggregate struct {
	AddressKey          string  `json:"addressKey"`
	ReviewCount         int     `json:"reviewCount"`
	AverageRating       float64 `json:"averageRating"`
	AverageLandlordRate float64 `json:"averageLandlordRating"`
}

const reviewColumns = `id, address_key, address, reviewer_id, rating, landlord_rating, comment,
	tenancy_start, tenancy_end, created_at`

// Repository persists reviews in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new reviews repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a review. Each reviewer may review an address once.
func (r *Repository) Create(ctx context.Context, review Review) (Review, error) {
	query := `
		INSERT INTO reviews (address_key, address, reviewer_id, rating, landlord_rating, comment, tenancy_start, tenancy_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + reviewColumns

	row := r.pool.QueryRow(ctx, query,
		review.AddressKey, review.Address, review.ReviewerID, review.Rating,
		review.LandlordRating, review.Comment, review.TenancyStart, review.TenancyEnd,
	)

	created, err := scanReview(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Review{}, apperr.Conflict("address already reviewed by this user")
		}
		return Review{}, fmt.Errorf("create review: %w", err)
	}

	return created, nil
}

// ListByAddress returns the reviews of one address, newest first.
func (r *Repository) ListByAddress(ctx context.Context, addressKey string) ([]Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE address_key = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, addressKey)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]Review, 0)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return reviews, nil
}

// GetAggregate computes the rating summary of one address.
func (r *Repository) GetAggregate(ctx context.Context, addressKey string) (Aggregate, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(AVG(rating), 0),
			COALESCE(AVG(landlord_rating) FILTER (WHERE landlord_rating > 0), 0)
		FROM reviews
		WHERE address_key = $1`

	agg := Aggregate{AddressKey: addressKey}
	if err := r.pool.QueryRow(ctx, query, addressKey).Scan(&agg.ReviewCount, &agg.AverageRating, &agg.AverageLandlordRate); err != nil {
		return Aggregate{}, fmt.Errorf("aggregate reviews: %w", err)
	}

	return agg, nil
}

// Delete removes a review owned by the reviewer.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID, reviewerID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1 AND reviewer_id = $2`, id, reviewerID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("review not found")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (Review, error) {
	var review Review
	err := row.Scan(
		&review.ID, &review.AddressKey, &review.Address, &review.ReviewerID,
		&review.Rating, &review.LandlordRating, &review.Comment,
		&review.TenancyStart, &review.TenancyEnd, &review.CreatedAt,
	)
	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return Review{}, err
	}
	return review, err
}
