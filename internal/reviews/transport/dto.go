// Package transport defines request/response DTOs for the reviews module.
package transport

import "rental_portal_backend/internal/reviews/repository"

// SubmitReviewRequest is the request body for submitting an address review.
type SubmitReviewRequest struct {
	Address        string `json:"address" validate:"required,min=5,max=300"`
	Rating         int    `json:"rating" validate:"required,min=1,max=5"`
	LandlordRating int    `json:"landlordRating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment        string `json:"comment,omitempty" validate:"max=3000"`
	TenancyStart   string `json:"tenancyStart,omitempty" validate:"omitempty,datetime=2006-01"`
	TenancyEnd     string `json:"tenancyEnd,omitempty" validate:"omitempty,datetime=2006-01"`
}

// AddressReviewsResponse bundles the reviews of one address with the summary.
type AddressReviewsResponse struct {
	Aggregate repository.Aggregate `json:"aggregate"`
	Reviews   []repository.Review  `json:"reviews"`
}
