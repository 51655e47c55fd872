package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"rental_portal_backend/internal/events"
	"rental_portal_backend/internal/reviews/repository"
	"rental_portal_backend/internal/reviews/transport"
	"rental_portal_backend/platform/apperr"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, review repository.Review) (repository.Review, error)
	ListByAddress(ctx context.Context, addressKey string) ([]repository.Review, error)
	GetAggregate(ctx context.Context, addressKey string) (repository.Aggregate, error)
	Delete(ctx context.Context, id uuid.UUID, reviewerID string) error
}

// Service provides business logic for address reviews.
type Service struct {
	repo     Repository
	eventBus events.Bus
}

// New creates a new reviews service.
func New(repo Repository, eventBus events.Bus) *Service {
	return &Service{repo: repo, eventBus: eventBus}
}

// Submit records a review of a rental address. The address is normalized to
// an address key so different spellings of the same address land in one
// bucket.
func (s *Service) Submit(ctx context.Context, reviewerID string, req transport.SubmitReviewRequest) (repository.Review, error) {
	if req.TenancyStart != "" && req.TenancyEnd != "" && req.TenancyEnd < req.TenancyStart {
		return repository.Review{}, apperr.Validation("tenancyEnd precedes tenancyStart")
	}

	review, err := s.repo.Create(ctx, repository.Review{
		AddressKey:     AddressKey(req.Address),
		Address:        strings.TrimSpace(req.Address),
		ReviewerID:     reviewerID,
		Rating:         req.Rating,
		LandlordRating: req.LandlordRating,
		Comment:        strings.TrimSpace(req.Comment),
		TenancyStart:   req.TenancyStart,
		TenancyEnd:     req.TenancyEnd,
	})
	if err != nil {
		return repository.Review{}, err
	}

	s.eventBus.Publish(ctx, events.ReviewSubmitted{
		BaseEvent:  events.NewBaseEvent(),
		ReviewID:   review.ID,
		AddressKey: review.AddressKey,
		ReviewerID: reviewerID,
		Rating:     review.Rating,
	})

	return review, nil
}

// ByAddress returns all reviews of an address plus the rating summary.
func (s *Service) ByAddress(ctx context.Context, address string) (transport.AddressReviewsResponse, error) {
	key := AddressKey(address)
	if key == "" {
		return transport.AddressReviewsResponse{}, apperr.Validation("address is required")
	}

	reviews, err := s.repo.ListByAddress(ctx, key)
	if err != nil {
		return transport.AddressReviewsResponse{}, err
	}
	aggregate, err := s.repo.GetAggregate(ctx, key)
	if err != nil {
		return transport.AddressReviewsResponse{}, err
	}

	return transport.AddressReviewsResponse{
		Aggregate: aggregate,
		Reviews:   reviews,
	}, nil
}

// Delete removes the reviewer's own review.
func (s *Service) Delete(ctx context.Context, reviewerID string, id uuid.UUID) error {
	return s.repo.Delete(ctx, id, reviewerID)
}

// AddressKey normalizes a free-form address into a comparison key:
// lowercased, punctuation stripped, whitespace collapsed to single dashes.
func AddressKey(address string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(address)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
