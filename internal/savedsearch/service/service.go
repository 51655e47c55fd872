package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"rental_portal_backend/internal/events"
	"rental_portal_backend/internal/savedsearch/repository"
	"rental_portal_backend/internal/savedsearch/transport"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, s repository.SavedSearch) (repository.SavedSearch, error)
	ListByOwner(ctx context.Context, ownerID string) ([]repository.SavedSearch, error)
	ListNotifiable(ctx context.Context) ([]repository.SavedSearch, error)
	Update(ctx context.Context, s repository.SavedSearch) (repository.SavedSearch, error)
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
}

// Service provides business logic for saved searches.
type Service struct {
	repo Repository
}

// New creates a new saved searches service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new saved search for the owner.
func (s *Service) Create(ctx context.Context, ownerID string, req transport.SaveSearchRequest) (repository.SavedSearch, error) {
	return s.repo.Create(ctx, repository.SavedSearch{
		OwnerID:       ownerID,
		Name:          strings.TrimSpace(req.Name),
		City:          strings.TrimSpace(req.City),
		MaxPriceCents: req.MaxPriceCents,
		MinBedrooms:   req.MinBedrooms,
		PetsRequired:  req.PetsRequired,
		Notify:        req.Notify,
	})
}

// List returns the owner's saved searches.
func (s *Service) List(ctx context.Context, ownerID string) ([]repository.SavedSearch, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Update replaces a saved search owned by the user.
func (s *Service) Update(ctx context.Context, ownerID string, id uuid.UUID, req transport.SaveSearchRequest) (repository.SavedSearch, error) {
	return s.repo.Update(ctx, repository.SavedSearch{
		ID:            id,
		OwnerID:       ownerID,
		Name:          strings.TrimSpace(req.Name),
		City:          strings.TrimSpace(req.City),
		MaxPriceCents: req.MaxPriceCents,
		MinBedrooms:   req.MinBedrooms,
		PetsRequired:  req.PetsRequired,
		Notify:        req.Notify,
	})
}

// Delete removes a saved search owned by the user.
func (s *Service) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	return s.repo.Delete(ctx, id, ownerID)
}

// MatchesListing reports whether a newly listed property satisfies the
// search filters. Unset filters match anything.
func MatchesListing(search repository.SavedSearch, listed events.PropertyListed) bool {
	if search.City != "" && !strings.EqualFold(strings.TrimSpace(search.City), strings.TrimSpace(listed.City)) {
		return false
	}
	if search.MaxPriceCents != nil && listed.PriceCents > *search.MaxPriceCents {
		return false
	}
	if search.MinBedrooms != nil && listed.Bedrooms < *search.MinBedrooms {
		return false
	}
	if search.PetsRequired && !listed.PetsOK {
		return false
	}
	return true
}
