package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"rental_portal_backend/internal/events"
	"rental_portal_backend/internal/properties/repository"
	"rental_portal_backend/internal/properties/transport"
	"rental_portal_backend/internal/storage"
	"rental_portal_backend/platform/apperr"
	"rental_portal_backend/platform/logger"
)

const (
	defaultPageSize = 20
	maxPhotos       = 30
)

// Repository is the persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, p repository.Property) (repository.Property, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Property, error)
	Update(ctx context.Context, p repository.Property) (repository.Property, error)
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
	List(ctx context.Context, params repository.ListParams) ([]repository.Property, int, error)
}

// Service provides business logic for property listings.
type Service struct {
	repo       Repository
	store      storage.Service
	bucket     string
	eventBus   events.Bus
	appBaseURL string
	log        *logger.Logger
}

// New creates a new properties service.
func New(repo Repository, store storage.Service, bucket string, eventBus events.Bus, appBaseURL string, log *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		store:      store,
		bucket:     bucket,
		eventBus:   eventBus,
		appBaseURL: appBaseURL,
		log:        log,
	}
}

// Create creates a new listing. With Publish set it goes live immediately,
// otherwise it stays a draft.
func (s *Service) Create(ctx context.Context, ownerID string, req transport.CreatePropertyRequest) (repository.Property, error) {
	status := repository.StatusDraft
	if req.Publish {
		status = repository.StatusListed
	}

	property, err := s.repo.Create(ctx, repository.Property{
		OwnerID:       ownerID,
		Status:        status,
		Title:         req.Title,
		Description:   req.Description,
		Address:       req.Address,
		City:          req.City,
		PostalCode:    req.PostalCode,
		PriceCents:    req.PriceCents,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		AreaSqm:       req.AreaSqm,
		PetsAllowed:   req.PetsAllowed,
		Furnished:     req.Furnished,
		AvailableFrom: req.AvailableFrom,
	})
	if err != nil {
		return repository.Property{}, err
	}

	if property.Status == repository.StatusListed {
		s.publishListed(ctx, property)
	}

	return property, nil
}

// Get returns a listing. Drafts and archived listings are only visible to
// their owner.
func (s *Service) Get(ctx context.Context, viewerID string, id uuid.UUID) (repository.Property, error) {
	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Property{}, err
	}
	if property.Status != repository.StatusListed && property.OwnerID != viewerID {
		return repository.Property{}, apperr.NotFound("property not found")
	}
	return property, nil
}

// Update modifies a listing owned by ownerID. Transitioning into the listed
// status publishes the listing event; archiving publishes unlisted.
func (s *Service) Update(ctx context.Context, ownerID string, id uuid.UUID, req transport.UpdatePropertyRequest) (repository.Property, error) {
	property, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return repository.Property{}, err
	}

	previousStatus := property.Status
	applyUpdate(&property, req)

	updated, err := s.repo.Update(ctx, property)
	if err != nil {
		return repository.Property{}, err
	}

	if previousStatus != repository.StatusListed && updated.Status == repository.StatusListed {
		s.publishListed(ctx, updated)
	}
	if previousStatus == repository.StatusListed && updated.Status == repository.StatusArchived {
		s.eventBus.Publish(ctx, events.PropertyUnlisted{
			BaseEvent:  events.NewBaseEvent(),
			PropertyID: updated.ID,
			OwnerID:    updated.OwnerID,
		})
	}

	return updated, nil
}

// Delete removes a listing and its stored photos.
func (s *Service) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	property, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	for _, photo := range property.Photos {
		if err := s.store.DeleteObject(ctx, s.bucket, photo.FileKey); err != nil {
			s.log.Error("failed to delete listing photo", "fileKey", photo.FileKey, "error", err)
		}
	}

	if property.Status == repository.StatusListed {
		s.eventBus.Publish(ctx, events.PropertyUnlisted{
			BaseEvent:  events.NewBaseEvent(),
			PropertyID: property.ID,
			OwnerID:    property.OwnerID,
		})
	}

	return nil
}

// List performs the public listing search over live listings.
func (s *Service) List(ctx context.Context, req transport.ListPropertiesRequest) (transport.ListPropertiesResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	items, total, err := s.repo.List(ctx, repository.ListParams{
		Status:        repository.StatusListed,
		City:          req.City,
		MinPriceCents: req.MinPrice,
		MaxPriceCents: req.MaxPrice,
		MinBedrooms:   req.MinBedrooms,
		PetsAllowed:   req.PetsAllowed,
		Furnished:     req.Furnished,
		Limit:         pageSize,
		Offset:        (page - 1) * pageSize,
	})
	if err != nil {
		return transport.ListPropertiesResponse{}, err
	}

	return transport.ListPropertiesResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// ListMine returns all listings of the owner regardless of status.
func (s *Service) ListMine(ctx context.Context, ownerID string) ([]repository.Property, error) {
	items, _, err := s.repo.List(ctx, repository.ListParams{
		OwnerID: ownerID,
		Limit:   200,
	})
	return items, err
}

func (s *Service) getOwned(ctx context.Context, ownerID string, id uuid.UUID) (repository.Property, error) {
	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Property{}, err
	}
	if property.OwnerID != ownerID {
		return repository.Property{}, apperr.Forbidden("not the listing owner")
	}
	return property, nil
}

func (s *Service) publishListed(ctx context.Context, p repository.Property) {
	s.eventBus.Publish(ctx, events.PropertyListed{
		BaseEvent:  events.NewBaseEvent(),
		PropertyID: p.ID,
		OwnerID:    p.OwnerID,
		City:       p.City,
		PriceCents: p.PriceCents,
		Bedrooms:   p.Bedrooms,
		PetsOK:     p.PetsAllowed,
	})
}

// ShareURL is the public web address of a listing, encoded by the QR endpoint.
func (s *Service) ShareURL(id uuid.UUID) string {
	return fmt.Sprintf("%s/properties/%s", s.appBaseURL, id)
}

func applyUpdate(p *repository.Property, req transport.UpdatePropertyRequest) {
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.PostalCode != nil {
		p.PostalCode = *req.PostalCode
	}
	if req.PriceCents != nil {
		p.PriceCents = *req.PriceCents
	}
	if req.Bedrooms != nil {
		p.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		p.Bathrooms = *req.Bathrooms
	}
	if req.AreaSqm != nil {
		p.AreaSqm = *req.AreaSqm
	}
	if req.PetsAllowed != nil {
		p.PetsAllowed = *req.PetsAllowed
	}
	if req.Furnished != nil {
		p.Furnished = *req.Furnished
	}
	if req.AvailableFrom != nil {
		p.AvailableFrom = req.AvailableFrom
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
}
