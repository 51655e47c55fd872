package inapp

import (
	"context"

	"rental_portal_backend/internal/notification/sse"
	"rental_portal_backend/platform/apperr"
	"rental_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type Service struct {
	repo *Repository
	sse  *sse.Service
	log  *logger.Logger
}

func NewService(repo *Repository, log *logger.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// SetSSE injects the SSE service (circular dependency avoidance).
func (s *Service) SetSSE(sseSvc *sse.Service) {
	s.sse = sseSvc
}

type SendParams struct {
	OxyUserID    string
	Title        string
	Content      string
	ResourceID   *uuid.UUID
	ResourceType string
	Category     string // "info", "success", "warning", "error"
}

// Send persists the notification and pushes it via SSE if the user is online.
func (s *Service) Send(ctx context.Context, p SendParams) error {
	if s == nil || s.repo == nil {
		return apperr.Internal("in-app notification service not configured")
	}

	if p.Category == "" {
		p.Category = "info"
	}

	var resourceType *string
	if p.ResourceType != "" {
		resourceType = &p.ResourceType
	}

	notif, err := s.repo.Create(ctx, CreateParams{
		OxyUserID:    p.OxyUserID,
		Title:        p.Title,
		Content:      p.Content,
		ResourceID:   p.ResourceID,
		ResourceType: resourceType,
		Category:     p.Category,
	})
	if err != nil {
		if s.log != nil {
			s.log.Error("failed to persist in-app notification", "error", err, "userId", p.OxyUserID)
		}
		return err
	}

	if s.sse != nil {
		s.sse.Publish(p.OxyUserID, sse.Event{
			Type:    sse.EventInAppNotification,
			Message: "New Notification",
			Data:    notif,
		})
	}

	return nil
}

func (s *Service) List(ctx context.Context, oxyUserID string, page, pageSize int) ([]Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	offset := (page - 1) * pageSize
	return s.repo.List(ctx, oxyUserID, pageSize, offset)
}

func (s *Service) CountUnread(ctx context.Context, oxyUserID string) (int, error) {
	return s.repo.CountUnread(ctx, oxyUserID)
}

func (s *Service) MarkRead(ctx context.Context, oxyUserID string, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, oxyUserID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, oxyUserID string) error {
	return s.repo.MarkAllRead(ctx, oxyUserID)
}

func (s *Service) Delete(ctx context.Context, oxyUserID string, id uuid.UUID) error {
	return s.repo.Delete(ctx, oxyUserID, id)
}
