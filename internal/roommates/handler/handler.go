package handler

import (
	"github.com/gin-gonic/gin"

	"rental_portal_backend/internal/roommates/service"
	"rental_portal_backend/platform/httpkit"
)

// Handler handles HTTP requests for roommate matching
type Handler struct {
	svc *service.Service
}

// New creates a new roommates handler
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the roommate routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/matches", h.Matches)
}

// Matches handles GET /api/v1/roommates/matches
func (h *Handler) Matches(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Matches(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}
