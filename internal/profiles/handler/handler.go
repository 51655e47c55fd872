package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rental_portal_backend/internal/profiles/service"
	"rental_portal_backend/internal/profiles/transport"
	"rental_portal_backend/platform/httpkit"
	"rental_portal_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidProfileID = "invalid profile id"
)

// Handler handles HTTP requests for profiles
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new profiles handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the profile routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/active", h.GetActive)
	rg.GET("/:id", h.GetByID)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/activate", h.Activate)
	rg.PUT("/:id/personal", h.UpdatePersonal)
	rg.PUT("/:id/agency", h.UpdateAgency)
	rg.POST("/:id/agency/members", h.AddMember)
	rg.GET("/:id/trust-score", h.TrustScore)
	rg.POST("/:id/trust-score/factors", h.ApplyFactor)
}

// profileID parses the :id route parameter.
func profileID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidProfileID, nil)
		return uuid.UUID{}, false
	}
	return id, true
}

// List handles GET /api/v1/profiles
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.List(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Create handles POST /api/v1/profiles
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, result)
}

// GetActive handles GET /api/v1/profiles/active
func (h *Handler) GetActive(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.GetActive(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetByID handles GET /api/v1/profiles/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), identity.UserID(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Delete handles DELETE /api/v1/profiles/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), identity.UserID(), id); httpkit.HandleError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

// Activate handles POST /api/v1/profiles/:id/activate
func (h *Handler) Activate(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if err := h.svc.Activate(c.Request.Context(), identity.UserID(), id); httpkit.HandleError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdatePersonal handles PUT /api/v1/profiles/:id/personal
func (h *Handler) UpdatePersonal(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	var req transport.UpdatePersonalProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.UpdatePersonal(c.Request.Context(), identity.UserID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// UpdateAgency handles PUT /api/v1/profiles/:id/agency
func (h *Handler) UpdateAgency(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	var req transport.UpdateAgencyProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.UpdateAgency(c.Request.Context(), identity.UserID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// AddMember handles POST /api/v1/profiles/:id/agency/members
func (h *Handler) AddMember(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	var req transport.AddAgencyMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.AddMember(c.Request.Context(), identity.UserID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, result)
}

// TrustScore handles GET /api/v1/profiles/:id/trust-score
func (h *Handler) TrustScore(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	var req transport.RecalculateTrustScoreRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.TrustScore(c.Request.Context(), identity.UserID(), id, req.Force)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// ApplyFactor handles POST /api/v1/profiles/:id/trust-score/factors
func (h *Handler) ApplyFactor(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	var req transport.ApplyTrustFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.ApplyFactor(c.Request.Context(), identity.UserID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}
