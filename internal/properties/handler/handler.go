package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rental_portal_backend/internal/properties/service"
	"rental_portal_backend/internal/properties/transport"
	"rental_portal_backend/platform/httpkit"
	"rental_portal_backend/platform/validator"
)

const (
	msgInvalidRequest    = "invalid request"
	msgValidationFailed  = "validation failed"
	msgInvalidPropertyID = "invalid property id"
)

// Handler handles HTTP requests for property listings
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new properties handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterPublicRoutes registers the unauthenticated search routes
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.GET("/:id/qr", h.ShareQR)
}

// RegisterRoutes registers the authenticated listing management routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/mine", h.ListMine)
	rg.POST("", h.Create)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/photos/upload-url", h.RequestPhotoUpload)
	rg.POST("/:id/photos/confirm", h.ConfirmPhotoUpload)
	rg.GET("/:id/photos/download-url", h.PhotoDownloadURL)
	rg.DELETE("/:id/photos", h.DeletePhoto)
}

func propertyID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidPropertyID, nil)
		return uuid.UUID{}, false
	}
	return id, true
}

// viewerID returns the user ID when authenticated, empty otherwise. Public
// search endpoints accept anonymous viewers.
func viewerID(c *gin.Context) string {
	return httpkit.GetIdentity(c).UserID()
}

// List handles GET /api/v1/properties
func (h *Handler) List(c *gin.Context) {
	var req transport.ListPropertiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetByID handles GET /api/v1/properties/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := propertyID(c)
	if !ok {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), viewerID(c), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// ShareQR handles GET /api/v1/properties/:id/qr
func (h *Handler) ShareQR(c *gin.Context) {
	id, ok := propertyID(c)
	if !ok {
		return
	}

	png, err := h.svc.ShareQR(c.Request.Context(), viewerID(c), id)
	if httpkit.HandleError(c, err) {
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// ListMine handles GET /api/v1/properties/mine
func (h *Handler) ListMine(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.ListMine(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Create handles POST /api/v1/properties
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreatePropertyRequest
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

// Update handles PATCH /api/v1/properties/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := propertyID(c)
	if !ok {
		return
	}

	var req transport.UpdatePropertyRequest
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

	result, err := h.svc.Update(c.Request.Context(), identity.UserID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Delete handles DELETE /api/v1/properties/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := propertyID(c)
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

// RequestPhotoUpload handles POST /api/v1/properties/:id/photos/upload-url
func (h *Handler) RequestPhotoUpload(c *gin.Context) {
	id, ok := propertyID(c)
	if !ok {
		return
	}

	var req transport.RequestPhotoUploadRequest
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

	result, err := h.svc.RequestPhotoUpload(c.Request.Context(), identity.UserID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// ConfirmPhotoUpload handles POST /api/v1/properties/:id/photos/confirm
func (h *Handler) ConfirmPhotoUpload(c *gin.Context) {
	id, ok := propertyID(c)
	if !ok {
		return
	}

	var req transport.ConfirmPhotoUploadRequest
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

	result, err := h.svc.ConfirmPhotoUpload(c.Request.Context(), identity.UserID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// PhotoDownloadURL handles GET /api/v1/properties/:id/photos/download-url
func (h *Handler) PhotoDownloadURL(c *gin.Context) {
	id, ok := propertyID(c)
	if !ok {
		return
	}

	fileKey := c.Query("fileKey")
	if fileKey == "" {
		httpkit.Error(c, http.StatusBadRequest, "fileKey is required", nil)
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.PhotoDownloadURL(c.Request.Context(), identity.UserID(), id, fileKey)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// DeletePhoto handles DELETE /api/v1/properties/:id/photos
func (h *Handler) DeletePhoto(c *gin.Context) {
	id, ok := propertyID(c)
	if !ok {
		return
	}

	fileKey := c.Query("fileKey")
	if fileKey == "" {
		httpkit.Error(c, http.StatusBadRequest, "fileKey is required", nil)
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.DeletePhoto(c.Request.Context(), identity.UserID(), id, fileKey)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}
