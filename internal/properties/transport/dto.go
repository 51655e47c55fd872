// Package transport defines request/response DTOs for the properties module.
package transport

import (
	"time"

	"rental_portal_backend/internal/properties/repository"
)

// CreatePropertyRequest is the request body for creating a listing.
type CreatePropertyRequest struct {
	Title         string     `json:"title" validate:"required,min=3,max=200"`
	Description   string     `json:"description,omitempty" validate:"max=5000"`
	Address       string     `json:"address" validate:"required,min=3,max=300"`
	City          string     `json:"city" validate:"required,min=1,max=100"`
	PostalCode    string     `json:"postalCode,omitempty" validate:"max=20"`
	PriceCents    int64      `json:"priceCents" validate:"required,gt=0"`
	Bedrooms      int        `json:"bedrooms" validate:"gte=0,lte=20"`
	Bathrooms     int        `json:"bathrooms" validate:"gte=0,lte=20"`
	AreaSqm       int        `json:"areaSqm,omitempty" validate:"gte=0"`
	PetsAllowed   bool       `json:"petsAllowed"`
	Furnished     bool       `json:"furnished"`
	AvailableFrom *time.Time `json:"availableFrom,omitempty"`
	Publish       bool       `json:"publish"`
}

// UpdatePropertyRequest is the request body for updating a listing.
type UpdatePropertyRequest struct {
	Title         *string    `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description   *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Address       *string    `json:"address,omitempty" validate:"omitempty,min=3,max=300"`
	City          *string    `json:"city,omitempty" validate:"omitempty,min=1,max=100"`
	PostalCode    *string    `json:"postalCode,omitempty" validate:"omitempty,max=20"`
	PriceCents    *int64     `json:"priceCents,omitempty" validate:"omitempty,gt=0"`
	Bedrooms      *int       `json:"bedrooms,omitempty" validate:"omitempty,gte=0,lte=20"`
	Bathrooms     *int       `json:"bathrooms,omitempty" validate:"omitempty,gte=0,lte=20"`
	AreaSqm       *int       `json:"areaSqm,omitempty" validate:"omitempty,gte=0"`
	PetsAllowed   *bool      `json:"petsAllowed,omitempty"`
	Furnished     *bool      `json:"furnished,omitempty"`
	AvailableFrom *time.Time `json:"availableFrom,omitempty"`
	Status        *string    `json:"status,omitempty" validate:"omitempty,oneof=draft listed archived"`
}

// ListPropertiesRequest is the query parameters for the public listing search.
type ListPropertiesRequest struct {
	City        string `form:"city"`
	MinPrice    *int64 `form:"minPriceCents" validate:"omitempty,gte=0"`
	MaxPrice    *int64 `form:"maxPriceCents" validate:"omitempty,gte=0"`
	MinBedrooms *int   `form:"minBedrooms" validate:"omitempty,gte=0"`
	PetsAllowed *bool  `form:"petsAllowed"`
	Furnished   *bool  `form:"furnished"`
	Page        int    `form:"page" validate:"omitempty,min=1"`
	PageSize    int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// RequestPhotoUploadRequest asks for a presigned upload URL for one photo.
type RequestPhotoUploadRequest struct {
	FileName    string `json:"fileName" validate:"required,min=1,max=255"`
	ContentType string `json:"contentType" validate:"required"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,gt=0"`
}

// ConfirmPhotoUploadRequest attaches an uploaded object to the listing.
type ConfirmPhotoUploadRequest struct {
	FileKey     string `json:"fileKey" validate:"required,min=1,max=500"`
	ContentType string `json:"contentType" validate:"required"`
	SizeBytes   int64  `json:"sizeBytes" validate:"gte=0"`
}

// ListPropertiesResponse is the paginated search response.
type ListPropertiesResponse struct {
	Items    []repository.Property `json:"items"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"pageSize"`
}

// PhotoUploadResponse returns the presigned upload target.
type PhotoUploadResponse struct {
	UploadURL string    `json:"uploadUrl"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PhotoDownloadResponse returns a presigned download URL for one photo.
type PhotoDownloadResponse struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}
