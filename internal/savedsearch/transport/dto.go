// Package transport defines request DTOs for the saved search module.
package transport

// SaveSearchRequest creates or replaces a saved search.
type SaveSearchRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=100"`
	City          string `json:"city,omitempty" validate:"max=100"`
	MaxPriceCents *int64 `json:"maxPriceCents,omitempty" validate:"omitempty,gt=0"`
	MinBedrooms   *int   `json:"minBedrooms,omitempty" validate:"omitempty,gte=0,lte=20"`
	PetsRequired  bool   `json:"petsRequired"`
	Notify        bool   `json:"notify"`
}
