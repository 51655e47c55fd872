// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"rental_portal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Profiles Domain Events
// =============================================================================

// ProfileCreated is published when a user creates a new profile.
type ProfileCreated struct {
	BaseEvent
	ProfileID   uuid.UUID `json:"profileId"`
	OxyUserID   string    `json:"oxyUserId"`
	ProfileType string    `json:"profileType"`
}

func (e ProfileCreated) EventName() string { return "profiles.profile.created" }

// ProfileActivated is published when a user switches their active profile.
type ProfileActivated struct {
	BaseEvent
	ProfileID uuid.UUID `json:"profileId"`
	OxyUserID string    `json:"oxyUserId"`
}

func (e ProfileActivated) EventName() string { return "profiles.profile.activated" }

// TrustScoreRecalculated is published after a trust score recalculation that
// changed the stored score.
type TrustScoreRecalculated struct {
	BaseEvent
	ProfileID     uuid.UUID `json:"profileId"`
	OxyUserID     string    `json:"oxyUserId"`
	Score         int       `json:"score"`
	PreviousScore int       `json:"previousScore"`
	Forced        bool      `json:"forced"`
}

func (e TrustScoreRecalculated) EventName() string { return "profiles.trustscore.recalculated" }

// =============================================================================
// Properties Domain Events
// =============================================================================

// PropertyListed is published when a landlord publishes a new listing.
type PropertyListed struct {
	BaseEvent
	PropertyID uuid.UUID `json:"propertyId"`
	OwnerID    string    `json:"ownerId"`
	City       string    `json:"city"`
	PriceCents int64     `json:"priceCents"`
	Bedrooms   int       `json:"bedrooms"`
	PetsOK     bool      `json:"petsOk"`
}

func (e PropertyListed) EventName() string { return "properties.property.listed" }

// PropertyUnlisted is published when a listing is archived or deleted.
type PropertyUnlisted struct {
	BaseEvent
	PropertyID uuid.UUID `json:"propertyId"`
	OwnerID    string    `json:"ownerId"`
}

func (e PropertyUnlisted) EventName() string { return "properties.property.unlisted" }

// =============================================================================
// Reviews Domain Events
// =============================================================================

// ReviewSubmitted is published when a tenant submits an address review.
type ReviewSubmitted struct {
	BaseEvent
	ReviewID   uuid.UUID `json:"reviewId"`
	AddressKey string    `json:"addressKey"`
	ReviewerID string    `json:"reviewerId"`
	Rating     int       `json:"rating"`
}

func (e ReviewSubmitted) EventName() string { return "reviews.review.submitted" }

// =============================================================================
// Saved Search Domain Events
// =============================================================================

// SavedSearchMatched is published when a new listing matches a saved search.
type SavedSearchMatched struct {
	BaseEvent
	SearchID   uuid.UUID `json:"searchId"`
	OwnerID    string    `json:"ownerId"`
	PropertyID uuid.UUID `json:"propertyId"`
	SearchName string    `json:"searchName"`
}

func (e SavedSearchMatched) EventName() string { return "savedsearch.search.matched" }
