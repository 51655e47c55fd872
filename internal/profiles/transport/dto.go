// Package transport defines request/response DTOs for the profiles module.
package transport

import (
	"time"

	"github.com/google/uuid"

	"rental_portal_backend/internal/profiles/domain"
)

// CreateProfileRequest is the request body for creating a profile.
// Sub-documents are optional and can be filled in later via updates.
type CreateProfileRequest struct {
	ProfileType     domain.ProfileType      `json:"profileType" validate:"required,oneof=personal agency business cooperative"`
	PersonalProfile *domain.PersonalProfile `json:"personalProfile,omitempty"`
	AgencyProfile   *domain.AgencyProfile   `json:"agencyProfile,omitempty"`
}

// UpdatePersonalProfileRequest replaces the personal sub-document. Groups
// omitted from the request are removed from the profile.
type UpdatePersonalProfileRequest struct {
	BasicInfo     *domain.BasicInfo           `json:"basicInfo,omitempty"`
	Employment    *domain.Employment          `json:"employment,omitempty"`
	References    []domain.Reference          `json:"references,omitempty" validate:"max=20,dive"`
	RentalHistory []domain.RentalHistoryEntry `json:"rentalHistory,omitempty" validate:"max=20,dive"`
	Verification  *domain.Verification        `json:"verification,omitempty"`
	Roommate      *domain.RoommatePreferences `json:"roommate,omitempty"`
}

// UpdateAgencyProfileRequest replaces the agency sub-document.
type UpdateAgencyProfileRequest struct {
	BusinessInfo *domain.BusinessInfo       `json:"businessInfo,omitempty"`
	Verification *domain.AgencyVerification `json:"verification,omitempty"`
}

// AddAgencyMemberRequest adds a staff member to an agency profile.
type AddAgencyMemberRequest struct {
	OxyUserID string `json:"oxyUserId" validate:"required,min=1,max=64"`
	Role      string `json:"role,omitempty" validate:"omitempty,oneof=owner admin agent viewer"`
}

// RecalculateTrustScoreRequest is the query for trust score recalculation.
type RecalculateTrustScoreRequest struct {
	Force bool `form:"force"`
}

// ApplyTrustFactorRequest updates a single trust factor directly.
type ApplyTrustFactorRequest struct {
	Type  string  `json:"type" validate:"required,oneof=basic_info employment references rental_history verification agency_business agency_verification agency_members"`
	Value float64 `json:"value" validate:"gte=0,lte=25"`
}

// ProfileResponse is the response body for a profile.
type ProfileResponse struct {
	ID              uuid.UUID               `json:"id"`
	OxyUserID       string                  `json:"oxyUserId"`
	ProfileType     domain.ProfileType      `json:"profileType"`
	IsActive        bool                    `json:"isActive"`
	PersonalProfile *domain.PersonalProfile `json:"personalProfile,omitempty"`
	AgencyProfile   *domain.AgencyProfile   `json:"agencyProfile,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

// TrustScoreResponse is the response body for a trust score calculation.
type TrustScoreResponse struct {
	ProfileID  uuid.UUID       `json:"profileId"`
	Score      int             `json:"score"`
	Factors    []domain.Factor `json:"factors"`
	TotalScore float64         `json:"totalScore"`
	MaxScore   float64         `json:"maxScore"`
	Cached     bool            `json:"cached"`
}

// FromDomain maps a domain profile to its response DTO.
func FromDomain(p domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:              p.ID,
		OxyUserID:       p.OxyUserID,
		ProfileType:     p.ProfileType,
		IsActive:        p.IsActive,
		PersonalProfile: p.PersonalProfile,
		AgencyProfile:   p.AgencyProfile,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// FromDomainList maps a slice of domain profiles to response DTOs.
func FromDomainList(profiles []domain.Profile) []ProfileResponse {
	results := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		results = append(results, FromDomain(p))
	}
	return results
}
