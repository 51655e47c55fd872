// Package domain defines the profile aggregate and its embedded sub-documents.
// Profiles are the marketplace identity of a user: personal profiles for
// tenants, agency profiles for property managers. Sub-documents are stored as
// JSONB and every group is optional.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProfileType discriminates the profile union.
type ProfileType string

const (
	ProfileTypePersonal    ProfileType = "personal"
	ProfileTypeAgency      ProfileType = "agency"
	ProfileTypeBusiness    ProfileType = "business"
	ProfileTypeCooperative ProfileType = "cooperative"
)

// Valid reports whether the profile type is one of the known variants.
func (t ProfileType) Valid() bool {
	switch t {
	case ProfileTypePersonal, ProfileTypeAgency, ProfileTypeBusiness, ProfileTypeCooperative:
		return true
	}
	return false
}

// Profile is a user's marketplace identity record. A user may hold one profile
// per type; at most one of them is active at a time (enforced by the
// repository's activate transaction and a partial unique index).
type Profile struct {
	ID              uuid.UUID        `json:"id"`
	OxyUserID       string           `json:"oxyUserId"`
	ProfileType     ProfileType      `json:"profileType"`
	IsActive        bool             `json:"isActive"`
	PersonalProfile *PersonalProfile `json:"personalProfile,omitempty"`
	AgencyProfile   *AgencyProfile   `json:"agencyProfile,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// PersonalProfile holds the tenant-facing sub-documents. Every group is
// optional; absence excludes the group from trust scoring entirely.
type PersonalProfile struct {
	BasicInfo     *BasicInfo           `json:"basicInfo,omitempty"`
	Employment    *Employment          `json:"employment,omitempty"`
	References    []Reference          `json:"references,omitempty"`
	RentalHistory []RentalHistoryEntry `json:"rentalHistory,omitempty"`
	Verification  *Verification        `json:"verification,omitempty"`
	Roommate      *RoommatePreferences `json:"roommate,omitempty"`
	TrustScore    *TrustScore          `json:"trustScore,omitempty"`
}

// BasicInfo is the identity group of a personal profile.
type BasicInfo struct {
	FirstName        string   `json:"firstName,omitempty"`
	LastName         string   `json:"lastName,omitempty"`
	Email            string   `json:"email,omitempty"`
	DateOfBirth      string   `json:"dateOfBirth,omitempty"`
	PhoneNumber      string   `json:"phoneNumber,omitempty"`
	EmergencyContact string   `json:"emergencyContact,omitempty"`
	Nationality      string   `json:"nationality,omitempty"`
	Languages        []string `json:"languages,omitempty"`
	Bio              string   `json:"bio,omitempty"`
}

// Employment is the income group of a personal profile.
type Employment struct {
	EmploymentStatus    string  `json:"employmentStatus,omitempty"`
	EmployerName        string  `json:"employerName,omitempty"`
	JobTitle            string  `json:"jobTitle,omitempty"`
	EmploymentStartDate string  `json:"employmentStartDate,omitempty"`
	MonthlyIncome       float64 `json:"monthlyIncome,omitempty"`
	EmploymentType      string  `json:"employmentType,omitempty"`
	EmployerPhone       string  `json:"employerPhone,omitempty"`
}

// Reference is a personal or professional reference contact.
type Reference struct {
	Name         string `json:"name,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Verified     bool   `json:"verified"`
}

// RentalHistoryEntry is a previous tenancy record.
type RentalHistoryEntry struct {
	Address          string          `json:"address,omitempty"`
	StartDate        string          `json:"startDate,omitempty"`
	EndDate          string          `json:"endDate,omitempty"`
	ReasonForLeaving string          `json:"reasonForLeaving,omitempty"`
	LandlordContact  LandlordContact `json:"landlordContact"`
	Verified         bool            `json:"verified"`
}

// LandlordContact identifies the landlord of a rental history entry.
type LandlordContact struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Verification holds the document verification flags of a personal profile.
type Verification struct {
	Identity      bool `json:"identity"`
	Income        bool `json:"income"`
	Background    bool `json:"background"`
	RentalHistory bool `json:"rentalHistory"`
}

// RoommatePreferences opts a personal profile into roommate matching.
type RoommatePreferences struct {
	Enabled        bool     `json:"enabled"`
	BudgetMinCents int64    `json:"budgetMinCents,omitempty"`
	BudgetMaxCents int64    `json:"budgetMaxCents,omitempty"`
	Cities         []string `json:"cities,omitempty"`
	Smoker         bool     `json:"smoker"`
	Pets           bool     `json:"pets"`
	Cleanliness    int      `json:"cleanliness,omitempty"` // 1..5
	Guests         int      `json:"guests,omitempty"`      // 1..5
	Noise          int      `json:"noise,omitempty"`       // 1..5
}

// AgencyProfile holds the agency-facing sub-documents.
type AgencyProfile struct {
	BusinessInfo *BusinessInfo       `json:"businessInfo,omitempty"`
	Verification *AgencyVerification `json:"verification,omitempty"`
	Members      []AgencyMember      `json:"members,omitempty"`
}

// BusinessInfo is the registration group of an agency profile.
type BusinessInfo struct {
	BusinessName    string `json:"businessName,omitempty"`
	BusinessType    string `json:"businessType,omitempty"`
	LicenseNumber   string `json:"licenseNumber,omitempty"`
	TaxID           string `json:"taxId,omitempty"`
	Website         string `json:"website,omitempty"`
	BusinessPhone   string `json:"businessPhone,omitempty"`
	BusinessEmail   string `json:"businessEmail,omitempty"`
	BusinessAddress string `json:"businessAddress,omitempty"`
}

// AgencyVerification holds the business verification flags of an agency profile.
type AgencyVerification struct {
	BusinessLicense bool `json:"businessLicense"`
	Insurance       bool `json:"insurance"`
	Bonding         bool `json:"bonding"`
	BackgroundCheck bool `json:"backgroundCheck"`
}

// AgencyMember is a staff member attached to an agency profile.
type AgencyMember struct {
	OxyUserID string    `json:"oxyUserId"`
	Role      string    `json:"role,omitempty"`
	AddedAt   time.Time `json:"addedAt"`
	AddedBy   string    `json:"addedBy,omitempty"`
}
