package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rental_portal_backend/internal/profiles/domain"
)

// CreateParams contains parameters for creating a profile.
type CreateParams struct {
	OxyUserID       string
	ProfileType     domain.ProfileType
	PersonalProfile *domain.PersonalProfile
	AgencyProfile   *domain.AgencyProfile
}

// ProfileReader provides read operations for profiles.
type ProfileReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Profile, error)
	GetByIDForUser(ctx context.Context, id uuid.UUID, oxyUserID string) (domain.Profile, error)
	GetActiveByUser(ctx context.Context, oxyUserID string) (domain.Profile, error)
	ListByUser(ctx context.Context, oxyUserID string) ([]domain.Profile, error)
	ListRoommateCandidates(ctx context.Context, excludeOxyUserID string) ([]domain.Profile, error)
	ListStaleTrustScores(ctx context.Context, olderThan time.Time, limit int) ([]domain.Profile, error)
}

// ProfileWriter provides write operations for profiles.
type ProfileWriter interface {
	Create(ctx context.Context, params CreateParams) (domain.Profile, error)
	// Activate deactivates every profile of the user and activates the target
	// inside a single transaction, so readers never observe zero or two active
	// profiles for a user.
	Activate(ctx context.Context, oxyUserID string, id uuid.UUID) error
	UpdatePersonal(ctx context.Context, id uuid.UUID, personal *domain.PersonalProfile) error
	UpdateAgency(ctx context.Context, id uuid.UUID, agency *domain.AgencyProfile) error
	Delete(ctx context.Context, id uuid.UUID, oxyUserID string) error
}

// Repository combines all profile repository operations.
type Repository interface {
	ProfileReader
	ProfileWriter
}
