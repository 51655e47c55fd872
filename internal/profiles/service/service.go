package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rental_portal_backend/internal/events"
	"rental_portal_backend/internal/profiles/domain"
	"rental_portal_backend/internal/profiles/repository"
	"rental_portal_backend/internal/profiles/transport"
	"rental_portal_backend/platform/apperr"
	"rental_portal_backend/platform/logger"
	"rental_portal_backend/platform/phone"
)

const maxAgencyMembers = 50

// Service provides business logic for profiles and trust scoring.
type Service struct {
	repo     repository.Repository
	eventBus events.Bus
	log      *logger.Logger
}

// New creates a new profiles service.
func New(repo repository.Repository, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, eventBus: eventBus, log: log}
}

// Create creates a new profile for the user. The user's first profile becomes
// active automatically.
func (s *Service) Create(ctx context.Context, oxyUserID string, req transport.CreateProfileRequest) (transport.ProfileResponse, error) {
	if !req.ProfileType.Valid() {
		return transport.ProfileResponse{}, apperr.Validation("unknown profile type")
	}

	if req.PersonalProfile != nil {
		normalizePersonal(req.PersonalProfile)
		// Trust scores are computed, never accepted from clients.
		req.PersonalProfile.TrustScore = nil
	}

	existing, err := s.repo.ListByUser(ctx, oxyUserID)
	if err != nil {
		return transport.ProfileResponse{}, err
	}

	profile, err := s.repo.Create(ctx, repository.CreateParams{
		OxyUserID:       oxyUserID,
		ProfileType:     req.ProfileType,
		PersonalProfile: req.PersonalProfile,
		AgencyProfile:   req.AgencyProfile,
	})
	if err != nil {
		return transport.ProfileResponse{}, err
	}

	if len(existing) == 0 {
		if err := s.repo.Activate(ctx, oxyUserID, profile.ID); err != nil {
			return transport.ProfileResponse{}, fmt.Errorf("activate first profile: %w", err)
		}
		profile.IsActive = true
	}

	s.eventBus.Publish(ctx, events.ProfileCreated{
		BaseEvent:   events.NewBaseEvent(),
		ProfileID:   profile.ID,
		OxyUserID:   oxyUserID,
		ProfileType: string(profile.ProfileType),
	})

	return transport.FromDomain(profile), nil
}

// List returns all profiles of the user.
func (s *Service) List(ctx context.Context, oxyUserID string) ([]transport.ProfileResponse, error) {
	profiles, err := s.repo.ListByUser(ctx, oxyUserID)
	if err != nil {
		return nil, err
	}
	return transport.FromDomainList(profiles), nil
}

// Get returns one of the user's profiles by ID.
func (s *Service) Get(ctx context.Context, oxyUserID string, id uuid.UUID) (transport.ProfileResponse, error) {
	profile, err := s.repo.GetByIDForUser(ctx, id, oxyUserID)
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	return transport.FromDomain(profile), nil
}

// GetActive returns the user's currently active profile.
func (s *Service) GetActive(ctx context.Context, oxyUserID string) (transport.ProfileResponse, error) {
	profile, err := s.repo.GetActiveByUser(ctx, oxyUserID)
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	return transport.FromDomain(profile), nil
}

// Activate switches the user's active profile to the given one.
func (s *Service) Activate(ctx context.Context, oxyUserID string, id uuid.UUID) error {
	if err := s.repo.Activate(ctx, oxyUserID, id); err != nil {
		return err
	}

	s.eventBus.Publish(ctx, events.ProfileActivated{
		BaseEvent: events.NewBaseEvent(),
		ProfileID: id,
		OxyUserID: oxyUserID,
	})

	return nil
}

// UpdatePersonal replaces the personal sub-document of a profile and
// recalculates its trust score. The stored trust score survives the replace
// so the cache stays meaningful across edits.
func (s *Service) UpdatePersonal(ctx context.Context, oxyUserID string, id uuid.UUID, req transport.UpdatePersonalProfileRequest) (transport.ProfileResponse, error) {
	profile, err := s.repo.GetByIDForUser(ctx, id, oxyUserID)
	if err != nil {
		return transport.ProfileResponse{}, err
	}

	personal := &domain.PersonalProfile{
		BasicInfo:     req.BasicInfo,
		Employment:    req.Employment,
		References:    req.References,
		RentalHistory: req.RentalHistory,
		Verification:  req.Verification,
		Roommate:      req.Roommate,
	}
	normalizePersonal(personal)
	if profile.PersonalProfile != nil {
		personal.TrustScore = profile.PersonalProfile.TrustScore
	}
	profile.PersonalProfile = personal

	previous := storedScore(&profile)
	result := CalculateTrustScore(&profile, true)

	if err := s.repo.UpdatePersonal(ctx, id, profile.PersonalProfile); err != nil {
		return transport.ProfileResponse{}, err
	}

	s.publishScoreChange(ctx, profile, previous, result.Score, true)

	return transport.FromDomain(profile), nil
}

// UpdateAgency replaces the agency sub-document of a profile and recalculates
// its trust score. Members are managed through AddMember and survive the
// replace untouched.
func (s *Service) UpdateAgency(ctx context.Context, oxyUserID string, id uuid.UUID, req transport.UpdateAgencyProfileRequest) (transport.ProfileResponse, error) {
	profile, err := s.repo.GetByIDForUser(ctx, id, oxyUserID)
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	if profile.ProfileType == domain.ProfileTypePersonal {
		return transport.ProfileResponse{}, apperr.Validation("personal profiles have no agency data")
	}

	agency := &domain.AgencyProfile{
		BusinessInfo: req.BusinessInfo,
		Verification: req.Verification,
	}
	if agency.BusinessInfo != nil {
		agency.BusinessInfo.BusinessPhone = phone.NormalizeE164(agency.BusinessInfo.BusinessPhone)
	}
	if profile.AgencyProfile != nil {
		agency.Members = profile.AgencyProfile.Members
	}
	profile.AgencyProfile = agency

	previous := storedScore(&profile)
	result := CalculateTrustScore(&profile, true)

	if err := s.repo.UpdateAgency(ctx, id, profile.AgencyProfile); err != nil {
		return transport.ProfileResponse{}, err
	}
	// The recalculated score lives on the personal sub-document, persist it too.
	if err := s.repo.UpdatePersonal(ctx, id, profile.PersonalProfile); err != nil {
		return transport.ProfileResponse{}, err
	}

	s.publishScoreChange(ctx, profile, previous, result.Score, true)

	return transport.FromDomain(profile), nil
}

// AddMember appends a staff member to an agency profile.
func (s *Service) AddMember(ctx context.Context, oxyUserID string, id uuid.UUID, req transport.AddAgencyMemberRequest) (transport.ProfileResponse, error) {
	profile, err := s.repo.GetByIDForUser(ctx, id, oxyUserID)
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	if profile.ProfileType == domain.ProfileTypePersonal {
		return transport.ProfileResponse{}, apperr.Validation("personal profiles have no members")
	}

	if profile.AgencyProfile == nil {
		profile.AgencyProfile = &domain.AgencyProfile{}
	}
	if len(profile.AgencyProfile.Members) >= maxAgencyMembers {
		return transport.ProfileResponse{}, apperr.Validation("member limit reached")
	}
	for _, member := range profile.AgencyProfile.Members {
		if member.OxyUserID == req.OxyUserID {
			return transport.ProfileResponse{}, apperr.Conflict("user is already a member")
		}
	}

	profile.AgencyProfile.Members = append(profile.AgencyProfile.Members, domain.AgencyMember{
		OxyUserID: req.OxyUserID,
		Role:      req.Role,
		AddedAt:   time.Now(),
		AddedBy:   oxyUserID,
	})

	previous := storedScore(&profile)
	result := CalculateTrustScore(&profile, true)

	if err := s.repo.UpdateAgency(ctx, id, profile.AgencyProfile); err != nil {
		return transport.ProfileResponse{}, err
	}
	if err := s.repo.UpdatePersonal(ctx, id, profile.PersonalProfile); err != nil {
		return transport.ProfileResponse{}, err
	}

	s.publishScoreChange(ctx, profile, previous, result.Score, true)

	return transport.FromDomain(profile), nil
}

// Delete removes one of the user's profiles.
func (s *Service) Delete(ctx context.Context, oxyUserID string, id uuid.UUID) error {
	return s.repo.Delete(ctx, id, oxyUserID)
}

// TrustScore computes (or serves from cache) the profile's trust score. When
// the calculation ran, the refreshed score is persisted.
func (s *Service) TrustScore(ctx context.Context, oxyUserID string, id uuid.UUID, force bool) (transport.TrustScoreResponse, error) {
	profile, err := s.repo.GetByIDForUser(ctx, id, oxyUserID)
	if err != nil {
		return transport.TrustScoreResponse{}, err
	}

	previous := storedScore(&profile)
	before := lastCalculated(&profile)
	result := CalculateTrustScore(&profile, force)
	after := lastCalculated(&profile)

	recalculated := before == nil || after == nil || !before.Equal(*after)
	if recalculated {
		if err := s.repo.UpdatePersonal(ctx, id, profile.PersonalProfile); err != nil {
			return transport.TrustScoreResponse{}, err
		}
		s.publishScoreChange(ctx, profile, previous, result.Score, force)
	}

	return transport.TrustScoreResponse{
		ProfileID:  id,
		Score:      result.Score,
		Factors:    result.Factors,
		TotalScore: result.TotalScore,
		MaxScore:   result.MaxScore,
		Cached:     !recalculated,
	}, nil
}

// ApplyFactor overwrites a single trust factor and persists the averaged score.
func (s *Service) ApplyFactor(ctx context.Context, oxyUserID string, id uuid.UUID, req transport.ApplyTrustFactorRequest) (transport.TrustScoreResponse, error) {
	profile, err := s.repo.GetByIDForUser(ctx, id, oxyUserID)
	if err != nil {
		return transport.TrustScoreResponse{}, err
	}

	ApplyTrustFactor(&profile, req.Type, req.Value)

	if err := s.repo.UpdatePersonal(ctx, id, profile.PersonalProfile); err != nil {
		return transport.TrustScoreResponse{}, err
	}

	ts := profile.PersonalProfile.TrustScore
	return transport.TrustScoreResponse{
		ProfileID:  id,
		Score:      ts.Score,
		Factors:    ts.Factors,
		TotalScore: ts.TotalScore,
		MaxScore:   ts.MaxScore,
	}, nil
}

// RefreshStaleScores force-recalculates trust scores that are older than the
// given age. It is invoked by the background scheduler and returns the number
// of profiles refreshed.
func (s *Service) RefreshStaleScores(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	profiles, err := s.repo.ListStaleTrustScores(ctx, olderThan, limit)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for i := range profiles {
		profile := profiles[i]
		previous := storedScore(&profile)
		result := CalculateTrustScore(&profile, true)

		if err := s.repo.UpdatePersonal(ctx, profile.ID, profile.PersonalProfile); err != nil {
			s.log.Error("failed to persist refreshed trust score", "profileId", profile.ID, "error", err)
			continue
		}

		s.publishScoreChange(ctx, profile, previous, result.Score, true)
		refreshed++
	}

	return refreshed, nil
}

// ListRoommateCandidates exposes opted-in active personal profiles to the
// roommates module.
func (s *Service) ListRoommateCandidates(ctx context.Context, excludeOxyUserID string) ([]domain.Profile, error) {
	return s.repo.ListRoommateCandidates(ctx, excludeOxyUserID)
}

// GetActiveProfile exposes the active profile domain object to other modules.
func (s *Service) GetActiveProfile(ctx context.Context, oxyUserID string) (domain.Profile, error) {
	return s.repo.GetActiveByUser(ctx, oxyUserID)
}

func (s *Service) publishScoreChange(ctx context.Context, profile domain.Profile, previous, current int, forced bool) {
	if previous == current {
		return
	}

	s.log.TrustScoreEvent(profile.ID.String(), current, forced)
	s.eventBus.Publish(ctx, events.TrustScoreRecalculated{
		BaseEvent:     events.NewBaseEvent(),
		ProfileID:     profile.ID,
		OxyUserID:     profile.OxyUserID,
		Score:         current,
		PreviousScore: previous,
		Forced:        forced,
	})
}

func storedScore(p *domain.Profile) int {
	if p.PersonalProfile == nil || p.PersonalProfile.TrustScore == nil {
		return 0
	}
	return p.PersonalProfile.TrustScore.Score
}

func lastCalculated(p *domain.Profile) *time.Time {
	if p.PersonalProfile == nil || p.PersonalProfile.TrustScore == nil {
		return nil
	}
	return p.PersonalProfile.TrustScore.LastCalculated
}

func normalizePersonal(pp *domain.PersonalProfile) {
	if pp.BasicInfo != nil {
		pp.BasicInfo.PhoneNumber = phone.NormalizeE164(pp.BasicInfo.PhoneNumber)
	}
	if pp.Employment != nil {
		pp.Employment.EmployerPhone = phone.NormalizeE164(pp.Employment.EmployerPhone)
	}
	for i := range pp.References {
		pp.References[i].Phone = phone.NormalizeE164(pp.References[i].Phone)
	}
	for i := range pp.RentalHistory {
		pp.RentalHistory[i].LandlordContact.Phone = phone.NormalizeE164(pp.RentalHistory[i].LandlordContact.Phone)
	}
}
