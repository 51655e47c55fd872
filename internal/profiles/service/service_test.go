package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"rental_portal_backend/internal/events"
	"rental_portal_backend/internal/profiles/domain"
	"rental_portal_backend/internal/profiles/repository"
	"rental_portal_backend/internal/profiles/transport"
	"rental_portal_backend/platform/apperr"
	"rental_portal_backend/platform/logger"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]domain.Profile
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{profiles: make(map[uuid.UUID]domain.Profile)}
}

var _ repository.Repository = (*fakeRepo)(nil)

func (f *fakeRepo) Create(_ context.Context, params repository.CreateParams) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.OxyUserID == params.OxyUserID && p.ProfileType == params.ProfileType {
			return domain.Profile{}, apperr.Conflict("profile of this type already exists")
		}
	}
	now := time.Now()
	p := domain.Profile{
		ID:              uuid.New(),
		OxyUserID:       params.OxyUserID,
		ProfileType:     params.ProfileType,
		PersonalProfile: params.PersonalProfile,
		AgencyProfile:   params.AgencyProfile,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	f.profiles[p.ID] = p
	return p, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return domain.Profile{}, apperr.NotFound("profile not found")
	}
	return p, nil
}

func (f *fakeRepo) GetByIDForUser(_ context.Context, id uuid.UUID, oxyUserID string) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok || p.OxyUserID != oxyUserID {
		return domain.Profile{}, apperr.NotFound("profile not found")
	}
	return p, nil
}

func (f *fakeRepo) GetActiveByUser(_ context.Context, oxyUserID string) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.OxyUserID == oxyUserID && p.IsActive {
			return p, nil
		}
	}
	return domain.Profile{}, apperr.NotFound("no active profile")
}

func (f *fakeRepo) ListByUser(_ context.Context, oxyUserID string) ([]domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []domain.Profile
	for _, p := range f.profiles {
		if p.OxyUserID == oxyUserID {
			results = append(results, p)
		}
	}
	return results, nil
}

func (f *fakeRepo) ListRoommateCandidates(_ context.Context, excludeOxyUserID string) ([]domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []domain.Profile
	for _, p := range f.profiles {
		if p.OxyUserID == excludeOxyUserID || !p.IsActive || p.PersonalProfile == nil {
			continue
		}
		if p.PersonalProfile.Roommate != nil && p.PersonalProfile.Roommate.Enabled {
			results = append(results, p)
		}
	}
	return results, nil
}

func (f *fakeRepo) ListStaleTrustScores(_ context.Context, olderThan time.Time, limit int) ([]domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []domain.Profile
	for _, p := range f.profiles {
		if !p.IsActive || len(results) >= limit {
			continue
		}
		ts := (*domain.TrustScore)(nil)
		if p.PersonalProfile != nil {
			ts = p.PersonalProfile.TrustScore
		}
		if ts == nil || ts.LastCalculated == nil || ts.LastCalculated.Before(olderThan) {
			results = append(results, p)
		}
	}
	return results, nil
}

func (f *fakeRepo) Activate(_ context.Context, oxyUserID string, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	target, ok := f.profiles[id]
	if !ok || target.OxyUserID != oxyUserID {
		return apperr.NotFound("profile not found")
	}
	for pid, p := range f.profiles {
		if p.OxyUserID == oxyUserID {
			p.IsActive = pid == id
			f.profiles[pid] = p
		}
	}
	return nil
}

func (f *fakeRepo) UpdatePersonal(_ context.Context, id uuid.UUID, personal *domain.PersonalProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return apperr.NotFound("profile not found")
	}
	p.PersonalProfile = personal
	f.profiles[id] = p
	return nil
}

func (f *fakeRepo) UpdateAgency(_ context.Context, id uuid.UUID, agency *domain.AgencyProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return apperr.NotFound("profile not found")
	}
	p.AgencyProfile = agency
	f.profiles[id] = p
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID, oxyUserID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok || p.OxyUserID != oxyUserID {
		return apperr.NotFound("profile not found")
	}
	delete(f.profiles, id)
	return nil
}

// recordingBus captures published events synchronously.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) named(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var matched []events.Event
	for _, e := range b.events {
		if e.EventName() == name {
			matched = append(matched, e)
		}
	}
	return matched
}

func newTestService() (*Service, *fakeRepo, *recordingBus) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	return New(repo, bus, logger.New("test")), repo, bus
}

func TestCreateFirstProfileBecomesActive(t *testing.T) {
	svc, _, bus := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", transport.CreateProfileRequest{
		ProfileType: domain.ProfileTypePersonal,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !created.IsActive {
		t.Fatalf("expected first profile to be active")
	}

	if got := bus.named("profiles.profile.created"); len(got) != 1 {
		t.Fatalf("expected 1 created event, got %d", len(got))
	}
}

func TestCreateSecondProfileStaysInactive(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "user-1", transport.CreateProfileRequest{ProfileType: domain.ProfileTypePersonal}); err != nil {
		t.Fatalf("Create personal returned error: %v", err)
	}
	agency, err := svc.Create(ctx, "user-1", transport.CreateProfileRequest{ProfileType: domain.ProfileTypeAgency})
	if err != nil {
		t.Fatalf("Create agency returned error: %v", err)
	}
	if agency.IsActive {
		t.Fatalf("expected second profile to stay inactive")
	}

	active, err := svc.GetActive(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetActive returned error: %v", err)
	}
	if active.ProfileType != domain.ProfileTypePersonal {
		t.Fatalf("expected personal profile to remain active, got %s", active.ProfileType)
	}
}

func TestCreateDuplicateTypeConflicts(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "user-1", transport.CreateProfileRequest{ProfileType: domain.ProfileTypePersonal}); err != nil {
		t.Fatalf("first Create returned error: %v", err)
	}
	_, err := svc.Create(ctx, "user-1", transport.CreateProfileRequest{ProfileType: domain.ProfileTypePersonal})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), "user-1", transport.CreateProfileRequest{ProfileType: "llc"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestActivateSwitchesActiveProfile(t *testing.T) {
	svc, _, bus := newTestService()
	ctx := context.Background()

	personal, err := svc.Create(ctx, "user-1", transport.CreateProfileRequest{ProfileType: domain.ProfileTypePersonal})
	if err != nil {
		t.Fatalf("Create personal returned error: %v", err)
	}
	agency, err := svc.Create(ctx, "user-1", transport.CreateProfileRequest{ProfileType: domain.ProfileTypeAgency})
	if err != nil {
		t.Fatalf("Create agency returned error: %v", err)
	}

	if err := svc.Activate(ctx, "user-1", agency.ID); err != nil {
		t.Fatalf("Activate returned error: %v", err)
	}

	active, err := svc.GetActive(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetActive returned error: %v", err)
	}
	if active.ID != agency.ID {
		t.Fatalf("expected agency profile active, got %s", active.ID)
	}
	refreshed, err := svc.Get(ctx, "user-1", personal.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if refreshed.IsActive {
		t.Fatalf("expected personal profile deactivated")
	}

	if got := bus.named("profiles.profile.activated"); len(got) != 1 {
		t.Fatalf("expected 1 activated event, got %d", len(got))
	}
}

func TestActivateOtherUsersProfileFails(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", transport.CreateProfileRequest{ProfileType: domain.ProfileTypePersonal})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	err = svc.Activate(ctx, "user-2", created.ID)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdatePersonalNormalizesPhoneAndScores(t *testing.T) {
	svc, repo, bus := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", transport.CreateProfileRequest{ProfileType: domain.ProfileTypePersonal})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	updated, err := svc.UpdatePersonal(ctx, "user-1", created.ID, transport.UpdatePersonalProfileRequest{
		BasicInfo: &domain.BasicInfo{
			FirstName:   "Ada",
			PhoneNumber: "(212) 555-0147",
		},
	})
	if err != nil {
		t.Fatalf("UpdatePersonal returned error: %v", err)
	}

	if got := updated.PersonalProfile.BasicInfo.PhoneNumber; got != "+12125550147" {
		t.Fatalf("expected normalized phone, got %q", got)
	}
	// firstName (2) + phone (3) of 20 possible → 25.
	if got := updated.PersonalProfile.TrustScore.Score; got != 25 {
		t.Fatalf("expected trust score 25, got %d", got)
	}

	stored, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if stored.PersonalProfile.TrustScore == nil || stored.PersonalProfile.TrustScore.Score != 25 {
		t.Fatalf("expected persisted trust score 25")
	}

	if got := bus.named("profiles.trustscore.recalculated"); len(got) != 1 {
		t.Fatalf("expected 1 recalculated event, got %d", len(got))
	}
}

func TestUpdateAgencyRejectedForPersonalProfile(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", transport.CreateProfileRequest{ProfileType: domain.ProfileTypePersonal})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	_, err = svc.UpdateAgency(ctx, "user-1", created.ID, transport.UpdateAgencyProfileRequest{})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddMemberRejectsDuplicates(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", transport.CreateProfileRequest{ProfileType: domain.ProfileTypeAgency})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	first, err := svc.AddMember(ctx, "user-1", created.ID, transport.AddAgencyMemberRequest{OxyUserID: "user-9", Role: "agent"})
	if err != nil {
		t.Fatalf("AddMember returned error: %v", err)
	}
	if len(first.AgencyProfile.Members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(first.AgencyProfile.Members))
	}
	if first.AgencyProfile.Members[0].AddedBy != "user-1" {
		t.Fatalf("expected addedBy user-1, got %q", first.AgencyProfile.Members[0].AddedBy)
	}

	_, err = svc.AddMember(ctx, "user-1", created.ID, transport.AddAgencyMemberRequest{OxyUserID: "user-9"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestTrustScoreServedFromCache(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", transport.CreateProfileRequest{
		ProfileType: domain.ProfileTypePersonal,
		PersonalProfile: &domain.PersonalProfile{
			Verification: &domain.Verification{Identity: true, Income: true},
		},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	first, err := svc.TrustScore(ctx, "user-1", created.ID, false)
	if err != nil {
		t.Fatalf("TrustScore returned error: %v", err)
	}
	if first.Cached {
		t.Fatalf("expected first call to compute")
	}
	if first.Score != 67 {
		t.Fatalf("expected score 67, got %d", first.Score)
	}

	second, err := svc.TrustScore(ctx, "user-1", created.ID, false)
	if err != nil {
		t.Fatalf("TrustScore returned error: %v", err)
	}
	if !second.Cached {
		t.Fatalf("expected second call to hit the cache")
	}
	if second.Score != first.Score {
		t.Fatalf("expected cached score %d, got %d", first.Score, second.Score)
	}

	forced, err := svc.TrustScore(ctx, "user-1", created.ID, true)
	if err != nil {
		t.Fatalf("TrustScore returned error: %v", err)
	}
	if forced.Cached {
		t.Fatalf("expected forced call to recompute")
	}
}

func TestApplyFactorPersistsAveragedScore(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", transport.CreateProfileRequest{ProfileType: domain.ProfileTypePersonal})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	result, err := svc.ApplyFactor(ctx, "user-1", created.ID, transport.ApplyTrustFactorRequest{
		Type:  FactorVerification,
		Value: 10,
	})
	if err != nil {
		t.Fatalf("ApplyFactor returned error: %v", err)
	}
	if result.Score != 10 {
		t.Fatalf("expected averaged score 10, got %d", result.Score)
	}

	stored, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if stored.PersonalProfile.TrustScore.Score != 10 {
		t.Fatalf("expected persisted score 10, got %d", stored.PersonalProfile.TrustScore.Score)
	}
}

func TestRefreshStaleScores(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", transport.CreateProfileRequest{
		ProfileType: domain.ProfileTypePersonal,
		PersonalProfile: &domain.PersonalProfile{
			Verification: &domain.Verification{Identity: true},
		},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	refreshed, err := svc.RefreshStaleScores(ctx, time.Now().Add(-24*time.Hour), 100)
	if err != nil {
		t.Fatalf("RefreshStaleScores returned error: %v", err)
	}
	if refreshed != 1 {
		t.Fatalf("expected 1 refreshed profile, got %d", refreshed)
	}

	stored, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	ts := stored.PersonalProfile.TrustScore
	if ts == nil || ts.LastCalculated == nil {
		t.Fatalf("expected trust score persisted with timestamp")
	}
	// identity only: 5 of 15 → 33.
	if ts.Score != 33 {
		t.Fatalf("expected score 33, got %d", ts.Score)
	}
}
