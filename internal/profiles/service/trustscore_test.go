package service

import (
	"testing"
	"time"

	"rental_portal_backend/internal/profiles/domain"
)

func TestCalculateTrustScore_EmptyProfileScoresZero(t *testing.T) {
	p := &domain.Profile{ProfileType: domain.ProfileTypePersonal}

	result := CalculateTrustScore(p, true)

	if result.Score != 0 {
		t.Fatalf("expected score 0, got %d", result.Score)
	}
	if len(result.Factors) != 0 {
		t.Fatalf("expected no factors, got %d", len(result.Factors))
	}
	if result.TotalScore != 0 || result.MaxScore != 0 {
		t.Fatalf("expected zero totals, got total=%v max=%v", result.TotalScore, result.MaxScore)
	}
	if p.PersonalProfile == nil || p.PersonalProfile.TrustScore == nil {
		t.Fatal("expected trust score to be written back onto the profile")
	}
}

func TestCalculateTrustScore_BasicInfoOnly(t *testing.T) {
	p := &domain.Profile{
		ProfileType: domain.ProfileTypePersonal,
		PersonalProfile: &domain.PersonalProfile{
			BasicInfo: &domain.BasicInfo{FirstName: "A", LastName: "B"},
		},
	}

	result := CalculateTrustScore(p, true)

	if len(result.Factors) != 1 {
		t.Fatalf("expected 1 factor, got %d", len(result.Factors))
	}
	f := result.Factors[0]
	if f.Type != FactorBasicInfo {
		t.Fatalf("expected basic_info factor, got %s", f.Type)
	}
	if f.Value != 4 || f.MaxValue != 20 {
		t.Fatalf("expected value 4 of 20, got %v of %v", f.Value, f.MaxValue)
	}
	if result.Score != 20 {
		t.Fatalf("expected score 20, got %d", result.Score)
	}
}

func TestCalculateTrustScore_VerificationOnly(t *testing.T) {
	p := &domain.Profile{
		ProfileType: domain.ProfileTypePersonal,
		PersonalProfile: &domain.PersonalProfile{
			Verification: &domain.Verification{Identity: true, Income: true},
		},
	}

	result := CalculateTrustScore(p, true)

	if len(result.Factors) != 1 {
		t.Fatalf("expected 1 factor, got %d", len(result.Factors))
	}
	f := result.Factors[0]
	if f.Value != 10 || f.MaxValue != 15 {
		t.Fatalf("expected value 10 of 15, got %v of %v", f.Value, f.MaxValue)
	}
	if result.Score != 67 {
		t.Fatalf("expected score 67, got %d", result.Score)
	}
}

func TestCalculateTrustScore_AgencyMembersCapped(t *testing.T) {
	members := make([]domain.AgencyMember, 6)
	for i := range members {
		members[i] = domain.AgencyMember{OxyUserID: "user", Role: "agent"}
	}
	p := &domain.Profile{
		ProfileType:   domain.ProfileTypeAgency,
		AgencyProfile: &domain.AgencyProfile{Members: members},
	}

	result := CalculateTrustScore(p, true)

	if len(result.Factors) != 1 {
		t.Fatalf("expected 1 factor, got %d", len(result.Factors))
	}
	f := result.Factors[0]
	if f.Type != FactorAgencyMembers {
		t.Fatalf("expected agency_members factor, got %s", f.Type)
	}
	if f.Value != 10 || f.MaxValue != 10 {
		t.Fatalf("expected value 10 of 10, got %v of %v", f.Value, f.MaxValue)
	}
	if result.Score != 100 {
		t.Fatalf("expected score 100, got %d", result.Score)
	}
}

func TestCalculateTrustScore_ReferencesCapped(t *testing.T) {
	refs := make([]domain.Reference, 5)
	for i := range refs {
		refs[i] = domain.Reference{
			Name:         "Ref",
			Relationship: "landlord",
			Phone:        "+15550100",
			Email:        "ref@example.com",
			Verified:     true,
		}
	}
	p := &domain.Profile{
		ProfileType:     domain.ProfileTypePersonal,
		PersonalProfile: &domain.PersonalProfile{References: refs},
	}

	result := CalculateTrustScore(p, true)

	f := result.Factors[0]
	if f.Value != 20 || f.MaxValue != 20 {
		t.Fatalf("expected capped value 20 of 20, got %v of %v", f.Value, f.MaxValue)
	}
}

func TestCalculateTrustScore_RentalHistoryCapped(t *testing.T) {
	entries := make([]domain.RentalHistoryEntry, 3)
	for i := range entries {
		entries[i] = domain.RentalHistoryEntry{
			Address:          "1 Main St",
			StartDate:        "2020-01-01",
			EndDate:          "2021-01-01",
			ReasonForLeaving: "moved",
			LandlordContact:  domain.LandlordContact{Name: "L", Phone: "+15550100", Email: "l@example.com"},
			Verified:         true,
		}
	}
	p := &domain.Profile{
		ProfileType:     domain.ProfileTypePersonal,
		PersonalProfile: &domain.PersonalProfile{RentalHistory: entries},
	}

	result := CalculateTrustScore(p, true)

	f := result.Factors[0]
	if f.Type != FactorRentalHistory {
		t.Fatalf("expected rental_history factor, got %s", f.Type)
	}
	if f.Value != 20 || f.MaxValue != 20 {
		t.Fatalf("expected capped value 20 of 20, got %v of %v", f.Value, f.MaxValue)
	}
}

func TestCalculateTrustScore_FactorOrderFixed(t *testing.T) {
	p := &domain.Profile{
		ProfileType: domain.ProfileTypePersonal,
		PersonalProfile: &domain.PersonalProfile{
			BasicInfo:     &domain.BasicInfo{FirstName: "A"},
			Employment:    &domain.Employment{EmploymentStatus: "employed"},
			References:    []domain.Reference{{Name: "R"}},
			RentalHistory: []domain.RentalHistoryEntry{{Address: "1 Main St"}},
			Verification:  &domain.Verification{Identity: true},
		},
		AgencyProfile: &domain.AgencyProfile{
			BusinessInfo: &domain.BusinessInfo{BusinessName: "Biz"},
			Verification: &domain.AgencyVerification{Insurance: true},
			Members:      []domain.AgencyMember{{OxyUserID: "u"}},
		},
	}

	result := CalculateTrustScore(p, true)

	want := []string{
		FactorBasicInfo, FactorEmployment, FactorReferences, FactorRentalHistory,
		FactorVerification, FactorAgencyBusiness, FactorAgencyVerification, FactorAgencyMembers,
	}
	if len(result.Factors) != len(want) {
		t.Fatalf("expected %d factors, got %d", len(want), len(result.Factors))
	}
	for i, factorType := range want {
		if result.Factors[i].Type != factorType {
			t.Fatalf("factor %d: expected %s, got %s", i, factorType, result.Factors[i].Type)
		}
	}
}

func TestCalculateTrustScore_ScoreAlwaysWithinRange(t *testing.T) {
	profiles := []*domain.Profile{
		{ProfileType: domain.ProfileTypePersonal},
		{
			ProfileType: domain.ProfileTypePersonal,
			PersonalProfile: &domain.PersonalProfile{
				BasicInfo: &domain.BasicInfo{
					FirstName: "A", LastName: "B", DateOfBirth: "1990-01-01",
					PhoneNumber: "+15550100", EmergencyContact: "+15550101",
					Nationality: "US", Languages: []string{"en"}, Bio: "longer than ten chars",
				},
				Employment: &domain.Employment{
					EmploymentStatus: "employed", EmployerName: "Acme", JobTitle: "Dev",
					EmploymentStartDate: "2019-01-01", MonthlyIncome: 4200,
					EmploymentType: "full_time", EmployerPhone: "+15550102",
				},
				Verification: &domain.Verification{Identity: true, Income: true, Background: true, RentalHistory: true},
			},
		},
	}

	for i, p := range profiles {
		result := CalculateTrustScore(p, true)
		if result.Score < 0 || result.Score > 100 {
			t.Fatalf("profile %d: score %d out of range", i, result.Score)
		}
	}
}

func TestCalculateTrustScore_Idempotent(t *testing.T) {
	p := &domain.Profile{
		ProfileType: domain.ProfileTypePersonal,
		PersonalProfile: &domain.PersonalProfile{
			BasicInfo:    &domain.BasicInfo{FirstName: "A", LastName: "B", Bio: "hello world, bio"},
			Verification: &domain.Verification{Identity: true},
		},
	}

	first := CalculateTrustScore(p, true)
	second := CalculateTrustScore(p, true)

	if first.Score != second.Score || first.TotalScore != second.TotalScore || first.MaxScore != second.MaxScore {
		t.Fatalf("forced recalculation not idempotent: %+v vs %+v", first, second)
	}
	if len(first.Factors) != len(second.Factors) {
		t.Fatalf("factor count changed between runs: %d vs %d", len(first.Factors), len(second.Factors))
	}
}

func TestCalculateTrustScore_CacheReturnsStoredResult(t *testing.T) {
	now := time.Now()
	p := &domain.Profile{
		ProfileType: domain.ProfileTypePersonal,
		PersonalProfile: &domain.PersonalProfile{
			BasicInfo: &domain.BasicInfo{FirstName: "A", LastName: "B"},
		},
	}

	first := calculateTrustScoreAt(p, true, now)
	if first.Score != 20 {
		t.Fatalf("expected initial score 20, got %d", first.Score)
	}

	// Mutate the underlying profile; a fresh cache must still win.
	p.PersonalProfile.BasicInfo.DateOfBirth = "1990-01-01"

	cached := calculateTrustScoreAt(p, false, now.Add(30*time.Minute))
	if cached.Score != 20 {
		t.Fatalf("expected cached score 20, got %d", cached.Score)
	}

	// Past the TTL the mutation is picked up.
	stale := calculateTrustScoreAt(p, false, now.Add(2*time.Hour))
	if stale.Score != 35 {
		t.Fatalf("expected recomputed score 35, got %d", stale.Score)
	}
}

func TestCalculateTrustScore_ForceBypassesCache(t *testing.T) {
	now := time.Now()
	p := &domain.Profile{
		ProfileType: domain.ProfileTypePersonal,
		PersonalProfile: &domain.PersonalProfile{
			BasicInfo: &domain.BasicInfo{FirstName: "A", LastName: "B"},
		},
	}

	calculateTrustScoreAt(p, true, now)
	p.PersonalProfile.BasicInfo.PhoneNumber = "+15550100"

	forced := calculateTrustScoreAt(p, true, now.Add(time.Minute))
	if forced.Score != 35 {
		t.Fatalf("expected forced recomputation to see the mutation, got score %d", forced.Score)
	}
}

func TestApplyTrustFactor_OverwritesExistingFactor(t *testing.T) {
	now := time.Now()
	p := &domain.Profile{
		ProfileType: domain.ProfileTypePersonal,
		PersonalProfile: &domain.PersonalProfile{
			TrustScore: &domain.TrustScore{
				Factors: []domain.Factor{
					{Type: FactorBasicInfo, Value: 10, MaxValue: 20},
					{Type: FactorEmployment, Value: 20, MaxValue: 25},
				},
			},
		},
	}

	applyTrustFactorAt(p, FactorBasicInfo, 16, now)

	ts := p.PersonalProfile.TrustScore
	if len(ts.Factors) != 2 {
		t.Fatalf("expected 2 factors, got %d", len(ts.Factors))
	}
	if ts.Factors[0].Value != 16 {
		t.Fatalf("expected overwritten value 16, got %v", ts.Factors[0].Value)
	}
	if ts.Factors[0].UpdatedAt == nil || !ts.Factors[0].UpdatedAt.Equal(now) {
		t.Fatal("expected updatedAt to be set on the overwritten factor")
	}
	// Plain average of raw values: round((16+20)/2) = 18.
	if ts.Score != 18 {
		t.Fatalf("expected mean score 18, got %d", ts.Score)
	}
}

func TestApplyTrustFactor_AppendsMissingFactor(t *testing.T) {
	now := time.Now()
	p := &domain.Profile{ProfileType: domain.ProfileTypePersonal}

	applyTrustFactorAt(p, FactorVerification, 9, now)

	ts := p.PersonalProfile.TrustScore
	if len(ts.Factors) != 1 {
		t.Fatalf("expected 1 factor, got %d", len(ts.Factors))
	}
	if ts.Factors[0].Type != FactorVerification || ts.Factors[0].Value != 9 {
		t.Fatalf("unexpected appended factor %+v", ts.Factors[0])
	}
	if ts.Score != 9 {
		t.Fatalf("expected mean score 9, got %d", ts.Score)
	}
}

func TestApplyTrustFactor_MeanDiffersFromWeightedScore(t *testing.T) {
	// The incremental path intentionally ignores MaxValue weights.
	now := time.Now()
	p := &domain.Profile{
		ProfileType: domain.ProfileTypePersonal,
		PersonalProfile: &domain.PersonalProfile{
			Verification: &domain.Verification{Identity: true, Income: true},
		},
	}

	weighted := calculateTrustScoreAt(p, true, now)
	if weighted.Score != 67 {
		t.Fatalf("expected weighted score 67, got %d", weighted.Score)
	}

	applyTrustFactorAt(p, FactorVerification, 10, now)
	if p.PersonalProfile.TrustScore.Score != 10 {
		t.Fatalf("expected mean-normalized score 10, got %d", p.PersonalProfile.TrustScore.Score)
	}
}
