package service

import (
	"math"
	"time"

	"rental_portal_backend/internal/profiles/domain"
)

// Trust score category tags, in evaluation order. Personal categories always
// precede agency categories.
const (
	FactorBasicInfo          = "basic_info"
	FactorEmployment         = "employment"
	FactorReferences         = "references"
	FactorRentalHistory      = "rental_history"
	FactorVerification       = "verification"
	FactorAgencyBusiness     = "agency_business"
	FactorAgencyVerification = "agency_verification"
	FactorAgencyMembers      = "agency_members"
)

// trustScoreCacheTTL is how long a previously computed score stays valid.
const trustScoreCacheTTL = time.Hour

// CalculateTrustScore computes the weighted completeness/verification score of
// a profile. Categories whose sub-document is absent contribute neither points
// nor max points. The result is written back onto the profile's
// personalProfile.trustScore slot (the caller persists it); a cached result
// younger than one hour is returned verbatim unless forceRecalculate is set.
func CalculateTrustScore(p *domain.Profile, forceRecalculate bool) domain.ScoreResult {
	return calculateTrustScoreAt(p, forceRecalculate, time.Now())
}

func calculateTrustScoreAt(p *domain.Profile, forceRecalculate bool, now time.Time) domain.ScoreResult {
	if !forceRecalculate {
		if cached, ok := cachedTrustScore(p, now); ok {
			return cached
		}
	}

	var totalScore, maxScore float64
	var factors []domain.Factor

	appendFactor := func(f domain.Factor) {
		totalScore += f.Value
		maxScore += f.MaxValue
		factors = append(factors, f)
	}

	if pp := p.PersonalProfile; pp != nil {
		if pp.BasicInfo != nil {
			appendFactor(scoreBasicInfo(pp.BasicInfo))
		}
		if pp.Employment != nil {
			appendFactor(scoreEmployment(pp.Employment))
		}
		if len(pp.References) > 0 {
			appendFactor(scoreReferences(pp.References))
		}
		if len(pp.RentalHistory) > 0 {
			appendFactor(scoreRentalHistory(pp.RentalHistory))
		}
		if pp.Verification != nil {
			appendFactor(scoreVerification(pp.Verification))
		}
	}

	if ap := p.AgencyProfile; ap != nil {
		if ap.BusinessInfo != nil {
			appendFactor(scoreBusinessInfo(ap.BusinessInfo))
		}
		if ap.Verification != nil {
			appendFactor(scoreAgencyVerification(ap.Verification))
		}
		if len(ap.Members) > 0 {
			appendFactor(scoreAgencyMembers(ap.Members))
		}
	}

	score := 0
	if maxScore > 0 {
		score = int(math.Round(100 * totalScore / maxScore))
	}

	result := domain.ScoreResult{
		Score:      score,
		Factors:    factors,
		TotalScore: totalScore,
		MaxScore:   maxScore,
	}

	storeTrustScore(p, result, now)
	return result
}

// ApplyTrustFactor overwrites (or appends) a single factor and recomputes the
// overall score as a plain average of the raw factor values. This is a
// deliberately different normalization from CalculateTrustScore, kept as
// observed behavior for downstream consumers of the incremental path.
func ApplyTrustFactor(p *domain.Profile, factorType string, value float64) {
	applyTrustFactorAt(p, factorType, value, time.Now())
}

func applyTrustFactorAt(p *domain.Profile, factorType string, value float64, now time.Time) {
	ts := ensureTrustScore(p)

	updated := false
	for i := range ts.Factors {
		if ts.Factors[i].Type == factorType {
			ts.Factors[i].Value = value
			ts.Factors[i].UpdatedAt = &now
			updated = true
			break
		}
	}
	if !updated {
		ts.Factors = append(ts.Factors, domain.Factor{
			Type:      factorType,
			Value:     value,
			UpdatedAt: &now,
		})
	}

	var sum float64
	for _, f := range ts.Factors {
		sum += f.Value
	}
	ts.Score = 0
	if len(ts.Factors) > 0 {
		ts.Score = int(math.Round(sum / float64(len(ts.Factors))))
	}
}

// cachedTrustScore returns the stored score when it is still fresh.
func cachedTrustScore(p *domain.Profile, now time.Time) (domain.ScoreResult, bool) {
	pp := p.PersonalProfile
	if pp == nil || pp.TrustScore == nil || pp.TrustScore.LastCalculated == nil {
		return domain.ScoreResult{}, false
	}
	if now.Sub(*pp.TrustScore.LastCalculated) >= trustScoreCacheTTL {
		return domain.ScoreResult{}, false
	}

	ts := pp.TrustScore
	return domain.ScoreResult{
		Score:      ts.Score,
		Factors:    ts.Factors,
		TotalScore: ts.TotalScore,
		MaxScore:   ts.MaxScore,
	}, true
}

// storeTrustScore mirrors the result onto personalProfile.trustScore for all
// profile types (agency scores are stored under personal for storage
// uniformity), creating the container when missing.
func storeTrustScore(p *domain.Profile, result domain.ScoreResult, now time.Time) {
	if p.PersonalProfile == nil {
		p.PersonalProfile = &domain.PersonalProfile{}
	}
	p.PersonalProfile.TrustScore = &domain.TrustScore{
		Score:          result.Score,
		Factors:        result.Factors,
		TotalScore:     result.TotalScore,
		MaxScore:       result.MaxScore,
		LastCalculated: &now,
	}
}

func ensureTrustScore(p *domain.Profile) *domain.TrustScore {
	if p.PersonalProfile == nil {
		p.PersonalProfile = &domain.PersonalProfile{}
	}
	if p.PersonalProfile.TrustScore == nil {
		p.PersonalProfile.TrustScore = &domain.TrustScore{}
	}
	return p.PersonalProfile.TrustScore
}

func scoreBasicInfo(info *domain.BasicInfo) domain.Factor {
	var pts float64
	if info.FirstName != "" {
		pts += 2
	}
	if info.LastName != "" {
		pts += 2
	}
	if info.DateOfBirth != "" {
		pts += 3
	}
	if info.PhoneNumber != "" {
		pts += 3
	}
	if info.EmergencyContact != "" {
		pts += 3
	}
	if info.Nationality != "" {
		pts += 2
	}
	if len(info.Languages) > 0 {
		pts += 2
	}
	if len(info.Bio) > 10 {
		pts += 3
	}
	return domain.Factor{Type: FactorBasicInfo, Value: pts, MaxValue: 20, Label: "Basic Information"}
}

func scoreEmployment(emp *domain.Employment) domain.Factor {
	var pts float64
	if emp.EmploymentStatus != "" {
		pts += 5
	}
	if emp.EmployerName != "" {
		pts += 5
	}
	if emp.JobTitle != "" {
		pts += 3
	}
	if emp.EmploymentStartDate != "" {
		pts += 3
	}
	if emp.MonthlyIncome > 0 {
		pts += 5
	}
	if emp.EmploymentType != "" {
		pts += 2
	}
	if emp.EmployerPhone != "" {
		pts += 2
	}
	return domain.Factor{Type: FactorEmployment, Value: pts, MaxValue: 25, Label: "Employment Details"}
}

func scoreReferences(refs []domain.Reference) domain.Factor {
	var pts float64
	for _, ref := range refs {
		if ref.Name != "" {
			pts += 2
		}
		if ref.Relationship != "" {
			pts += 1
		}
		if ref.Phone != "" {
			pts += 2
		}
		if ref.Email != "" {
			pts += 1
		}
		if ref.Verified {
			pts += 1
		}
	}
	return domain.Factor{Type: FactorReferences, Value: capPoints(pts, 20), MaxValue: 20, Label: "References"}
}

func scoreRentalHistory(entries []domain.RentalHistoryEntry) domain.Factor {
	var pts float64
	for _, entry := range entries {
		if entry.Address != "" {
			pts += 3
		}
		if entry.StartDate != "" {
			pts += 2
		}
		if entry.EndDate != "" {
			pts += 2
		}
		if entry.ReasonForLeaving != "" {
			pts += 2
		}
		if entry.LandlordContact.Name != "" {
			pts += 2
		}
		if entry.LandlordContact.Phone != "" {
			pts += 2
		}
		if entry.LandlordContact.Email != "" {
			pts += 2
		}
		if entry.Verified {
			pts += 2
		}
	}
	return domain.Factor{Type: FactorRentalHistory, Value: capPoints(pts, 20), MaxValue: 20, Label: "Rental History"}
}

func scoreVerification(v *domain.Verification) domain.Factor {
	var pts float64
	if v.Identity {
		pts += 5
	}
	if v.Income {
		pts += 5
	}
	if v.Background {
		pts += 3
	}
	if v.RentalHistory {
		pts += 2
	}
	return domain.Factor{Type: FactorVerification, Value: pts, MaxValue: 15, Label: "Verification Status"}
}

func scoreBusinessInfo(info *domain.BusinessInfo) domain.Factor {
	var pts float64
	if info.BusinessName != "" {
		pts += 3
	}
	if info.BusinessType != "" {
		pts += 2
	}
	if info.LicenseNumber != "" {
		pts += 5
	}
	if info.TaxID != "" {
		pts += 3
	}
	if info.Website != "" {
		pts += 2
	}
	if info.BusinessPhone != "" {
		pts += 2
	}
	if info.BusinessEmail != "" {
		pts += 2
	}
	if info.BusinessAddress != "" {
		pts += 1
	}
	return domain.Factor{Type: FactorAgencyBusiness, Value: pts, MaxValue: 20, Label: "Business Information"}
}

func scoreAgencyVerification(v *domain.AgencyVerification) domain.Factor {
	var pts float64
	if v.BusinessLicense {
		pts += 5
	}
	if v.Insurance {
		pts += 5
	}
	if v.Bonding {
		pts += 3
	}
	if v.BackgroundCheck {
		pts += 2
	}
	return domain.Factor{Type: FactorAgencyVerification, Value: pts, MaxValue: 15, Label: "Business Verification"}
}

func scoreAgencyMembers(members []domain.AgencyMember) domain.Factor {
	pts := capPoints(float64(len(members))*2, 10)
	return domain.Factor{Type: FactorAgencyMembers, Value: pts, MaxValue: 10, Label: "Team Members"}
}

func capPoints(pts, max float64) float64 {
	if pts < 0 {
		return 0
	}
	if pts > max {
		return max
	}
	return pts
}
