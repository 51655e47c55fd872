package service

import (
	"math"
	"strings"

	"rental_portal_backend/internal/profiles/domain"
)

// Compatibility point weights. The maxima sum to 100.
const (
	budgetMaxPoints    = 30
	cityMaxPoints      = 20
	smokerMaxPoints    = 10
	petsMaxPoints      = 10
	lifestyleMaxPoints = 10 // per trait: cleanliness, guests, noise
)

// CompatibilityScore rates two roommate preference sets from 0 to 100.
// The function is symmetric and deterministic.
func CompatibilityScore(a, b *domain.RoommatePreferences) int {
	if a == nil || b == nil {
		return 0
	}

	score := budgetScore(a, b)
	score += cityScore(a.Cities, b.Cities)
	score += boolMatchScore(a.Smoker, b.Smoker, smokerMaxPoints)
	score += boolMatchScore(a.Pets, b.Pets, petsMaxPoints)
	score += traitScore(a.Cleanliness, b.Cleanliness)
	score += traitScore(a.Guests, b.Guests)
	score += traitScore(a.Noise, b.Noise)

	return int(math.Round(score))
}

// budgetScore rewards overlapping budget ranges proportionally to how much
// of the narrower range is covered. Unset budgets score neutral.
func budgetScore(a, b *domain.RoommatePreferences) float64 {
	if a.BudgetMaxCents <= 0 || b.BudgetMaxCents <= 0 {
		return budgetMaxPoints / 2.0
	}

	lo := math.Max(float64(a.BudgetMinCents), float64(b.BudgetMinCents))
	hi := math.Min(float64(a.BudgetMaxCents), float64(b.BudgetMaxCents))
	if hi <= lo {
		return 0
	}

	narrower := math.Min(
		float64(a.BudgetMaxCents-a.BudgetMinCents),
		float64(b.BudgetMaxCents-b.BudgetMinCents),
	)
	if narrower <= 0 {
		return budgetMaxPoints
	}

	ratio := (hi - lo) / narrower
	if ratio > 1 {
		ratio = 1
	}
	return budgetMaxPoints * ratio
}

// cityScore rewards a shared preferred city. When either side has no city
// preference the comparison is neutral.
func cityScore(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return cityMaxPoints / 2.0
	}
	for _, cityA := range a {
		for _, cityB := range b {
			if strings.EqualFold(strings.TrimSpace(cityA), strings.TrimSpace(cityB)) {
				return cityMaxPoints
			}
		}
	}
	return 0
}

func boolMatchScore(a, b bool, max float64) float64 {
	if a == b {
		return max
	}
	return 0
}

// traitScore compares 1..5 lifestyle answers; each step of divergence costs a
// quarter of the trait points. Unanswered traits (0) score neutral.
func traitScore(a, b int) float64 {
	if a == 0 || b == 0 {
		return lifestyleMaxPoints / 2.0
	}
	diff := math.Abs(float64(a - b))
	pts := lifestyleMaxPoints - diff*(lifestyleMaxPoints/4.0)
	if pts < 0 {
		return 0
	}
	return pts
}

// SharedCities returns the case-insensitive intersection of two city lists,
// in the order of the first list.
func SharedCities(a, b []string) []string {
	shared := make([]string, 0)
	for _, cityA := range a {
		for _, cityB := range b {
			if strings.EqualFold(strings.TrimSpace(cityA), strings.TrimSpace(cityB)) {
				shared = append(shared, strings.TrimSpace(cityA))
				break
			}
		}
	}
	return shared
}
