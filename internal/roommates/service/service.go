package service

import (
	"context"
	"sort"

	"rental_portal_backend/internal/profiles/domain"
	"rental_portal_backend/internal/roommates/transport"
	"rental_portal_backend/platform/apperr"
)

const maxMatches = 50

// ProfileSource exposes the profile data the matcher needs.
type ProfileSource interface {
	GetActiveProfile(ctx context.Context, oxyUserID string) (domain.Profile, error)
	ListRoommateCandidates(ctx context.Context, excludeOxyUserID string) ([]domain.Profile, error)
}

// Service ranks roommate candidates against the caller's preferences.
type Service struct {
	profiles ProfileSource
}

// New creates a new roommates service.
func New(profiles ProfileSource) *Service {
	return &Service{profiles: profiles}
}

// Matches returns opted-in candidates ranked by compatibility with the
// caller's active profile. Ordering is deterministic: score descending,
// profile ID ascending on ties.
func (s *Service) Matches(ctx context.Context, oxyUserID string) (transport.MatchesResponse, error) {
	me, err := s.profiles.GetActiveProfile(ctx, oxyUserID)
	if err != nil {
		return transport.MatchesResponse{}, err
	}

	myPrefs := roommatePrefs(me)
	if myPrefs == nil || !myPrefs.Enabled {
		return transport.MatchesResponse{}, apperr.Validation("roommate matching is not enabled on the active profile")
	}

	candidates, err := s.profiles.ListRoommateCandidates(ctx, oxyUserID)
	if err != nil {
		return transport.MatchesResponse{}, err
	}

	matches := make([]transport.Match, 0, len(candidates))
	for _, candidate := range candidates {
		prefs := roommatePrefs(candidate)
		if prefs == nil || !prefs.Enabled {
			continue
		}

		match := transport.Match{
			ProfileID:    candidate.ID,
			Score:        CompatibilityScore(myPrefs, prefs),
			SharedCities: SharedCities(myPrefs.Cities, prefs.Cities),
		}
		if info := candidate.PersonalProfile.BasicInfo; info != nil {
			match.FirstName = info.FirstName
			match.Bio = info.Bio
		}
		if ts := candidate.PersonalProfile.TrustScore; ts != nil {
			match.TrustScore = ts.Score
		}
		matches = append(matches, match)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ProfileID.String() < matches[j].ProfileID.String()
	})

	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}

	return transport.MatchesResponse{Matches: matches}, nil
}

func roommatePrefs(p domain.Profile) *domain.RoommatePreferences {
	if p.PersonalProfile == nil {
		return nil
	}
	return p.PersonalProfile.Roommate
}
