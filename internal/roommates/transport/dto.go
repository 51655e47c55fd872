// Package transport defines response DTOs for the roommates module.
package transport

import "github.com/google/uuid"

// Match is one roommate candidate with its compatibility score.
type Match struct {
	ProfileID    uuid.UUID `json:"profileId"`
	FirstName    string    `json:"firstName,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	TrustScore   int       `json:"trustScore"`
	Score        int       `json:"score"`
	SharedCities []string  `json:"sharedCities,omitempty"`
}

// MatchesResponse is the ranked candidate list.
type MatchesResponse struct {
	Matches []Match `json:"matches"`
}
