package domain

import "time"

// Factor is one scored category contributing to the trust score.
// Value is the points earned, MaxValue the points possible for the category.
// UpdatedAt is set only by the incremental factor-update path.
type Factor struct {
	Type      string     `json:"type"`
	Value     float64    `json:"value"`
	MaxValue  float64    `json:"maxValue,omitempty"`
	Label     string     `json:"label,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// TrustScore is the persisted scoring state on a profile. It doubles as the
// one-hour cache: LastCalculated gates recomputation.
type TrustScore struct {
	Score          int        `json:"score"`
	Factors        []Factor   `json:"factors,omitempty"`
	TotalScore     float64    `json:"totalScore"`
	MaxScore       float64    `json:"maxScore"`
	LastCalculated *time.Time `json:"lastCalculated,omitempty"`
}

// ScoreResult is the outcome of a trust score calculation.
type ScoreResult struct {
	Score      int      `json:"score"`
	Factors    []Factor `json:"factors"`
	TotalScore float64  `json:"totalScore"`
	MaxScore   float64  `json:"maxScore"`
}
