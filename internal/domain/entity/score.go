package entity

import "fmt"

// Score is a relevance rating between MinScore and MaxScore.
// The zero value is the Unscored sentinel.
type Score int

const (
	// Unscored marks an article that has not been through a scoring pass yet.
	Unscored Score = 0
	MinScore Score = 1
	MaxScore Score = 5

	// FallbackScore is the neutral rating written when no score could be obtained.
	FallbackScore Score = 3

	// HighScore is the threshold counted as "high" in statistics.
	HighScore Score = 4
)

// FallbackSummary marks a score_summary written by the fallback path.
const FallbackSummary = "スコアリング失敗"

// ClampScore saturates an arbitrary model rating into [MinScore, MaxScore].
// Out of range values are not rejected.
func ClampScore(v int) Score {
	if v < int(MinScore) {
		return MinScore
	}
	if v > int(MaxScore) {
		return MaxScore
	}
	return Score(v)
}

// IsScored reports whether s is a real rating rather than the sentinel.
func (s Score) IsScored() bool {
	return s != Unscored
}

// Validate reports an error when s is neither Unscored nor within range.
func (s Score) Validate() error {
	if s == Unscored || (s >= MinScore && s <= MaxScore) {
		return nil
	}
	return &ValidationError{
		Field:   "score",
		Message: fmt.Sprintf("score must be 0 or between %d and %d, got %d", MinScore, MaxScore, s),
	}
}

// ScoringResult is the structured value recovered from a model reply.
// Summary may be empty when the reply was truncated.
type ScoringResult struct {
	Score   int    `json:"score"`
	Summary string `json:"summary"`
}

// BatchResult aggregates one scoring pass.
type BatchResult struct {
	Processed int `json:"processed"`
	Scored    int `json:"scored"`
	Errors    int `json:"errors"`
}
