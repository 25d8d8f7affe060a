// Package risk computes and stores user risk scores.
//
// Scores live on a 0-100 scale where lower is safer. Every calculation
// appends a new immutable record; history is never mutated, and the
// newest record is the user's current score.
package risk

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates no score record exists for the user.
var ErrNotFound = errors.New("risk: no score record for user")

// Level is the categorical risk label, a pure function of the score.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// LevelFor derives the level from a final score.
func LevelFor(score int) Level {
	switch {
	case score >= 75:
		return LevelCritical
	case score >= 55:
		return LevelHigh
	case score >= 30:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Factors is the breakdown behind one calculation. AvgMinutesToReport
// is nil when the user has never reported a matched simulation.
type Factors struct {
	Clicks             int      `json:"clicks"`
	Submissions        int      `json:"submissions"`
	Reports            int      `json:"reports"`
	CompletionPct      float64  `json:"completionPct"`
	AvgMinutesToReport *float64 `json:"avgMinutesToReport,omitempty"`
}

// Record is one immutable score calculation.
type Record struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Score        int       `json:"score"`
	Level        Level     `json:"level"`
	Factors      Factors   `json:"factors"`
	CalculatedAt time.Time `json:"calculatedAt"`
}

// Store persists the append-only score history.
type Store interface {
	// Append inserts a new record. Records are never updated.
	Append(ctx context.Context, r *Record) error

	// Latest returns the user's most recent record.
	Latest(ctx context.Context, userID string) (*Record, error)

	// History returns the user's records, newest first.
	// limit 0 means the full history.
	History(ctx context.Context, userID string, limit int) ([]*Record, error)
}
