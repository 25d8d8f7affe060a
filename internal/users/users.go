// Package users manages employee records for the AwareAI platform.
//
// Users are the subjects of phishing simulations and training assignments.
// The record carries a cached copy of the latest risk score plus the sets of
// passed trainings and earned badges. These caches are kept in sync
// best-effort by the scoring engine and completion tracker; the risk score
// history and badge award lists remain the authoritative sources.
package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("users: not found")
	ErrExists   = errors.New("users: email already registered")
)

// User is an employee enrolled in the awareness program.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`

	// RiskScore is a best-effort cache of the latest calculated score.
	// Not authoritative; the risk history is.
	RiskScore int `json:"riskScore"`

	// TrainingsCompleted lists trainings the user has PASSED. This is the
	// dashboard/badge notion of completion; the scoring engine counts any
	// attempt instead.
	TrainingsCompleted []string `json:"trainingsCompleted"`

	// Badges lists earned badge IDs.
	Badges []string `json:"badges"`

	CreatedAt time.Time `json:"createdAt"`
}

// Store persists user records.
type Store interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]*User, error)

	// SetRiskScore updates the cached score field only.
	SetRiskScore(ctx context.Context, id string, score int) error

	// AddCompletedTraining inserts into the passed-trainings set. Idempotent.
	AddCompletedTraining(ctx context.Context, id, trainingID string) error

	// AddBadge inserts into the earned-badges set. Idempotent.
	AddBadge(ctx context.Context, id, badgeID string) error
}
