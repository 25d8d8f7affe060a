// Package badges manages achievement badges and their awards.
//
// A user holds each badge at most once. Awards go through an atomic
// insert-if-absent so that two concurrent qualifying actions cannot
// award the same badge twice.
package badges

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the badge doesn't exist.
	ErrNotFound = errors.New("badges: badge not found")

	// ErrExists indicates a badge with the same ID already exists.
	ErrExists = errors.New("badges: badge already exists")
)

// CriteriaFirstTraining tags the badge awarded on a user's first
// passed training.
const CriteriaFirstTraining = "first-training"

// Badge is an achievement definition.
type Badge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IconURL     string    `json:"iconUrl,omitempty"`
	Criteria    string    `json:"criteria"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Award records one badge grant.
type Award struct {
	BadgeID   string    `json:"badgeId"`
	UserID    string    `json:"userId"`
	AwardedAt time.Time `json:"awardedAt"`
}

// Store persists badges and awards.
type Store interface {
	// Create inserts a new badge definition.
	Create(ctx context.Context, b *Badge) error

	// Get returns a badge by ID.
	Get(ctx context.Context, id string) (*Badge, error)

	// GetByCriteria returns the first badge carrying the criteria tag.
	GetByCriteria(ctx context.Context, criteria string) (*Badge, error)

	// List returns all badges.
	List(ctx context.Context) ([]*Badge, error)

	// Award grants a badge to a user if they don't already hold it.
	// The insert is atomic; it reports whether the badge was newly
	// awarded (false means the user already held it).
	Award(ctx context.Context, badgeID, userID string) (bool, error)

	// CountAwards returns how many users hold the badge.
	CountAwards(ctx context.Context, badgeID string) (int, error)

	// ListAwards returns a badge's awards, oldest first.
	ListAwards(ctx context.Context, badgeID string) ([]*Award, error)
}

// EnsureDefaults creates the built-in badge definitions if missing.
func EnsureDefaults(ctx context.Context, store Store) error {
	if _, err := store.GetByCriteria(ctx, CriteriaFirstTraining); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return store.Create(ctx, &Badge{
		ID:          "bdg_first_training",
		Name:        "First Steps",
		Description: "Completed your first security training",
		Criteria:    CriteriaFirstTraining,
	})
}
