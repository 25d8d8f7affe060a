// Package events stores phishing-simulation interaction events.
//
// Events are immutable and append-only: the tracking endpoint inserts them
// and the analytics engines read them. There is no update or delete path.
package events

import (
	"context"
	"errors"
	"time"
)

// ErrUnknownType rejects events whose type is not in the simulation vocabulary.
var ErrUnknownType = errors.New("events: unknown event type")

// Type classifies a phishing-simulation interaction.
type Type string

const (
	TypeSent      Type = "sent"
	TypeOpened    Type = "opened"
	TypeClicked   Type = "clicked"
	TypeSubmitted Type = "submitted" // credentials entered on the landing page
	TypeReported  Type = "reported"
)

// ValidType reports whether t is part of the simulation vocabulary.
func ValidType(t Type) bool {
	switch t {
	case TypeSent, TypeOpened, TypeClicked, TypeSubmitted, TypeReported:
		return true
	}
	return false
}

// Event is a single tracked interaction, immutable once appended.
type Event struct {
	ID         string            `json:"id"`
	UserID     string            `json:"userId"`
	CampaignID string            `json:"campaignId"`
	Type       Type              `json:"type"`
	IPAddress  string            `json:"ipAddress,omitempty"`
	UserAgent  string            `json:"userAgent,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Filter narrows event queries. Zero values match everything.
type Filter struct {
	UserID     string
	CampaignID string
	Type       Type
	Limit      int // 0 = no limit
}

// Store persists and queries immutable events.
type Store interface {
	// Append inserts a new event.
	Append(ctx context.Context, e *Event) error

	// ListByUser returns a user's events, newest first.
	// limit 0 means the full history.
	ListByUser(ctx context.Context, userID string, limit int) ([]*Event, error)

	// CountByUserSince counts a user's events of one type at or after since.
	CountByUserSince(ctx context.Context, userID string, typ Type, since time.Time) (int, error)

	// List returns events matching the filter, newest first.
	List(ctx context.Context, f Filter) ([]*Event, error)

	// CountByCampaign returns per-type event counts for a campaign.
	CountByCampaign(ctx context.Context, campaignID string) (map[Type]int, error)
}
