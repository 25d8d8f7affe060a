// Package advisor turns a user's event and training history into
// human-readable behavior analysis and training recommendations.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/awareai/awareai/internal/events"
	"github.com/awareai/awareai/internal/risk"
	"github.com/awareai/awareai/internal/traces"
	"github.com/awareai/awareai/internal/training"
	"github.com/awareai/awareai/internal/users"
)

// analysisWindow is how many recent events feed the behavior counts.
const analysisWindow = 50

// Severity grades a behavioral flag.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Flag is one negative behavioral finding.
type Flag struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// PositiveFlag is one encouraging behavioral finding.
type PositiveFlag struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Counts summarizes recent activity and training standing.
type Counts struct {
	Clicked            int     `json:"clicked"`
	Opened             int     `json:"opened"`
	Submitted          int     `json:"submitted"`
	Reported           int     `json:"reported"`
	AssignedTrainings  int     `json:"assignedTrainings"`
	CompletedTrainings int     `json:"completedTrainings"`
	CompletionPct      float64 `json:"completionPct"`
}

// Analysis is the behavior analyzer's output. Score is nil and Level
// is "unknown" when no risk record exists yet.
type Analysis struct {
	UserID        string         `json:"userId"`
	Score         *int           `json:"score"`
	Level         string         `json:"level"`
	Counts        Counts         `json:"counts"`
	Flags         []Flag         `json:"flags"`
	PositiveFlags []PositiveFlag `json:"positiveFlags"`
	Narrative     string         `json:"narrative"`
	AnalyzedAt    time.Time      `json:"analyzedAt"`
}

// Service analyzes behavior and produces recommendations.
type Service struct {
	users     users.Store
	events    events.Store
	trainings training.Store
	records   risk.Store
}

// NewService creates an advisor backed by the given stores.
func NewService(userStore users.Store, eventStore events.Store, trainingStore training.Store, recordStore risk.Store) *Service {
	return &Service{
		users:     userStore,
		events:    eventStore,
		trainings: trainingStore,
		records:   recordStore,
	}
}

// Analyze inspects the user's 50 most recent events, latest score and
// training standing, and derives flags plus a narrative.
func (s *Service) Analyze(ctx context.Context, userID string) (*Analysis, error) {
	ctx, span := traces.StartSpan(ctx, "advisor.analyze", traces.UserID(userID))
	defer span.End()

	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	recent, err := s.events.ListByUser(ctx, u.ID, analysisWindow)
	if err != nil {
		return nil, err
	}
	assigned, err := s.trainings.ListForUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		UserID:     u.ID,
		Level:      "unknown",
		AnalyzedAt: time.Now(),
	}
	// A user with no calculated score yet stays at level "unknown";
	// anything else from the store is a real failure.
	switch rec, err := s.records.Latest(ctx, u.ID); {
	case err == nil:
		score := rec.Score
		a.Score = &score
		a.Level = string(rec.Level)
	case !errors.Is(err, risk.ErrNotFound):
		return nil, err
	}

	for _, e := range recent {
		switch e.Type {
		case events.TypeClicked:
			a.Counts.Clicked++
		case events.TypeOpened:
			a.Counts.Opened++
		case events.TypeSubmitted:
			a.Counts.Submitted++
		case events.TypeReported:
			a.Counts.Reported++
		}
	}

	a.Counts.AssignedTrainings = len(assigned)
	for _, t := range assigned {
		if _, ok := t.Completions[u.ID]; ok {
			a.Counts.CompletedTrainings++
		}
	}
	if len(assigned) == 0 {
		a.Counts.CompletionPct = 100
	} else {
		a.Counts.CompletionPct = float64(a.Counts.CompletedTrainings) / float64(len(assigned)) * 100
	}

	a.Flags = negativeFlags(a.Counts)
	a.PositiveFlags = positiveFlags(a.Counts)
	a.Narrative = narrative(a.Flags, a.PositiveFlags)
	return a, nil
}

// negativeFlags evaluates every rule independently, in fixed order.
// Multiple flags may fire for the same analysis.
func negativeFlags(c Counts) []Flag {
	var flags []Flag

	if c.Clicked > 0 {
		sev := SeverityMedium
		if c.Clicked > 3 {
			sev = SeverityHigh
		}
		flags = append(flags, Flag{
			Code:     "clicked_simulations",
			Message:  fmt.Sprintf("Clicked %d simulated phishing link(s) recently", c.Clicked),
			Severity: sev,
		})
	}
	if c.Submitted > 0 {
		flags = append(flags, Flag{
			Code:     "submitted_credentials",
			Message:  "Entered credentials on a simulated phishing page",
			Severity: SeverityHigh,
		})
	}
	if c.Reported == 0 && c.Clicked > 0 {
		flags = append(flags, Flag{
			Code:     "never_reports",
			Message:  "Interacts with suspicious email but never reports it",
			Severity: SeverityMedium,
		})
	}
	if c.CompletionPct < 50 {
		flags = append(flags, Flag{
			Code:     "low_training_completion",
			Message:  "Less than half of assigned training is complete",
			Severity: SeverityHigh,
		})
	} else if c.CompletionPct < 80 {
		flags = append(flags, Flag{
			Code:     "partial_training_completion",
			Message:  "Assigned training is only partially complete",
			Severity: SeverityMedium,
		})
	}
	if c.Opened > 5 {
		flags = append(flags, Flag{
			Code:     "high_engagement",
			Message:  "Opens an unusually high share of simulated phishing email",
			Severity: SeverityLow,
		})
	}
	return flags
}

// positiveFlags is an independent list; it can be non-empty even when
// negative flags fired.
func positiveFlags(c Counts) []PositiveFlag {
	var flags []PositiveFlag

	if c.Reported > 0 {
		flags = append(flags, PositiveFlag{
			Code:    "reports_phishing",
			Message: "Reports suspicious email to the security team",
		})
	}
	if c.CompletionPct == 100 && c.AssignedTrainings > 0 {
		flags = append(flags, PositiveFlag{
			Code:    "training_complete",
			Message: "All assigned training is complete",
		})
	}
	if c.Clicked == 0 && c.Opened > 0 {
		flags = append(flags, PositiveFlag{
			Code:    "cautious_reader",
			Message: "Opens email without clicking suspicious links",
		})
	}
	return flags
}

// narrative picks one of three messages, evaluated in order.
func narrative(flags []Flag, positives []PositiveFlag) string {
	if len(flags) == 0 && len(positives) > 0 {
		return "Excellent security behavior. Keep reporting suspicious email and staying current on training."
	}
	for _, f := range flags {
		if f.Severity == SeverityHigh {
			return "High-risk behavior detected. Immediate attention recommended: complete assigned training and report anything suspicious instead of interacting with it."
		}
	}
	return "Security awareness is developing. Review the recommendations below to keep improving."
}
