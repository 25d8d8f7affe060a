package advisor

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/awareai/awareai/internal/events"
	"github.com/awareai/awareai/internal/risk"
	"github.com/awareai/awareai/internal/traces"
)

// Priority orders recommendations; high sorts before medium before low.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// rank maps priorities to their sort order.
func rank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Recommendation is one suggested focus area. No two recommendations
// in a result share a category.
type Recommendation struct {
	Category string   `json:"category"`
	Reason   string   `json:"reason"`
	Priority Priority `json:"priority"`
}

// defaultScore stands in when the user has no score record yet; it is
// a recommendation-only fallback, never persisted.
const defaultScore = 50

// Recommend builds an ordered, per-category-deduplicated list of
// focus areas from the user's history, training state and score.
func (s *Service) Recommend(ctx context.Context, userID string) ([]Recommendation, error) {
	ctx, span := traces.StartSpan(ctx, "advisor.recommend", traces.UserID(userID))
	defer span.End()

	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	history, err := s.events.ListByUser(ctx, u.ID, 0)
	if err != nil {
		return nil, err
	}
	assigned, err := s.trainings.ListForUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	score := defaultScore
	rec, err := s.records.Latest(ctx, u.ID)
	if err == nil {
		score = rec.Score
	} else if !errors.Is(err, risk.ErrNotFound) {
		return nil, err
	}

	var clicked, submitted, reported bool
	for _, e := range history {
		switch e.Type {
		case events.TypeClicked:
			clicked = true
		case events.TypeSubmitted:
			submitted = true
		case events.TypeReported:
			reported = true
		}
	}
	missingTraining := false
	for _, t := range assigned {
		if _, ok := t.Completions[u.ID]; !ok {
			missingTraining = true
			break
		}
	}

	// Candidates in fixed evaluation order; dedup resolves collisions.
	var out []Recommendation
	if submitted {
		out = append(out, Recommendation{
			Category: "phishing",
			Reason:   "Credentials were entered on a simulated phishing page. Retake the phishing module and learn to verify login pages.",
			Priority: PriorityHigh,
		})
	} else if clicked {
		out = append(out, Recommendation{
			Category: "phishing",
			Reason:   "Simulated phishing links were clicked. Practice spotting suspicious senders and URLs.",
			Priority: PriorityHigh,
		})
	}
	if !reported && (clicked || submitted) {
		out = append(out, Recommendation{
			Category: "incident-reporting",
			Reason:   "Suspicious email was never reported. Reporting quickly protects the whole organization.",
			Priority: PriorityHigh,
		})
	}
	if missingTraining {
		out = append(out, Recommendation{
			Category: "training",
			Reason:   "Assigned training modules are still open. Complete them to close known gaps.",
			Priority: PriorityMedium,
		})
	}
	if score >= 70 {
		out = append(out, Recommendation{
			Category: "risk-reduction",
			Reason:   "The current risk score is elevated. Work through the high-priority items to bring it down.",
			Priority: PriorityHigh,
		})
	}

	// Baselines, always considered.
	passwordPriority := PriorityMedium
	if clicked || submitted {
		passwordPriority = PriorityHigh
	}
	out = append(out,
		Recommendation{
			Category: "password",
			Reason:   "Strong, unique passwords limit the damage of a successful phish.",
			Priority: passwordPriority,
		},
		Recommendation{
			Category: "mfa",
			Reason:   "Multi-factor authentication stops most account takeovers outright.",
			Priority: PriorityMedium,
		},
		Recommendation{
			Category: "social-engineering",
			Reason:   "Attackers also call and knock. Know the common pretexts.",
			Priority: PriorityLow,
		},
	)

	return dedupeAndSort(out), nil
}

// dedupeAndSort keeps only the highest-priority entry per category,
// then sorts by priority rank; ties keep their construction order.
func dedupeAndSort(recs []Recommendation) []Recommendation {
	best := make(map[string]int) // category -> index into out
	var out []Recommendation
	for _, r := range recs {
		if i, ok := best[r.Category]; ok {
			if rank(r.Priority) < rank(out[i].Priority) {
				out[i] = r
			}
			continue
		}
		best[r.Category] = len(out)
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return rank(out[i].Priority) < rank(out[j].Priority)
	})
	return out
}
