package risk

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/awareai/awareai/internal/events"
	"github.com/awareai/awareai/internal/idgen"
	"github.com/awareai/awareai/internal/logging"
	"github.com/awareai/awareai/internal/metrics"
	"github.com/awareai/awareai/internal/realtime"
	"github.com/awareai/awareai/internal/traces"
	"github.com/awareai/awareai/internal/training"
	"github.com/awareai/awareai/internal/users"
)

// recentWindow bounds the click/submission/report counts feeding the
// score formula; the time-to-report average uses the full history.
const recentWindow = 30 * 24 * time.Hour

// Engine computes risk scores from phishing events and training state.
type Engine struct {
	users     users.Store
	events    events.Store
	trainings training.Store
	records   Store
	hub       *realtime.Hub // optional
}

// NewEngine creates a scoring engine. hub may be nil.
func NewEngine(userStore users.Store, eventStore events.Store, trainingStore training.Store, recordStore Store, hub *realtime.Hub) *Engine {
	return &Engine{
		users:     userStore,
		events:    eventStore,
		trainings: trainingStore,
		records:   recordStore,
		hub:       hub,
	}
}

// Calculate recomputes the user's score and appends a new record.
//
// The user's cached score field is updated best-effort afterwards: a
// failure there is logged, not returned, and the already-appended
// record stays in place.
func (e *Engine) Calculate(ctx context.Context, userID string) (*Record, error) {
	ctx, span := traces.StartSpan(ctx, "risk.calculate", traces.UserID(userID))
	defer span.End()

	u, err := e.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	since := time.Now().Add(-recentWindow)
	clicks, err := e.events.CountByUserSince(ctx, u.ID, events.TypeClicked, since)
	if err != nil {
		return nil, err
	}
	submissions, err := e.events.CountByUserSince(ctx, u.ID, events.TypeSubmitted, since)
	if err != nil {
		return nil, err
	}
	reports, err := e.events.CountByUserSince(ctx, u.ID, events.TypeReported, since)
	if err != nil {
		return nil, err
	}

	history, err := e.events.ListByUser(ctx, u.ID, 0)
	if err != nil {
		return nil, err
	}
	avgMinutes := averageMinutesToReport(history)

	assigned, err := e.trainings.ListForUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	completionPct := completionPercent(assigned, u.ID)

	f := Factors{
		Clicks:             clicks,
		Submissions:        submissions,
		Reports:            reports,
		CompletionPct:      completionPct,
		AvgMinutesToReport: avgMinutes,
	}

	var score int
	if len(assigned) == 0 && len(history) == 0 {
		// New, unproven users start low-risk rather than neutral.
		score = 30
	} else {
		score = computeScore(f, len(assigned))
	}

	r := &Record{
		ID:           idgen.WithPrefix("rsk_"),
		UserID:       u.ID,
		Score:        score,
		Level:        LevelFor(score),
		Factors:      f,
		CalculatedAt: time.Now(),
	}
	if err := e.records.Append(ctx, r); err != nil {
		return nil, err
	}

	span.SetAttributes(traces.RiskScore(r.Score), traces.RiskLevel(string(r.Level)))
	metrics.RiskCalculationsTotal.WithLabelValues(string(r.Level)).Inc()

	if err := e.users.SetRiskScore(ctx, u.ID, r.Score); err != nil {
		logging.L(ctx).Warn("failed to update cached user score",
			"user_id", u.ID, "error", err)
	}
	if e.hub != nil {
		e.hub.Publish(realtime.EventScoreCalculated, map[string]interface{}{
			"userId": u.ID,
			"score":  r.Score,
			"level":  string(r.Level),
		})
	}
	return r, nil
}

// computeScore applies the additive formula around a baseline of 50.
func computeScore(f Factors, assignedCount int) int {
	score := 50.0

	score += math.Min(float64(f.Clicks)*15, 45)
	score += math.Min(float64(f.Submissions)*20, 40)
	if f.Reports == 0 && (f.Clicks > 0 || f.Submissions > 0) {
		score += 10
	}
	if f.CompletionPct < 50 {
		score += 15
	} else if f.CompletionPct < 80 {
		score += 5
	}

	score -= math.Min(float64(f.Reports)*8, 24)
	if assignedCount > 0 {
		if f.CompletionPct == 100 {
			score -= 20
		} else if f.CompletionPct >= 80 {
			score -= 10
		}
	}
	if f.AvgMinutesToReport != nil && *f.AvgMinutesToReport < 5 {
		score -= 5
	}

	return int(math.Round(math.Max(0, math.Min(100, score))))
}

// completionPercent counts trainings with any completion entry for the
// user, pass or fail; no assigned trainings counts as fully complete.
func completionPercent(assigned []*training.Training, userID string) float64 {
	if len(assigned) == 0 {
		return 100
	}
	done := 0
	for _, t := range assigned {
		if _, ok := t.Completions[userID]; ok {
			done++
		}
	}
	return float64(done) / float64(len(assigned)) * 100
}

// averageMinutesToReport pairs each sent event with the earliest
// subsequent report in the same campaign and averages the deltas.
// Returns nil when no pair matches.
func averageMinutesToReport(history []*events.Event) *float64 {
	var reports []*events.Event
	for _, e := range history {
		if e.Type == events.TypeReported {
			reports = append(reports, e)
		}
	}
	if len(reports) == 0 {
		return nil
	}

	var total float64
	matched := 0
	for _, e := range history {
		if e.Type != events.TypeSent {
			continue
		}
		var earliest *events.Event
		for _, r := range reports {
			if r.CampaignID != e.CampaignID || r.Timestamp.Before(e.Timestamp) {
				continue
			}
			if earliest == nil || r.Timestamp.Before(earliest.Timestamp) {
				earliest = r
			}
		}
		if earliest != nil {
			total += earliest.Timestamp.Sub(e.Timestamp).Minutes()
			matched++
		}
	}
	if matched == 0 {
		return nil
	}
	avg := total / float64(matched)
	return &avg
}
