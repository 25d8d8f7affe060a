package training

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/awareai/awareai/internal/badges"
	"github.com/awareai/awareai/internal/logging"
	"github.com/awareai/awareai/internal/metrics"
	"github.com/awareai/awareai/internal/realtime"
	"github.com/awareai/awareai/internal/traces"
	"github.com/awareai/awareai/internal/users"
)

// QuestionFeedback tells the submitter how one question was graded.
// The correct index is only ever revealed here, after grading.
type QuestionFeedback struct {
	Prompt       string `json:"prompt"`
	Selected     int    `json:"selected"` // -1 when no option was selected
	Correct      bool   `json:"correct"`
	CorrectIndex int    `json:"correctIndex"`
}

// Result is the outcome of one quiz submission.
type Result struct {
	Score         int                `json:"score"`
	Passed        bool               `json:"passed"`
	Correct       int                `json:"correct"`
	Total         int                `json:"total"`
	Feedback      []QuestionFeedback `json:"feedback"`
	BadgeAwarded  *badges.Badge      `json:"badgeAwarded,omitempty"`
	TrainingState State              `json:"trainingState"`
}

// Tracker grades quiz submissions and maintains completion records.
//
// Passing has side effects beyond the completion upsert: the training
// joins the user's completed-set and a first pass may award a badge.
// Those side effects are best-effort; a failure there is logged but
// never fails a graded submission.
type Tracker struct {
	trainings Store
	users     users.Store
	badges    badges.Store
	hub       *realtime.Hub // optional
}

// NewTracker creates a completion tracker. hub may be nil.
func NewTracker(trainings Store, userStore users.Store, badgeStore badges.Store, hub *realtime.Hub) *Tracker {
	return &Tracker{trainings: trainings, users: userStore, badges: badgeStore, hub: hub}
}

// SubmitQuiz grades the answers against the training's questions,
// upserts the user's completion entry and, on a pass, applies the
// pass-only side effects.
//
// answers holds selected option indices aligned to the question list.
// A missing or negative entry counts as "no selection" and can never
// match a correct index.
func (tr *Tracker) SubmitQuiz(ctx context.Context, trainingID, userID string, answers []int) (*Result, error) {
	ctx, span := traces.StartSpan(ctx, "training.submit_quiz",
		traces.TrainingID(trainingID), traces.UserID(userID))
	defer span.End()

	t, err := tr.trainings.Get(ctx, trainingID)
	if err != nil {
		return nil, err
	}
	u, err := tr.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	res := grade(t, answers)

	if err := tr.trainings.UpsertCompletion(ctx, t.ID, &Completion{
		UserID: u.ID,
		Score:  res.Score,
	}); err != nil {
		return nil, err
	}

	result := "failed"
	if res.Passed {
		result = "passed"
		res.TrainingState = StatePassed
		tr.applyPassEffects(ctx, t, u, res)
	} else {
		res.TrainingState = StateFailed
	}
	metrics.QuizSubmissionsTotal.WithLabelValues(result).Inc()

	if tr.hub != nil {
		tr.hub.Publish(realtime.EventTrainingCompleted, map[string]interface{}{
			"userId":     u.ID,
			"trainingId": t.ID,
			"score":      res.Score,
			"passed":     res.Passed,
		})
	}
	return res, nil
}

// grade scores answers against the questions. A training with zero
// questions always scores 100.
func grade(t *Training, answers []int) *Result {
	total := len(t.Questions)
	res := &Result{Total: total, Feedback: make([]QuestionFeedback, 0, total)}

	for i, q := range t.Questions {
		selected := -1
		if i < len(answers) && answers[i] >= 0 {
			selected = answers[i]
		}
		correct := selected == q.CorrectIndex
		if correct {
			res.Correct++
		}
		res.Feedback = append(res.Feedback, QuestionFeedback{
			Prompt:       q.Prompt,
			Selected:     selected,
			Correct:      correct,
			CorrectIndex: q.CorrectIndex,
		})
	}

	if total == 0 {
		res.Score = 100
	} else {
		res.Score = int(math.Round(float64(res.Correct) / float64(total) * 100))
	}
	res.Passed = res.Score >= t.PassingScore
	return res
}

// applyPassEffects adds the training to the user's completed-set and
// awards the first-training badge when this is the user's first pass.
// The badge insert is atomic at the store, so a concurrent double
// submission awards at most once.
func (tr *Tracker) applyPassEffects(ctx context.Context, t *Training, u *users.User, res *Result) {
	log := logging.L(ctx).With(slog.String("user_id", u.ID), slog.String("training_id", t.ID))

	if err := tr.users.AddCompletedTraining(ctx, u.ID, t.ID); err != nil {
		log.Warn("failed to update user completed-set", "error", err)
	}

	badge, err := tr.badges.GetByCriteria(ctx, badges.CriteriaFirstTraining)
	if err != nil {
		// No first-training badge configured; nothing to award.
		return
	}
	newly, err := tr.badges.Award(ctx, badge.ID, u.ID)
	if err != nil {
		log.Warn("failed to award badge", "badge_id", badge.ID, "error", err)
		return
	}
	if !newly {
		return
	}

	res.BadgeAwarded = badge
	metrics.BadgesAwardedTotal.WithLabelValues(badge.Criteria).Inc()
	if err := tr.users.AddBadge(ctx, u.ID, badge.ID); err != nil {
		log.Warn("failed to update user badge-set", "badge_id", badge.ID, "error", err)
	}
	if tr.hub != nil {
		tr.hub.Publish(realtime.EventBadgeAwarded, map[string]interface{}{
			"userId":  u.ID,
			"badgeId": badge.ID,
			"badge":   badge.Name,
		})
	}
	log.Info("badge awarded", "badge_id", badge.ID, "badge", badge.Name)
}
