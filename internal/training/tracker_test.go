package training

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awareai/awareai/internal/badges"
	"github.com/awareai/awareai/internal/users"
)

func fiveQuestionTraining(passingScore int) *Training {
	qs := make([]Question, 5)
	for i := range qs {
		qs[i] = Question{
			Prompt:       "q",
			Options:      []string{"a", "b", "c"},
			CorrectIndex: 1,
		}
	}
	return &Training{
		ID:           "trn_1",
		Title:        "Test Module",
		PassingScore: passingScore,
		Questions:    qs,
	}
}

func setupTracker(t *testing.T, tr *Training) (*Tracker, Store, users.Store, badges.Store) {
	t.Helper()
	ctx := context.Background()

	trainings := NewMemoryStore()
	userStore := users.NewMemoryStore()
	badgeStore := badges.NewMemoryStore()

	if tr != nil {
		require.NoError(t, trainings.Create(ctx, tr))
	}
	require.NoError(t, userStore.Create(ctx, &users.User{
		ID: "usr_1", Name: "Dana", Email: "dana@example.com",
	}))
	require.NoError(t, badges.EnsureDefaults(ctx, badgeStore))

	return NewTracker(trainings, userStore, badgeStore, nil), trainings, userStore, badgeStore
}

func TestSubmitQuiz_ThreeOfFiveBelowPassingScore(t *testing.T) {
	tracker, _, _, _ := setupTracker(t, fiveQuestionTraining(70))

	// 3 correct, 2 wrong → 60% < 70%
	res, err := tracker.SubmitQuiz(context.Background(), "trn_1", "usr_1", []int{1, 1, 1, 0, 0})
	require.NoError(t, err)

	assert.Equal(t, 60, res.Score)
	assert.False(t, res.Passed)
	assert.Equal(t, 3, res.Correct)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, StateFailed, res.TrainingState)
}

func TestSubmitQuiz_MissingAnswersNeverMatch(t *testing.T) {
	tracker, _, _, _ := setupTracker(t, fiveQuestionTraining(70))

	// Only two answers supplied; the rest count as no selection.
	res, err := tracker.SubmitQuiz(context.Background(), "trn_1", "usr_1", []int{1, 1})
	require.NoError(t, err)

	assert.Equal(t, 40, res.Score)
	assert.Equal(t, 2, res.Correct)
	for _, fb := range res.Feedback[2:] {
		assert.Equal(t, -1, fb.Selected)
		assert.False(t, fb.Correct)
	}
}

func TestSubmitQuiz_ZeroQuestionsScoresHundred(t *testing.T) {
	tr := &Training{ID: "trn_1", Title: "Reading Only", PassingScore: 70}
	tracker, _, _, _ := setupTracker(t, tr)

	res, err := tracker.SubmitQuiz(context.Background(), "trn_1", "usr_1", []int{})
	require.NoError(t, err)

	assert.Equal(t, 100, res.Score)
	assert.True(t, res.Passed)
	assert.Equal(t, 0, res.Total)
}

func TestSubmitQuiz_FeedbackRevealsCorrectIndex(t *testing.T) {
	tracker, _, _, _ := setupTracker(t, fiveQuestionTraining(70))

	res, err := tracker.SubmitQuiz(context.Background(), "trn_1", "usr_1", []int{0, 1, 2, 1, 1})
	require.NoError(t, err)

	require.Len(t, res.Feedback, 5)
	for _, fb := range res.Feedback {
		assert.Equal(t, 1, fb.CorrectIndex)
	}
	assert.False(t, res.Feedback[0].Correct)
	assert.True(t, res.Feedback[1].Correct)
}

func TestSubmitQuiz_ResubmissionOverwritesSingleEntry(t *testing.T) {
	tracker, trainings, _, _ := setupTracker(t, fiveQuestionTraining(70))
	ctx := context.Background()

	_, err := tracker.SubmitQuiz(ctx, "trn_1", "usr_1", []int{1, 1, 1, 0, 0}) // 60
	require.NoError(t, err)
	_, err = tracker.SubmitQuiz(ctx, "trn_1", "usr_1", []int{1, 1, 1, 1, 1}) // 100
	require.NoError(t, err)

	stored, err := trainings.Get(ctx, "trn_1")
	require.NoError(t, err)
	require.Len(t, stored.Completions, 1)
	assert.Equal(t, 100, stored.Completions["usr_1"].Score)
	assert.Equal(t, StatePassed, stored.StateFor("usr_1"))
}

func TestSubmitQuiz_PassEffects(t *testing.T) {
	tracker, _, userStore, badgeStore := setupTracker(t, fiveQuestionTraining(70))
	ctx := context.Background()

	res, err := tracker.SubmitQuiz(ctx, "trn_1", "usr_1", []int{1, 1, 1, 1, 1})
	require.NoError(t, err)
	assert.True(t, res.Passed)
	require.NotNil(t, res.BadgeAwarded)
	assert.Equal(t, badges.CriteriaFirstTraining, res.BadgeAwarded.Criteria)

	u, err := userStore.Get(ctx, "usr_1")
	require.NoError(t, err)
	assert.Contains(t, u.TrainingsCompleted, "trn_1")
	assert.Contains(t, u.Badges, res.BadgeAwarded.ID)

	n, err := badgeStore.CountAwards(ctx, res.BadgeAwarded.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSubmitQuiz_BadgeAwardedAtMostOnce(t *testing.T) {
	tracker, _, _, badgeStore := setupTracker(t, fiveQuestionTraining(70))
	ctx := context.Background()

	first, err := tracker.SubmitQuiz(ctx, "trn_1", "usr_1", []int{1, 1, 1, 1, 1})
	require.NoError(t, err)
	require.NotNil(t, first.BadgeAwarded)

	second, err := tracker.SubmitQuiz(ctx, "trn_1", "usr_1", []int{1, 1, 1, 1, 1})
	require.NoError(t, err)
	assert.Nil(t, second.BadgeAwarded)

	n, err := badgeStore.CountAwards(ctx, first.BadgeAwarded.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSubmitQuiz_FailedAttemptHasNoPassEffects(t *testing.T) {
	tracker, trainings, userStore, _ := setupTracker(t, fiveQuestionTraining(70))
	ctx := context.Background()

	res, err := tracker.SubmitQuiz(ctx, "trn_1", "usr_1", []int{0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Nil(t, res.BadgeAwarded)

	// The completion entry exists even for a failed attempt.
	stored, err := trainings.Get(ctx, "trn_1")
	require.NoError(t, err)
	assert.Len(t, stored.Completions, 1)

	// But the user's passed-only completed-set stays empty.
	u, err := userStore.Get(ctx, "usr_1")
	require.NoError(t, err)
	assert.Empty(t, u.TrainingsCompleted)
	assert.Empty(t, u.Badges)
}

func TestSubmitQuiz_UnknownTrainingAndUser(t *testing.T) {
	tracker, _, _, _ := setupTracker(t, fiveQuestionTraining(70))
	ctx := context.Background()

	_, err := tracker.SubmitQuiz(ctx, "trn_missing", "usr_1", []int{1})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = tracker.SubmitQuiz(ctx, "trn_1", "usr_missing", []int{1})
	require.ErrorIs(t, err, users.ErrNotFound)
}

func TestStateFor(t *testing.T) {
	tr := fiveQuestionTraining(70)
	assert.Equal(t, StateUnattempted, tr.StateFor("usr_1"))

	tr.Completions = map[string]*Completion{
		"usr_1": {UserID: "usr_1", Score: 60},
		"usr_2": {UserID: "usr_2", Score: 80},
	}
	assert.Equal(t, StateFailed, tr.StateFor("usr_1"))
	assert.Equal(t, StatePassed, tr.StateFor("usr_2"))
}

func TestSeed_Idempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, Seed(ctx, s))
	require.NoError(t, Seed(ctx, s))

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(SeedModules()))
}
