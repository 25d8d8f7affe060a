package badges

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	b := &Badge{ID: "bdg_1", Name: "First Steps", Criteria: CriteriaFirstTraining}
	require.NoError(t, s.Create(ctx, b))

	got, err := s.Get(ctx, "bdg_1")
	require.NoError(t, err)
	assert.Equal(t, "First Steps", got.Name)
	assert.False(t, got.CreatedAt.IsZero())

	require.ErrorIs(t, s.Create(ctx, &Badge{ID: "bdg_1", Name: "dup"}), ErrExists)

	_, err = s.Get(ctx, "bdg_missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetByCriteria(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &Badge{ID: "bdg_1", Name: "First Steps", Criteria: CriteriaFirstTraining}))

	got, err := s.GetByCriteria(ctx, CriteriaFirstTraining)
	require.NoError(t, err)
	assert.Equal(t, "bdg_1", got.ID)

	_, err = s.GetByCriteria(ctx, "perfect-score")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAward_AtMostOncePerUser(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &Badge{ID: "bdg_1", Name: "First Steps"}))

	newly, err := s.Award(ctx, "bdg_1", "usr_1")
	require.NoError(t, err)
	assert.True(t, newly)

	again, err := s.Award(ctx, "bdg_1", "usr_1")
	require.NoError(t, err)
	assert.False(t, again)

	n, err := s.CountAwards(ctx, "bdg_1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAward_UnknownBadge(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Award(context.Background(), "bdg_missing", "usr_1")
	require.ErrorIs(t, err, ErrNotFound)
}

// Concurrent qualifying actions must produce exactly one award.
func TestAward_ConcurrentSingleWinner(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &Badge{ID: "bdg_1", Name: "First Steps"}))

	const goroutines = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			newly, err := s.Award(ctx, "bdg_1", "usr_1")
			if err != nil {
				t.Error(err)
				return
			}
			if newly {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)

	n, err := s.CountAwards(ctx, "bdg_1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEnsureDefaults_Idempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, EnsureDefaults(ctx, s))
	require.NoError(t, EnsureDefaults(ctx, s))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, CriteriaFirstTraining, list[0].Criteria)
}

func TestListAwards_Ordering(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &Badge{ID: "bdg_1", Name: "First Steps"}))

	for _, u := range []string{"usr_c", "usr_a", "usr_b"} {
		_, err := s.Award(ctx, "bdg_1", u)
		require.NoError(t, err)
	}

	awards, err := s.ListAwards(ctx, "bdg_1")
	require.NoError(t, err)
	require.Len(t, awards, 3)
	for _, a := range awards {
		assert.Equal(t, "bdg_1", a.BadgeID)
		assert.False(t, a.AwardedAt.IsZero())
	}
}
