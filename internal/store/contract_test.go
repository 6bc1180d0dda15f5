package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ronnakrit11/nextai-ytsummary/internal/store"
	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

// stepClock returns a strictly increasing time on every call.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), step: time.Second}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

func sampleAnalysis(topic string) *models.Analysis {
	return &models.Analysis{
		Topic:     topic,
		KeyPoints: []string{"first point", "second point"},
		Summary:   "summary of " + topic,
	}
}

func newParams(videoID, topic string) store.NewSavedAnalysis {
	return store.NewSavedAnalysis{
		VideoID:  videoID,
		VideoURL: "https://www.youtube.com/watch?v=" + videoID,
		Analysis: sampleAnalysis(topic),
	}
}

// runStoreContract exercises the behavior every Store implementation must share.
// newStore must return an empty store using the given clock.
func runStoreContract(t *testing.T, newStore func(t *testing.T, clock store.Clock) store.Store) {
	t.Run("CreateAndGet", func(t *testing.T) {
		s := newStore(t, newStepClock())
		ctx := context.Background()

		created, err := s.Create(ctx, newParams("dQw4w9WgXcQ", "Never gonna"))
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "Never gonna", created.Title)
		assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 1, 0, time.UTC), created.CreatedAt)

		got, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("CreateAssignsUniqueIDs", func(t *testing.T) {
		s := newStore(t, newStepClock())
		ctx := context.Background()

		a, err := s.Create(ctx, newParams("aaaaaaaaaaa", "A"))
		require.NoError(t, err)
		b, err := s.Create(ctx, newParams("aaaaaaaaaaa", "A"))
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("BlankTopicGetsDefaultTitle", func(t *testing.T) {
		s := newStore(t, newStepClock())

		created, err := s.Create(context.Background(), newParams("bbbbbbbbbbb", "   "))
		require.NoError(t, err)
		assert.Equal(t, models.DefaultTitle, created.Title)
	})

	t.Run("CreateRequiresFields", func(t *testing.T) {
		s := newStore(t, newStepClock())
		ctx := context.Background()

		missingVideo := newParams("", "x")
		_, err := s.Create(ctx, missingVideo)
		assert.ErrorIs(t, err, store.ErrValidation)

		missingURL := newParams("ccccccccccc", "x")
		missingURL.VideoURL = ""
		_, err = s.Create(ctx, missingURL)
		assert.ErrorIs(t, err, store.ErrValidation)

		missingAnalysis := newParams("ccccccccccc", "x")
		missingAnalysis.Analysis = nil
		_, err = s.Create(ctx, missingAnalysis)
		assert.ErrorIs(t, err, store.ErrValidation)

		list, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t, newStepClock())

		_, err := s.Get(context.Background(), "does-not-exist")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("ListEmptyIsNotNil", func(t *testing.T) {
		s := newStore(t, newStepClock())

		list, err := s.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Len(t, list, 0)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		s := newStore(t, newStepClock())
		ctx := context.Background()

		var ids []string
		for _, topic := range []string{"one", "two", "three"} {
			rec, err := s.Create(ctx, newParams("ddddddddddd", topic))
			require.NoError(t, err)
			ids = append(ids, rec.ID)
		}

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, ids[2], list[0].ID)
		assert.Equal(t, ids[1], list[1].ID)
		assert.Equal(t, ids[0], list[2].ID)
		for i := 1; i < len(list); i++ {
			assert.False(t, list[i].CreatedAt.After(list[i-1].CreatedAt))
		}
	})

	t.Run("UpdateReplacesAnalysisOnly", func(t *testing.T) {
		s := newStore(t, newStepClock())
		ctx := context.Background()

		created, err := s.Create(ctx, newParams("eeeeeeeeeee", "Before"))
		require.NoError(t, err)

		updated, err := s.Update(ctx, created.ID, models.Analysis{
			Topic:     "After",
			KeyPoints: []string{"new point"},
			Summary:   "new summary",
		})
		require.NoError(t, err)

		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, created.VideoID, updated.VideoID)
		assert.Equal(t, created.VideoURL, updated.VideoURL)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
		assert.Equal(t, "After", updated.Title)
		assert.Equal(t, []string{"new point"}, updated.Analysis.KeyPoints)
		assert.Equal(t, "new summary", updated.Analysis.Summary)

		got, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, got)
	})

	t.Run("UpdateBlankTopicResetsTitle", func(t *testing.T) {
		s := newStore(t, newStepClock())
		ctx := context.Background()

		created, err := s.Create(ctx, newParams("fffffffffff", "Named"))
		require.NoError(t, err)

		updated, err := s.Update(ctx, created.ID, models.Analysis{Summary: "s"})
		require.NoError(t, err)
		assert.Equal(t, models.DefaultTitle, updated.Title)
		assert.NotNil(t, updated.Analysis.KeyPoints)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		s := newStore(t, newStepClock())

		_, err := s.Update(context.Background(), "does-not-exist", *sampleAnalysis("x"))
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("DeleteThenGetAndDeleteAgain", func(t *testing.T) {
		s := newStore(t, newStepClock())
		ctx := context.Background()

		created, err := s.Create(ctx, newParams("ggggggggggg", "Doomed"))
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, created.ID))

		_, err = s.Get(ctx, created.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)

		err = s.Delete(ctx, created.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)

		list, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("ReturnedRecordsAreCopies", func(t *testing.T) {
		s := newStore(t, newStepClock())
		ctx := context.Background()

		created, err := s.Create(ctx, newParams("hhhhhhhhhhh", "Original"))
		require.NoError(t, err)
		created.Analysis.KeyPoints[0] = "mutated"
		created.Title = "mutated"

		got, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Original", got.Title)
		assert.Equal(t, "first point", got.Analysis.KeyPoints[0])
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStore(t, newStepClock())
		assert.NoError(t, s.Ping(context.Background()))
	})
}
