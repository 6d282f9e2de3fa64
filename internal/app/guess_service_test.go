package app_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"daily-guess-service/internal/app"
	"daily-guess-service/internal/domain"
	"daily-guess-service/internal/infra/memory"
	"daily-guess-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSubmitCorrectAndIncorrect(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, domain.ScoringFixedPoints)

	out, err := service.Submit(ctx, app.GuessRequest{PlayerName: "Alice", ItemID: "c1", Guess: "  marie dupont ", Day: 1})
	require.NoError(t, err)
	assert.True(t, out.IsCorrect)
	assert.False(t, out.IsFirstFinder)

	out, err = service.Submit(ctx, app.GuessRequest{PlayerName: "Bob", ItemID: "c1", Guess: "Marie-Dupont", Day: 1})
	require.NoError(t, err)
	assert.False(t, out.IsCorrect)
}

func TestSubmitTwiceIsDuplicate(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, domain.ScoringFixedPoints)

	_, err := service.Submit(ctx, app.GuessRequest{PlayerName: "Alice", ItemID: "c1", Guess: "nope", Day: 1})
	require.NoError(t, err)

	// Same person typed differently, different guess.
	_, err = service.Submit(ctx, app.GuessRequest{PlayerName: " ALICE ", ItemID: "c1", Guess: "Marie Dupont", Day: 1})
	require.ErrorIs(t, err, domain.ErrDuplicateSubmission)
	assert.Equal(t, "Tu as déjà répondu à cet indice", domain.MessageFor(err))
}

func TestSubmitDailyLimit(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, domain.ScoringFixedPoints)

	for _, id := range []string{"c1", "c2"} {
		_, err := service.Submit(ctx, app.GuessRequest{PlayerName: "Alice", ItemID: id, Guess: "x", Day: 1})
		require.NoError(t, err)
	}
	_, err := service.Submit(ctx, app.GuessRequest{PlayerName: "Alice", ItemID: "c3", Guess: "x", Day: 1})
	require.ErrorIs(t, err, domain.ErrDailyLimitReached)

	// A new day resets the cap.
	_, err = service.Submit(ctx, app.GuessRequest{PlayerName: "Alice", ItemID: "c3", Guess: "x", Day: 2})
	require.NoError(t, err)
}

func TestSubmitRejections(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, domain.ScoringFixedPoints)

	_, err := service.Submit(ctx, app.GuessRequest{PlayerName: "A", ItemID: "c1", Guess: "x", Day: 1})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = service.Submit(ctx, app.GuessRequest{PlayerName: "Alice", ItemID: "missing", Guess: "x", Day: 1})
	require.ErrorIs(t, err, domain.ErrItemNotFound)

	_, err = service.Submit(ctx, app.GuessRequest{PlayerName: "Alice", ItemID: "future", Guess: "x", Day: 1})
	require.ErrorIs(t, err, domain.ErrNotYetAvailable)
}

func TestSubmitKeepsCorrectnessAfterAnswerEdit(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t, domain.ScoringFixedPoints)

	_, err := service.Submit(ctx, app.GuessRequest{PlayerName: "Alice", ItemID: "c1", Guess: "Marie Dupont", Day: 1})
	require.NoError(t, err)

	answer := "Someone Else"
	_, err = store.UpdateItem(ctx, "c1", domain.ItemPatch{Answer: &answer})
	require.NoError(t, err)

	subs, err := store.ListPlayerSubmissions(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.True(t, subs[0].IsCorrect)
}

func TestFirstFinderScenario(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t, domain.ScoringFirstFinder)

	out, err := service.Submit(ctx, app.GuessRequest{PlayerName: "Alice", ItemID: "c1", Guess: "Marie Dupont", Day: 1})
	require.NoError(t, err)
	assert.True(t, out.IsCorrect)
	assert.True(t, out.IsFirstFinder)

	out, err = service.Submit(ctx, app.GuessRequest{PlayerName: "Bob", ItemID: "c1", Guess: "marie dupont", Day: 1})
	require.NoError(t, err)
	assert.True(t, out.IsCorrect)
	assert.False(t, out.IsFirstFinder)

	item, err := store.GetItem(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "alice", item.FirstFinder)

	lb, err := service.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, lb, 2)
	assert.Equal(t, "alice", lb[0].Player)
	assert.Equal(t, 1, lb[0].Score)
	assert.Equal(t, 0, lb[1].Score)
}

func TestFirstFinderConcurrentSubmissions(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t, domain.ScoringFirstFinder)

	var winners atomic.Int32
	var g errgroup.Group
	for i := 0; i < 40; i++ {
		name := fmt.Sprintf("player %02d", i)
		g.Go(func() error {
			out, err := service.Submit(ctx, app.GuessRequest{PlayerName: name, ItemID: "c1", Guess: "Marie Dupont", Day: 1})
			if err != nil {
				return err
			}
			if !out.IsCorrect {
				return fmt.Errorf("%s: expected correct", name)
			}
			if out.IsFirstFinder {
				winners.Add(1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.EqualValues(t, 1, winners.Load())

	subs, err := store.ListSubmissions(ctx)
	require.NoError(t, err)
	flagged := 0
	for _, s := range subs {
		if s.IsFirstFinder {
			flagged++
		}
	}
	assert.Equal(t, 1, flagged)
}

func TestFixedPointsLeaderboardScenario(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, domain.ScoringFixedPoints)

	_, err := service.Submit(ctx, app.GuessRequest{PlayerName: "Alice", ItemID: "c1", Guess: "Marie Dupont", Day: 1})
	require.NoError(t, err)
	_, err = service.Submit(ctx, app.GuessRequest{PlayerName: "Alice", ItemID: "c2", Guess: "Jean Martin", Day: 1})
	require.NoError(t, err)

	lb, err := service.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, lb, 1)
	assert.Equal(t, 20, lb[0].Score)
}

func TestDayItemsAndPlayerDay(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t, domain.ScoringFixedPoints)

	items, err := service.DayItems(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "c1", items[0].ID)
	assert.Equal(t, "c3", items[2].ID)

	_, err = store.SetAssignment(ctx, domain.DailyAssignment{Day: 1, ItemIDs: []string{"c2"}})
	require.NoError(t, err)
	items, err = service.DayItems(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "c2", items[0].ID)

	_, err = service.Submit(ctx, app.GuessRequest{PlayerName: "Alice", ItemID: "c1", Guess: "x", Day: 1})
	require.NoError(t, err)
	progress, err := service.PlayerDay(ctx, "alice", 1)
	require.NoError(t, err)
	assert.Len(t, progress.Submissions, 1)
	assert.False(t, progress.Completed)
}

func TestCurrentDay(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	cal, err := domain.NewGameCalendar("2024-12-01", "2024-12-10")
	require.NoError(t, err)
	_, _ = store.SaveCalendar(ctx, cal)

	now := func() time.Time { return time.Date(2024, 12, 3, 15, 0, 0, 0, time.UTC) }
	service := app.NewGuessServiceWithClock(store, app.Scorer{DailyLimit: 2}, testutil.NopLogger(), now)
	day, err := service.CurrentDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, day)
}

func newTestService(t *testing.T, mode domain.ScoringMode) (*app.GuessService, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	seed := []domain.Item{
		{ID: "c1", Prompt: "Always first at the coffee machine", Answer: "Marie Dupont", Day: 1, Ordinal: 1, Active: true},
		{ID: "c2", Prompt: "Plays the ukulele", Answer: "Jean Martin", Day: 1, Ordinal: 2, Active: true},
		{ID: "c3", Prompt: "Ran a marathon", Answer: "Zoé Bernard", Day: 1, Active: true},
		{ID: "future", Prompt: "Later", Answer: "Later", Day: 5, Active: true},
	}
	for _, item := range seed {
		_, err := store.CreateItem(ctx, item)
		require.NoError(t, err)
	}
	scorer := app.Scorer{Mode: mode, PointsPerCorrect: 10, DailyLimit: 2}
	return app.NewGuessService(store, scorer, testutil.NopLogger()), store
}

func TestDailyAssignmentDecidesAvailability(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t, domain.ScoringFixedPoints)
	admin := app.NewAdminService(store, app.AdminSettings{Code: "code", ItemsPerDay: 2},
		app.Scorer{Mode: domain.ScoringFixedPoints, DailyLimit: 2}, testutil.NopLogger())

	// A later item pulled forward is both listed and answerable on its new day.
	_, err := admin.SetDailyItems(ctx, "code", 3, []string{"future"})
	require.NoError(t, err)
	items, err := service.DayItems(ctx, 3)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "future", items[0].ID)
	out, err := service.Submit(ctx, app.GuessRequest{PlayerName: "Alice", ItemID: "future", Guess: "later", Day: 3})
	require.NoError(t, err)
	assert.True(t, out.IsCorrect)

	// An early item pushed back disappears from its old day and is not answerable there.
	_, err = admin.SetDailyItems(ctx, "code", 5, []string{"c2"})
	require.NoError(t, err)
	items, err = service.DayItems(ctx, 1)
	require.NoError(t, err)
	for _, item := range items {
		assert.NotEqual(t, "c2", item.ID)
	}
	_, err = service.Submit(ctx, app.GuessRequest{PlayerName: "Bob", ItemID: "c2", Guess: "Jean Martin", Day: 1})
	require.ErrorIs(t, err, domain.ErrNotYetAvailable)

	items, err = service.DayItems(ctx, 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "c2", items[0].ID)
}
