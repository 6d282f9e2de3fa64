package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"daily-guess-service/internal/config"
	"daily-guess-service/internal/domain"
	"daily-guess-service/internal/infra/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintLeaderboard(t *testing.T) {
	entries := []domain.LeaderboardEntry{
		{Player: "alice", DisplayName: "Alice", Score: 20, Correct: 2},
		{Player: "bob", DisplayName: "Bob", Score: 10, Correct: 1},
		{Player: "chloe", DisplayName: "Chloé", Score: 0, Correct: 0},
	}

	var buf bytes.Buffer
	require.NoError(t, printLeaderboard(&buf, entries, 2))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"RANK", "PLAYER", "SCORE", "CORRECT"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1", "Alice", "20", "2"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"2", "Bob", "10", "1"}, strings.Fields(lines[2]))
}

func TestSeedCalendarKeepsStoredCalendar(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	var cfg config.Config
	cfg.Game.StartDate = "2024-12-01"
	cfg.Game.EndDate = "2024-12-24"
	require.NoError(t, seedCalendar(ctx, store, cfg))

	cal, ok, err := store.GetCalendar(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 24, cal.TotalDays())

	cfg.Game.EndDate = "2024-12-10"
	require.NoError(t, seedCalendar(ctx, store, cfg))
	cal, _, err = store.GetCalendar(ctx)
	require.NoError(t, err)
	assert.Equal(t, 24, cal.TotalDays())
}
