package app

import (
	"sort"

	"daily-guess-service/internal/domain"
	"daily-guess-service/internal/normalize"
)

// Scorer folds submissions and items into leaderboards and dashboard stats.
type Scorer struct {
	Mode             domain.ScoringMode
	PointsPerCorrect int
	DailyLimit       int
	// MergeFirstToken groups leaderboard rows by first name. Display only; it never
	// affects duplicate checks or first-finder stamps.
	MergeFirstToken bool
}

func (s Scorer) key(player string) string {
	if s.MergeFirstToken {
		return normalize.FirstToken(player)
	}
	return player
}

// Leaderboard ranks players by score. Rows keep first-appearance order among equal
// scores; submissions are expected oldest first.
func (s Scorer) Leaderboard(items []domain.Item, subs []domain.Submission) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0)
	index := make(map[string]int)

	row := func(player, display string) *domain.LeaderboardEntry {
		k := s.key(player)
		if i, ok := index[k]; ok {
			return &entries[i]
		}
		if display == "" {
			display = player
		}
		index[k] = len(entries)
		entries = append(entries, domain.LeaderboardEntry{Player: k, DisplayName: display})
		return &entries[len(entries)-1]
	}

	for _, sub := range subs {
		e := row(sub.Player, sub.DisplayName)
		if sub.IsCorrect {
			e.Correct++
		}
	}

	switch s.Mode {
	case domain.ScoringFirstFinder:
		for _, item := range items {
			if !item.Claimed() {
				continue
			}
			row(item.FirstFinder, "").Score++
		}
	default:
		points := s.PointsPerCorrect
		if points <= 0 {
			points = 1
		}
		for i := range entries {
			entries[i].Score = entries[i].Correct * points
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

// Stats builds the admin dashboard for a game day.
func (s Scorer) Stats(items []domain.Item, subs []domain.Submission, day int) domain.Stats {
	stats := domain.Stats{
		TotalSubmissions: len(subs),
		TotalItems:       len(items),
		Day:              day,
		CompletedPlayers: []string{},
		PartialPlayers:   []string{},
		DaySubmissions:   []domain.Submission{},
		Leaderboard:      s.Leaderboard(items, subs),
	}

	players := make(map[string]struct{})
	perDay := make(map[string]int)
	var dayOrder []string
	foundByCorrect := make(map[string]struct{})
	for _, sub := range subs {
		players[sub.Player] = struct{}{}
		if sub.IsCorrect {
			foundByCorrect[sub.ItemID] = struct{}{}
		}
		if sub.Day != day {
			continue
		}
		stats.DaySubmissions = append(stats.DaySubmissions, sub)
		if _, seen := perDay[sub.Player]; !seen {
			dayOrder = append(dayOrder, sub.Player)
		}
		perDay[sub.Player]++
	}
	stats.TotalPlayers = len(players)

	for _, p := range dayOrder {
		if s.DailyLimit > 0 && perDay[p] >= s.DailyLimit {
			stats.CompletedPlayers = append(stats.CompletedPlayers, p)
		} else {
			stats.PartialPlayers = append(stats.PartialPlayers, p)
		}
	}

	for _, item := range items {
		if s.Mode == domain.ScoringFirstFinder {
			if item.Claimed() {
				stats.ItemsFound++
			}
			continue
		}
		if _, ok := foundByCorrect[item.ID]; ok {
			stats.ItemsFound++
		}
	}
	return stats
}
