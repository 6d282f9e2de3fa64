package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"daily-guess-service/internal/domain"
	"daily-guess-service/internal/normalize"
	"github.com/google/uuid"
)

// Outcome is what an accepted guess reports back to the player.
type Outcome struct {
	SubmissionID  string
	IsCorrect     bool
	IsFirstFinder bool
	Mode          domain.ScoringMode
}

// PlayerDay is a player's progress on one game day.
type PlayerDay struct {
	Player      string              `json:"player"`
	Day         int                 `json:"day"`
	Submissions []domain.Submission `json:"submissions"`
	Completed   bool                `json:"completed"`
}

// GuessService is the only writer of submissions and first-finder stamps.
type GuessService struct {
	store  Store
	rules  Rules
	scorer Scorer
	logger *slog.Logger
	now    func() time.Time
}

func NewGuessService(store Store, scorer Scorer, logger *slog.Logger) *GuessService {
	return NewGuessServiceWithClock(store, scorer, logger, time.Now)
}

// NewGuessServiceWithClock is used by tests that need deterministic timestamps.
func NewGuessServiceWithClock(store Store, scorer Scorer, logger *slog.Logger, now func() time.Time) *GuessService {
	return &GuessService{
		store:  store,
		rules:  Rules{Mode: scorer.Mode, DailyLimit: scorer.DailyLimit},
		scorer: scorer,
		logger: logger,
		now:    now,
	}
}

// Submit validates a guess, records it and reports whether it was correct.
// Business-rule failures come back as *domain.Rejection; anything else is a
// persistence failure.
func (s *GuessService) Submit(ctx context.Context, req GuessRequest) (Outcome, error) {
	if rej := CheckShape(req); rej != nil {
		return Outcome{}, rej
	}
	req.ItemID = strings.TrimSpace(req.ItemID)
	player := normalize.Normalize(req.PlayerName)

	var item *domain.Item
	found, err := s.store.GetItem(ctx, req.ItemID)
	switch {
	case err == nil:
		item = &found
	case errors.Is(err, domain.ErrItemNotFound):
	default:
		s.logger.Error("load item", slog.String("item", req.ItemID), slog.Any("error", err))
		return Outcome{}, fmt.Errorf("load item: %w", err)
	}

	prior, err := s.store.ListPlayerSubmissions(ctx, player)
	if err != nil {
		s.logger.Error("load submissions", slog.String("player", player), slog.Any("error", err))
		return Outcome{}, fmt.Errorf("load submissions: %w", err)
	}

	decision := Validate(req, item, prior, s.rules)
	if !decision.Accepted() {
		s.logger.Info("guess rejected",
			slog.String("player", player),
			slog.String("item", req.ItemID),
			slog.String("reason", decision.Rejection.Error()),
		)
		return Outcome{}, decision.Rejection
	}

	sub := domain.Submission{
		ID:          uuid.NewString(),
		Player:      player,
		DisplayName: strings.TrimSpace(req.PlayerName),
		ItemID:      req.ItemID,
		Day:         req.Day,
		Guess:       strings.TrimSpace(req.Guess),
		IsCorrect:   decision.IsCorrect,
		CreatedAt:   s.now(),
	}
	stored, err := s.store.RecordSubmission(ctx, sub, decision.ClaimFirstFinder)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateSubmission) {
			// Lost a race against a concurrent submission of the same player.
			return Outcome{}, domain.Reject(domain.ErrDuplicateSubmission)
		}
		s.logger.Error("record submission", slog.String("player", player), slog.String("item", req.ItemID), slog.Any("error", err))
		return Outcome{}, fmt.Errorf("record submission: %w", err)
	}

	s.logger.Info("guess recorded",
		slog.String("player", player),
		slog.String("item", req.ItemID),
		slog.Bool("correct", stored.IsCorrect),
		slog.Bool("first_finder", stored.IsFirstFinder),
	)
	return Outcome{
		SubmissionID:  stored.ID,
		IsCorrect:     stored.IsCorrect,
		IsFirstFinder: stored.IsFirstFinder,
		Mode:          s.rules.Mode,
	}, nil
}

// DayItems returns the player-facing items of a game day. Explicit day
// assignments win; without one, active items scheduled for that day are used.
func (s *GuessService) DayItems(ctx context.Context, day int) ([]domain.PublicItem, error) {
	assignment, err := s.store.GetAssignment(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("load assignment: %w", err)
	}

	var items []domain.Item
	if len(assignment.ItemIDs) > 0 {
		for _, id := range assignment.ItemIDs {
			item, err := s.store.GetItem(ctx, id)
			if errors.Is(err, domain.ErrItemNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("load item: %w", err)
			}
			if item.Active {
				items = append(items, item)
			}
		}
	} else {
		all, err := s.store.ListItems(ctx)
		if err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}
		for _, item := range all {
			if item.Active && item.Day == day {
				items = append(items, item)
			}
		}
		sort.SliceStable(items, func(i, j int) bool { return ordinalRank(items[i]) < ordinalRank(items[j]) })
	}

	out := make([]domain.PublicItem, 0, len(items))
	for _, item := range items {
		out = append(out, item.Public())
	}
	return out, nil
}

// PlayerDay reports a player's submissions for a day and whether the cap is reached.
func (s *GuessService) PlayerDay(ctx context.Context, playerName string, day int) (PlayerDay, error) {
	player := normalize.Normalize(playerName)
	if player == "" {
		return PlayerDay{}, domain.Reject(domain.ErrInvalidInput)
	}
	subs, err := s.store.ListPlayerSubmissions(ctx, player)
	if err != nil {
		return PlayerDay{}, fmt.Errorf("load submissions: %w", err)
	}
	result := PlayerDay{Player: player, Day: day, Submissions: []domain.Submission{}}
	for _, sub := range subs {
		if sub.Day == day {
			result.Submissions = append(result.Submissions, sub)
		}
	}
	result.Completed = s.rules.DailyLimit > 0 && len(result.Submissions) >= s.rules.DailyLimit
	return result, nil
}

// Leaderboard computes the current scoreboard.
func (s *GuessService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	subs, err := s.store.ListSubmissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return s.scorer.Leaderboard(items, subs), nil
}

// Calendar returns the stored game calendar, or a zero calendar when none is set.
func (s *GuessService) Calendar(ctx context.Context) (domain.GameCalendar, error) {
	cal, _, err := s.store.GetCalendar(ctx)
	if err != nil {
		return domain.GameCalendar{}, fmt.Errorf("load calendar: %w", err)
	}
	return cal, nil
}

// CurrentDay is the game day containing the current time.
func (s *GuessService) CurrentDay(ctx context.Context) (int, error) {
	cal, err := s.Calendar(ctx)
	if err != nil {
		return 0, err
	}
	return cal.DayFor(s.now()), nil
}

// ordinalRank places items without an ordinal after numbered ones.
func ordinalRank(item domain.Item) int {
	if item.Ordinal <= 0 {
		return math.MaxInt
	}
	return item.Ordinal
}
