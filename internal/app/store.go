package app

import (
	"context"

	"daily-guess-service/internal/domain"
)

// ItemStore persists items and their hints.
type ItemStore interface {
	// GetItem returns domain.ErrItemNotFound for unknown ids.
	GetItem(ctx context.Context, id string) (domain.Item, error)
	// ListItems orders by day descending, then ordinal and creation time.
	ListItems(ctx context.Context) ([]domain.Item, error)
	CountItems(ctx context.Context) (int, error)
	CreateItem(ctx context.Context, item domain.Item) (domain.Item, error)
	// UpdateItem drops the item from assignments of other days when Day changes.
	UpdateItem(ctx context.Context, id string, patch domain.ItemPatch) (domain.Item, error)
	DeleteItem(ctx context.Context, id string) error

	CreateHint(ctx context.Context, hint domain.Hint) (domain.Hint, error)
	UpdateHint(ctx context.Context, id, text string) (domain.Hint, error)
	DeleteHint(ctx context.Context, id string) error
}

// SubmissionStore persists guesses and the players behind them.
type SubmissionStore interface {
	// ListPlayerSubmissions returns every submission of a normalized player identity.
	ListPlayerSubmissions(ctx context.Context, player string) ([]domain.Submission, error)
	// ListSubmissions returns all submissions oldest first.
	ListSubmissions(ctx context.Context) ([]domain.Submission, error)
	// RecordSubmission inserts sub and, when claim is set, stamps the item's first
	// finder only if it is still empty. Both writes commit together. The returned
	// submission has IsFirstFinder set from the outcome of that conditional write.
	// A second submission for the same (player, item) fails with
	// domain.ErrDuplicateSubmission.
	RecordSubmission(ctx context.Context, sub domain.Submission, claim bool) (domain.Submission, error)
	ListPlayers(ctx context.Context) ([]domain.Player, error)
}

// ScheduleStore persists day assignments and the game calendar.
type ScheduleStore interface {
	// GetAssignment returns an empty assignment when the day has none.
	GetAssignment(ctx context.Context, day int) (domain.DailyAssignment, error)
	// SetAssignment replaces the day's items and, in the same write, moves each
	// assigned item's Day to that day and drops it from other days' assignments.
	SetAssignment(ctx context.Context, assignment domain.DailyAssignment) (domain.DailyAssignment, error)
	ListAssignments(ctx context.Context) ([]domain.DailyAssignment, error)
	// GetCalendar reports false when no calendar was saved yet.
	GetCalendar(ctx context.Context) (domain.GameCalendar, bool, error)
	SaveCalendar(ctx context.Context, cal domain.GameCalendar) (domain.GameCalendar, error)
}

// Store is everything the services need from persistence.
type Store interface {
	ItemStore
	SubmissionStore
	ScheduleStore
}
