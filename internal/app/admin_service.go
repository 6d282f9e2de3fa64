package app

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"daily-guess-service/internal/domain"
	"github.com/google/uuid"
)

// AdminSettings bounds what the admin may configure.
type AdminSettings struct {
	Code        string
	MaxItems    int
	ItemsPerDay int
}

// NewItem carries the fields of an item being created.
type NewItem struct {
	Prompt  string `json:"prompt"`
	Answer  string `json:"answer"`
	Day     int    `json:"day"`
	Ordinal int    `json:"ordinal"`
}

// AdminService manages items, hints, day assignments and the calendar.
// Every call re-checks the shared admin code; there is no session.
type AdminService struct {
	store    Store
	settings AdminSettings
	scorer   Scorer
	logger   *slog.Logger
	now      func() time.Time
}

func NewAdminService(store Store, settings AdminSettings, scorer Scorer, logger *slog.Logger) *AdminService {
	if settings.ItemsPerDay <= 0 {
		settings.ItemsPerDay = 2
	}
	return &AdminService{
		store:    store,
		settings: settings,
		scorer:   scorer,
		logger:   logger,
		now:      time.Now,
	}
}

// Verify reports whether code matches the configured secret.
func (a *AdminService) Verify(code string) (bool, error) {
	if a.settings.Code == "" {
		return false, domain.ErrAdminDisabled
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(a.settings.Code)) == 1, nil
}

// Authorize rejects any code other than the configured one.
func (a *AdminService) Authorize(code string) error {
	ok, err := a.Verify(code)
	if err != nil || !ok {
		a.logger.Warn("admin verification failed")
		return domain.Reject(domain.ErrUnauthorized)
	}
	return nil
}

// ListItems returns all items with their hints.
func (a *AdminService) ListItems(ctx context.Context, code string) ([]domain.Item, error) {
	if err := a.Authorize(code); err != nil {
		return nil, err
	}
	return a.listItems(ctx)
}

func (a *AdminService) listItems(ctx context.Context) ([]domain.Item, error) {
	items, err := a.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// AddItem creates an item unless the capacity is reached.
func (a *AdminService) AddItem(ctx context.Context, code string, in NewItem) ([]domain.Item, error) {
	if err := a.Authorize(code); err != nil {
		return nil, err
	}
	in.Prompt = strings.TrimSpace(in.Prompt)
	in.Answer = strings.TrimSpace(in.Answer)
	if in.Prompt == "" || in.Answer == "" || in.Day < 1 || in.Ordinal < 0 || in.Ordinal > a.settings.ItemsPerDay {
		return nil, domain.Reject(domain.ErrInvalidInput)
	}

	count, err := a.store.CountItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	if a.settings.MaxItems > 0 && count >= a.settings.MaxItems {
		return nil, domain.RejectWith(domain.ErrCapacityReached,
			fmt.Sprintf("Maximum %d indices atteint", a.settings.MaxItems))
	}

	item, err := a.store.CreateItem(ctx, domain.Item{
		ID:        uuid.NewString(),
		Prompt:    in.Prompt,
		Answer:    in.Answer,
		Day:       in.Day,
		Ordinal:   in.Ordinal,
		Active:    true,
		CreatedAt: a.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	a.logger.Info("item added", slog.String("item", item.ID), slog.Int("day", item.Day))
	return a.listItems(ctx)
}

// UpdateItem edits an item. Recorded submissions keep their correctness.
func (a *AdminService) UpdateItem(ctx context.Context, code, id string, patch domain.ItemPatch) ([]domain.Item, error) {
	if err := a.Authorize(code); err != nil {
		return nil, err
	}
	if patch.Day != nil && *patch.Day < 1 {
		return nil, domain.Reject(domain.ErrInvalidInput)
	}
	if patch.Answer != nil && strings.TrimSpace(*patch.Answer) == "" {
		return nil, domain.Reject(domain.ErrInvalidInput)
	}
	if _, err := a.store.UpdateItem(ctx, id, patch); err != nil {
		return nil, a.storeErr("update item", err)
	}
	a.logger.Info("item updated", slog.String("item", id))
	return a.listItems(ctx)
}

// DeleteItem removes an item, its hints and its day assignments.
func (a *AdminService) DeleteItem(ctx context.Context, code, id string) ([]domain.Item, error) {
	if err := a.Authorize(code); err != nil {
		return nil, err
	}
	if err := a.store.DeleteItem(ctx, id); err != nil {
		return nil, a.storeErr("delete item", err)
	}
	a.logger.Info("item deleted", slog.String("item", id))
	return a.listItems(ctx)
}

// AddHint attaches a sub-clue to an item.
func (a *AdminService) AddHint(ctx context.Context, code, itemID, text string) ([]domain.Item, error) {
	if err := a.Authorize(code); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" || itemID == "" {
		return nil, domain.Reject(domain.ErrInvalidInput)
	}
	_, err := a.store.CreateHint(ctx, domain.Hint{
		ID:        uuid.NewString(),
		ItemID:    itemID,
		Text:      text,
		CreatedAt: a.now(),
	})
	if err != nil {
		return nil, a.storeErr("create hint", err)
	}
	return a.listItems(ctx)
}

// UpdateHint replaces a hint's text.
func (a *AdminService) UpdateHint(ctx context.Context, code, id, text string) ([]domain.Item, error) {
	if err := a.Authorize(code); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.Reject(domain.ErrInvalidInput)
	}
	if _, err := a.store.UpdateHint(ctx, id, text); err != nil {
		return nil, a.storeErr("update hint", err)
	}
	return a.listItems(ctx)
}

// DeleteHint removes a hint.
func (a *AdminService) DeleteHint(ctx context.Context, code, id string) ([]domain.Item, error) {
	if err := a.Authorize(code); err != nil {
		return nil, err
	}
	if err := a.store.DeleteHint(ctx, id); err != nil {
		return nil, a.storeErr("delete hint", err)
	}
	return a.listItems(ctx)
}

// SetDailyItems replaces the items live on a day.
func (a *AdminService) SetDailyItems(ctx context.Context, code string, day int, itemIDs []string) ([]domain.DailyAssignment, error) {
	if err := a.Authorize(code); err != nil {
		return nil, err
	}
	if day < 1 {
		return nil, domain.Reject(domain.ErrInvalidInput)
	}

	ids := make([]string, 0, len(itemIDs))
	seen := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) > a.settings.ItemsPerDay {
		return nil, domain.Reject(domain.ErrTooManyItemsForDay)
	}
	for _, id := range ids {
		if _, err := a.store.GetItem(ctx, id); err != nil {
			return nil, a.storeErr("load item", err)
		}
	}

	if _, err := a.store.SetAssignment(ctx, domain.DailyAssignment{Day: day, ItemIDs: ids}); err != nil {
		return nil, fmt.Errorf("set assignment: %w", err)
	}
	a.logger.Info("day assigned", slog.Int("day", day), slog.Int("items", len(ids)))
	return a.ListDailyAssignments(ctx, code)
}

// ListDailyAssignments returns every stored day assignment.
func (a *AdminService) ListDailyAssignments(ctx context.Context, code string) ([]domain.DailyAssignment, error) {
	if err := a.Authorize(code); err != nil {
		return nil, err
	}
	assignments, err := a.store.ListAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// Stats builds the dashboard for day; day 0 means the current game day.
func (a *AdminService) Stats(ctx context.Context, code string, day int) (domain.Stats, error) {
	if err := a.Authorize(code); err != nil {
		return domain.Stats{}, err
	}
	if day <= 0 {
		cal, _, err := a.store.GetCalendar(ctx)
		if err != nil {
			return domain.Stats{}, fmt.Errorf("load calendar: %w", err)
		}
		day = cal.DayFor(a.now())
	}
	items, err := a.store.ListItems(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("list items: %w", err)
	}
	subs, err := a.store.ListSubmissions(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("list submissions: %w", err)
	}
	return a.scorer.Stats(items, subs, day), nil
}

// GameConfig returns the stored calendar.
func (a *AdminService) GameConfig(ctx context.Context, code string) (domain.GameCalendar, error) {
	if err := a.Authorize(code); err != nil {
		return domain.GameCalendar{}, err
	}
	cal, _, err := a.store.GetCalendar(ctx)
	if err != nil {
		return domain.GameCalendar{}, fmt.Errorf("load calendar: %w", err)
	}
	return cal, nil
}

// UpdateGameConfig replaces the calendar; dates use domain.DateLayout.
func (a *AdminService) UpdateGameConfig(ctx context.Context, code, start, end string) (domain.GameCalendar, error) {
	if err := a.Authorize(code); err != nil {
		return domain.GameCalendar{}, err
	}
	cal, err := domain.NewGameCalendar(start, end)
	if err != nil {
		return domain.GameCalendar{}, domain.RejectWith(domain.ErrInvalidInput, "Dates invalides")
	}
	saved, err := a.store.SaveCalendar(ctx, cal)
	if err != nil {
		return domain.GameCalendar{}, fmt.Errorf("save calendar: %w", err)
	}
	return saved, nil
}

func (a *AdminService) storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrItemNotFound) || errors.Is(err, domain.ErrHintNotFound) {
		return domain.Reject(err)
	}
	a.logger.Error(op, slog.Any("error", err))
	return fmt.Errorf("%s: %w", op, err)
}
