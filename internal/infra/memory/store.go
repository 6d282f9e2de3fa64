package memory

import (
	"context"
	"sort"
	"sync"

	"daily-guess-service/internal/app"
	"daily-guess-service/internal/domain"
	"github.com/google/uuid"
)

// Store is an in-process implementation of app.Store, used in dev mode and tests.
// A single mutex serializes writes, which makes RecordSubmission's claim atomic.
type Store struct {
	mu          sync.RWMutex
	items       map[string]domain.Item
	itemOrder   []string
	hints       map[string]domain.Hint
	submissions []domain.Submission
	players     map[string]domain.Player
	playerOrder []string
	assignments map[int]domain.DailyAssignment
	calendar    *domain.GameCalendar
}

var _ app.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		items:       make(map[string]domain.Item),
		hints:       make(map[string]domain.Hint),
		players:     make(map[string]domain.Player),
		assignments: make(map[int]domain.DailyAssignment),
	}
}

func (s *Store) GetItem(_ context.Context, id string) (domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return domain.Item{}, domain.ErrItemNotFound
	}
	return s.withHintsLocked(item), nil
}

func (s *Store) ListItems(_ context.Context) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Item, 0, len(s.itemOrder))
	for _, id := range s.itemOrder {
		out = append(out, s.withHintsLocked(s.items[id]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day > out[j].Day
		}
		return out[i].Ordinal < out[j].Ordinal
	})
	return out, nil
}

func (s *Store) CountItems(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

func (s *Store) CreateItem(_ context.Context, item domain.Item) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.Hints = nil
	s.items[item.ID] = item
	s.itemOrder = append(s.itemOrder, item.ID)
	return item, nil
}

func (s *Store) UpdateItem(_ context.Context, id string, patch domain.ItemPatch) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return domain.Item{}, domain.ErrItemNotFound
	}
	item = patch.Apply(item)
	s.items[id] = item
	if patch.Day != nil {
		s.unassignLocked(id, item.Day)
	}
	return s.withHintsLocked(item), nil
}

func (s *Store) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return domain.ErrItemNotFound
	}
	delete(s.items, id)
	for i, existing := range s.itemOrder {
		if existing == id {
			s.itemOrder = append(s.itemOrder[:i], s.itemOrder[i+1:]...)
			break
		}
	}
	for hid, h := range s.hints {
		if h.ItemID == id {
			delete(s.hints, hid)
		}
	}
	s.unassignLocked(id, 0)
	return nil
}

func (s *Store) CreateHint(_ context.Context, hint domain.Hint) (domain.Hint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[hint.ItemID]; !ok {
		return domain.Hint{}, domain.ErrItemNotFound
	}
	if hint.ID == "" {
		hint.ID = uuid.NewString()
	}
	s.hints[hint.ID] = hint
	return hint, nil
}

func (s *Store) UpdateHint(_ context.Context, id, text string) (domain.Hint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hint, ok := s.hints[id]
	if !ok {
		return domain.Hint{}, domain.ErrHintNotFound
	}
	hint.Text = text
	s.hints[id] = hint
	return hint, nil
}

func (s *Store) DeleteHint(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hints[id]; !ok {
		return domain.ErrHintNotFound
	}
	delete(s.hints, id)
	return nil
}

func (s *Store) ListPlayerSubmissions(_ context.Context, player string) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Submission
	for _, sub := range s.submissions {
		if sub.Player == player {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *Store) ListSubmissions(_ context.Context) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Submission, len(s.submissions))
	copy(out, s.submissions)
	return out, nil
}

func (s *Store) RecordSubmission(_ context.Context, sub domain.Submission, claim bool) (domain.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.submissions {
		if existing.Player == sub.Player && existing.ItemID == sub.ItemID {
			return domain.Submission{}, domain.ErrDuplicateSubmission
		}
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	sub.IsFirstFinder = false
	if claim {
		// Conditional stamp: only the first claim on an unclaimed item wins.
		if item, ok := s.items[sub.ItemID]; ok && item.FirstFinder == "" {
			item.FirstFinder = sub.Player
			s.items[sub.ItemID] = item
			sub.IsFirstFinder = true
		}
	}

	if _, ok := s.players[sub.Player]; !ok {
		s.players[sub.Player] = domain.Player{
			ID:          uuid.NewString(),
			Name:        sub.Player,
			DisplayName: sub.DisplayName,
			CreatedAt:   sub.CreatedAt,
		}
		s.playerOrder = append(s.playerOrder, sub.Player)
	}
	s.submissions = append(s.submissions, sub)
	return sub, nil
}

func (s *Store) ListPlayers(_ context.Context) ([]domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Player, 0, len(s.playerOrder))
	for _, name := range s.playerOrder {
		out = append(out, s.players[name])
	}
	return out, nil
}

func (s *Store) GetAssignment(_ context.Context, day int) (domain.DailyAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[day]
	if !ok {
		return domain.DailyAssignment{Day: day, ItemIDs: []string{}}, nil
	}
	return cloneAssignment(a), nil
}

func (s *Store) SetAssignment(_ context.Context, assignment domain.DailyAssignment) (domain.DailyAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := cloneAssignment(assignment)
	for _, id := range stored.ItemIDs {
		if item, ok := s.items[id]; ok {
			item.Day = stored.Day
			s.items[id] = item
		}
		s.unassignLocked(id, stored.Day)
	}
	s.assignments[assignment.Day] = stored
	return cloneAssignment(stored), nil
}

// unassignLocked removes id from every assignment except keepDay's.
func (s *Store) unassignLocked(id string, keepDay int) {
	for day, a := range s.assignments {
		if day == keepDay {
			continue
		}
		kept := a.ItemIDs[:0:0]
		for _, itemID := range a.ItemIDs {
			if itemID != id {
				kept = append(kept, itemID)
			}
		}
		a.ItemIDs = kept
		s.assignments[day] = a
	}
}

func (s *Store) ListAssignments(_ context.Context) ([]domain.DailyAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.DailyAssignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		out = append(out, cloneAssignment(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

func (s *Store) GetCalendar(_ context.Context) (domain.GameCalendar, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.calendar == nil {
		return domain.GameCalendar{}, false, nil
	}
	return *s.calendar, true, nil
}

func (s *Store) SaveCalendar(_ context.Context, cal domain.GameCalendar) (domain.GameCalendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendar = &cal
	return cal, nil
}

func (s *Store) withHintsLocked(item domain.Item) domain.Item {
	var hints []domain.Hint
	for _, h := range s.hints {
		if h.ItemID == item.ID {
			hints = append(hints, h)
		}
	}
	sort.Slice(hints, func(i, j int) bool {
		if !hints[i].CreatedAt.Equal(hints[j].CreatedAt) {
			return hints[i].CreatedAt.Before(hints[j].CreatedAt)
		}
		return hints[i].ID < hints[j].ID
	})
	item.Hints = hints
	return item
}

func cloneAssignment(a domain.DailyAssignment) domain.DailyAssignment {
	ids := make([]string, len(a.ItemIDs))
	copy(ids, a.ItemIDs)
	return domain.DailyAssignment{Day: a.Day, ItemIDs: ids}
}
