package redis

import (
	"context"
	"testing"
	"time"

	"daily-guess-service/internal/domain"
	"daily-guess-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestItemCacheReadsThrough(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := &countingStore{Store: memory.NewStore()}
	seed(t, store.Store)
	cache := NewItemCache(store, newClient(mr), time.Minute)

	if _, err := cache.GetItem(context.Background(), "c1"); err != nil {
		t.Fatalf("get item: %v", err)
	}
	if store.gets != 1 {
		t.Fatalf("expected store hit once, got %d", store.gets)
	}
	if !mr.Exists("guess:item:c1") {
		t.Fatalf("expected item cached in redis")
	}

	// Second call should hit cache, store not incremented.
	if _, err := cache.GetItem(context.Background(), "c1"); err != nil {
		t.Fatalf("get item 2: %v", err)
	}
	if store.gets != 1 {
		t.Fatalf("expected cache hit, store gets=%d", store.gets)
	}
}

func TestItemCacheMissingItemIsNotCached(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewItemCache(memory.NewStore(), newClient(mr), time.Minute)
	if _, err := cache.GetItem(context.Background(), "nope"); err != domain.ErrItemNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if mr.Exists("guess:item:nope") {
		t.Fatalf("expected no cache entry for missing item")
	}
}

func TestItemCacheInvalidatesOnWrites(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store)
	cache := NewItemCache(store, newClient(mr), time.Minute)

	_, _ = cache.GetItem(ctx, "c1")
	answer := "Jean Martin"
	if _, err := cache.UpdateItem(ctx, "c1", domain.ItemPatch{Answer: &answer}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if mr.Exists("guess:item:c1") {
		t.Fatalf("expected key dropped after update")
	}
	item, _ := cache.GetItem(ctx, "c1")
	if item.Answer != answer {
		t.Fatalf("expected fresh answer, got %q", item.Answer)
	}

	sub, err := cache.RecordSubmission(ctx, domain.Submission{Player: "alice", ItemID: "c1", Day: 1, IsCorrect: true}, true)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !sub.IsFirstFinder {
		t.Fatalf("expected claim to win")
	}
	item, _ = cache.GetItem(ctx, "c1")
	if item.FirstFinder != "alice" {
		t.Fatalf("expected cached item to see the stamp, got %q", item.FirstFinder)
	}

	hint, err := cache.CreateHint(ctx, domain.Hint{ItemID: "c1", Text: "tall"})
	if err != nil {
		t.Fatalf("create hint: %v", err)
	}
	item, _ = cache.GetItem(ctx, "c1")
	if len(item.Hints) != 1 {
		t.Fatalf("expected hint visible, got %+v", item.Hints)
	}
	if err := cache.DeleteHint(ctx, hint.ID); err != nil {
		t.Fatalf("delete hint: %v", err)
	}
	item, _ = cache.GetItem(ctx, "c1")
	if len(item.Hints) != 0 {
		t.Fatalf("expected hint gone, got %+v", item.Hints)
	}
}

type countingStore struct {
	*memory.Store
	gets int
}

func (s *countingStore) GetItem(ctx context.Context, id string) (domain.Item, error) {
	s.gets++
	return s.Store.GetItem(ctx, id)
}

func seed(t *testing.T, store *memory.Store) {
	t.Helper()
	_, err := store.CreateItem(context.Background(), domain.Item{
		ID: "c1", Prompt: "Knits during meetings", Answer: "Marie Dupont", Day: 1, Active: true,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

// racingStore runs afterRead once, between reading an item and returning it,
// to interleave a write with an in-flight cache fill.
type racingStore struct {
	*memory.Store
	afterRead func()
}

func (s *racingStore) GetItem(ctx context.Context, id string) (domain.Item, error) {
	item, err := s.Store.GetItem(ctx, id)
	if hook := s.afterRead; hook != nil {
		s.afterRead = nil
		hook()
	}
	return item, err
}

func TestItemCacheDoesNotKeepFillRacingAWrite(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := &racingStore{Store: memory.NewStore()}
	seed(t, store.Store)
	cache := NewItemCache(store, newClient(mr), time.Minute)

	answer := "Jean Martin"
	store.afterRead = func() {
		if _, err := cache.UpdateItem(ctx, "c1", domain.ItemPatch{Answer: &answer}); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	if _, err := cache.GetItem(ctx, "c1"); err != nil {
		t.Fatalf("get item: %v", err)
	}
	if mr.Exists("guess:item:c1") {
		t.Fatalf("expected pre-update read not to be cached")
	}
	item, err := cache.GetItem(ctx, "c1")
	if err != nil {
		t.Fatalf("get item 2: %v", err)
	}
	if item.Answer != answer {
		t.Fatalf("expected fresh answer, got %q", item.Answer)
	}
	if !mr.Exists("guess:item:c1") {
		t.Fatalf("expected quiet read to be cached")
	}

	store.afterRead = func() {
		if err := cache.DeleteItem(ctx, "c1"); err != nil {
			t.Fatalf("delete: %v", err)
		}
	}
	mr.Del("guess:item:c1")
	_, _ = cache.GetItem(ctx, "c1")
	if _, err := cache.GetItem(ctx, "c1"); err != domain.ErrItemNotFound {
		t.Fatalf("expected deleted item to stay gone, got %v", err)
	}
}

func TestItemCacheSeesAssignmentDayMove(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store)
	cache := NewItemCache(store, newClient(mr), time.Minute)

	if _, err := cache.GetItem(ctx, "c1"); err != nil {
		t.Fatalf("warm: %v", err)
	}
	if _, err := cache.SetAssignment(ctx, domain.DailyAssignment{Day: 4, ItemIDs: []string{"c1"}}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	item, err := cache.GetItem(ctx, "c1")
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item.Day != 4 {
		t.Fatalf("expected cached item on day 4, got %d", item.Day)
	}
}
