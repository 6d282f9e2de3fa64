package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"daily-guess-service/internal/app"
	"daily-guess-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ItemCache decorates an app.Store with a read-through Redis cache for single items.
// Items are stored as JSON under guess:item:{id}. Listings always go to the store,
// and every write that touches an item drops its key and bumps its version.
// A fill only lands if the version it saw before reading the store is unchanged,
// so a read racing a write never caches the pre-write item.
type ItemCache struct {
	app.Store
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

var _ app.Store = (*ItemCache)(nil)

var errStaleFill = errors.New("item changed during cache fill")

func NewItemCache(store app.Store, client *redis.Client, ttl time.Duration) *ItemCache {
	return &ItemCache{
		Store:  store,
		client: client,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ItemCache) GetItem(ctx context.Context, id string) (domain.Item, error) {
	if item, ok := c.cached(ctx, id); ok {
		return item, nil
	}

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if item, ok := c.cached(ctx, id); ok {
			return item, nil
		}
		ver, gen, verErr := c.versions(ctx, c.client, id)
		item, err := c.Store.GetItem(ctx, id)
		if err != nil {
			return domain.Item{}, err
		}
		if verErr == nil {
			c.fill(ctx, item, ver, gen)
		}
		return item, nil
	})
	if err != nil {
		return domain.Item{}, err
	}
	return result.(domain.Item), nil
}

func (c *ItemCache) UpdateItem(ctx context.Context, id string, patch domain.ItemPatch) (domain.Item, error) {
	item, err := c.Store.UpdateItem(ctx, id, patch)
	c.invalidate(ctx, id)
	return item, err
}

func (c *ItemCache) DeleteItem(ctx context.Context, id string) error {
	err := c.Store.DeleteItem(ctx, id)
	c.invalidate(ctx, id)
	return err
}

func (c *ItemCache) CreateHint(ctx context.Context, hint domain.Hint) (domain.Hint, error) {
	created, err := c.Store.CreateHint(ctx, hint)
	c.invalidate(ctx, hint.ItemID)
	return created, err
}

func (c *ItemCache) UpdateHint(ctx context.Context, id, text string) (domain.Hint, error) {
	hint, err := c.Store.UpdateHint(ctx, id, text)
	if err == nil {
		c.invalidate(ctx, hint.ItemID)
	}
	return hint, err
}

func (c *ItemCache) DeleteHint(ctx context.Context, id string) error {
	// The item id is unknown after deletion, so hint removals flush every cached item.
	err := c.Store.DeleteHint(ctx, id)
	c.invalidateAll(ctx)
	return err
}

func (c *ItemCache) RecordSubmission(ctx context.Context, sub domain.Submission, claim bool) (domain.Submission, error) {
	stored, err := c.Store.RecordSubmission(ctx, sub, claim)
	if claim {
		c.invalidate(ctx, sub.ItemID)
	}
	return stored, err
}

func (c *ItemCache) SetAssignment(ctx context.Context, assignment domain.DailyAssignment) (domain.DailyAssignment, error) {
	stored, err := c.Store.SetAssignment(ctx, assignment)
	// Assigned items had their day moved.
	for _, id := range assignment.ItemIDs {
		c.invalidate(ctx, id)
	}
	return stored, err
}

type multiGetter interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

func (c *ItemCache) versions(ctx context.Context, cmd multiGetter, id string) (string, string, error) {
	vals, err := cmd.MGet(ctx, itemVersionKey(id), itemGenerationKey).Result()
	if err != nil {
		return "", "", err
	}
	return token(vals[0]), token(vals[1]), nil
}

// fill caches item unless its version or the global generation moved since ver
// and gen were read.
func (c *ItemCache) fill(ctx context.Context, item domain.Item, ver, gen string) {
	data, err := json.Marshal(item)
	if err != nil {
		return
	}
	vk := itemVersionKey(item.ID)
	_ = c.client.Watch(ctx, func(tx *redis.Tx) error {
		curVer, curGen, err := c.versions(ctx, tx, item.ID)
		if err != nil {
			return err
		}
		if curVer != ver || curGen != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, itemKey(item.ID), data, c.ttlWithJitter())
			return nil
		})
		return err
	}, vk, itemGenerationKey)
}

func (c *ItemCache) cached(ctx context.Context, id string) (domain.Item, bool) {
	data, err := c.client.Get(ctx, itemKey(id)).Bytes()
	if err != nil {
		return domain.Item{}, false
	}
	var item domain.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return domain.Item{}, false
	}
	return item, true
}

func (c *ItemCache) invalidate(ctx context.Context, id string) {
	if id == "" {
		return
	}
	_, _ = c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, itemVersionKey(id))
		p.Del(ctx, itemKey(id))
		return nil
	})
}

func (c *ItemCache) invalidateAll(ctx context.Context) {
	_ = c.client.Incr(ctx, itemGenerationKey).Err()
	iter := c.client.Scan(ctx, 0, itemKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil && !errors.Is(err, redis.Nil) {
		return
	}
	if len(keys) > 0 {
		_ = c.client.Del(ctx, keys...).Err()
	}
}

func (c *ItemCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func token(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
