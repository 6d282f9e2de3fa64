package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"daily-guess-service/internal/app"
	"daily-guess-service/internal/config"
	"daily-guess-service/internal/domain"
	"daily-guess-service/internal/infra/memory"
	"daily-guess-service/internal/infra/postgres"
	itemcache "daily-guess-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// openStore picks Postgres when a URL is configured and memory otherwise,
// optionally behind the Redis item cache. The returned func releases connections.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (app.Store, func(), error) {
	var (
		store    app.Store
		closers  []func()
		closeAll = func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	)

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		store = postgres.NewStore(pool)
		logger.Info("using postgres store")
	} else {
		mem := memory.NewStore()
		if err := seedSampleItems(ctx, mem); err != nil {
			return nil, nil, err
		}
		store = mem
		logger.Warn("no postgres url configured, using in-memory store")
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = client.Close() })
		ttl := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
		store = itemcache.NewItemCache(store, client, ttl)
		logger.Info("item cache enabled", slog.String("addr", cfg.Redis.Addr), slog.Duration("ttl", ttl))
	}

	if err := seedCalendar(ctx, store, cfg); err != nil {
		closeAll()
		return nil, nil, err
	}
	return store, closeAll, nil
}

// seedCalendar stores the configured calendar unless one was saved already.
func seedCalendar(ctx context.Context, store app.Store, cfg config.Config) error {
	cal, ok := cfg.Calendar()
	if !ok {
		return nil
	}
	if _, exists, err := store.GetCalendar(ctx); err != nil {
		return fmt.Errorf("load calendar: %w", err)
	} else if exists {
		return nil
	}
	if _, err := store.SaveCalendar(ctx, cal); err != nil {
		return fmt.Errorf("seed calendar: %w", err)
	}
	return nil
}

// seedSampleItems gives the in-memory store something to play with.
func seedSampleItems(ctx context.Context, store *memory.Store) error {
	for _, item := range []domain.Item{
		{ID: "sample-1", Prompt: "Je fais le café pour tout l'étage", Answer: "Camille", Day: 1, Ordinal: 1, Active: true},
		{ID: "sample-2", Prompt: "Je n'oublie jamais un anniversaire", Answer: "Théo", Day: 1, Ordinal: 2, Active: true},
	} {
		item.CreatedAt = time.Now()
		if _, err := store.CreateItem(ctx, item); err != nil {
			return fmt.Errorf("seed items: %w", err)
		}
	}
	return nil
}

func newServices(store app.Store, cfg config.Config, logger *slog.Logger) (*app.GuessService, *app.AdminService, error) {
	mode, err := domain.ParseScoringMode(cfg.Game.ScoringMode)
	if err != nil {
		return nil, nil, err
	}
	scorer := app.Scorer{
		Mode:             mode,
		PointsPerCorrect: cfg.Game.PointsPerCorrect,
		DailyLimit:       cfg.Game.DailyLimit,
		MergeFirstToken:  cfg.Game.MergeFirstToken,
	}
	guesses := app.NewGuessService(store, scorer, logger)
	admin := app.NewAdminService(store, app.AdminSettings{
		Code:        cfg.Admin.Code,
		MaxItems:    cfg.Game.MaxItems,
		ItemsPerDay: cfg.Game.ItemsPerDay,
	}, scorer, logger)
	return guesses, admin, nil
}
