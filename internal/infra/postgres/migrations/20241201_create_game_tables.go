package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_init.sql
var initSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, initSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `
				DROP TABLE IF EXISTS game_config;
				DROP TABLE IF EXISTS daily_assignments;
				DROP TABLE IF EXISTS submissions;
				DROP TABLE IF EXISTS players;
				DROP TABLE IF EXISTS hints;
				DROP TABLE IF EXISTS items;`)
			return err
		},
	)
}
