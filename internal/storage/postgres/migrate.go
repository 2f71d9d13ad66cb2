package postgres

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pribylovaa/go-league-auth/migrations"
)

// Migrate выполняет goose-команду (up, down, status, ...) по встроенным миграциям.
func Migrate(ctx context.Context, dbURL, command string, args ...string) error {
	const op = "storage.postgres.Migrate"

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	db, err := goose.OpenDBWithDriver("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer db.Close()

	if err := goose.RunContext(ctx, command, db, ".", args...); err != nil {
		return fmt.Errorf("%s: %s: %w", op, command, err)
	}

	return nil
}
