// migrator применяет встроенные goose-миграции схемы users/refresh_tokens.
//
//	migrator [-db-url URL] [up|down|status|version|redo|reset]
//
// Без -db-url используется DATABASE_URL (в том числе из .env).
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/pribylovaa/go-league-auth/internal/storage/postgres"
)

func main() {
	var dbURL string
	flag.StringVar(&dbURL, "db-url", "", "postgres connection url (defaults to DATABASE_URL)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	_ = godotenv.Load()
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Error("migrate_failed", slog.String("err", "DATABASE_URL is empty"))
		os.Exit(2)
	}

	command := "up"
	var args []string
	if flag.NArg() > 0 {
		command = flag.Arg(0)
		args = flag.Args()[1:]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := postgres.Migrate(ctx, dbURL, command, args...); err != nil {
		log.Error("migrate_failed", slog.String("command", command), slog.String("err", err.Error()))
		cancel()
		os.Exit(1)
	}

	log.Info("migrate_done", slog.String("command", command))
}
