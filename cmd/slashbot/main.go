// Package main is the entrypoint for slashbot.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/morezero/slashbot/internal/config"
	"github.com/morezero/slashbot/internal/server"
	"github.com/morezero/slashbot/pkg/db"
)

const usage = `Usage: slashbot [command]
       slashbot serve              Start the bot (HTTP webhook, optional NATS transport).
       slashbot migrate up         Run database migrations.
       slashbot migrate status     Show migration status.
       slashbot clear              Truncate the invocation audit log; schema is preserved.

Commands:
  serve           (default) Start the bot.
  migrate up      Run database migrations only.
  migrate status  Show which migrations are applied and pending.
  clear           Truncate command_invocations.

Environment: SLACK_TOKEN (required for serve), HTTP_PORT, SLASH_COMMAND_PATH, COMMS_URL,
DATABASE_URL (required for migrate and clear), MIGRATION_PATH, COMMANDS_FILE, LOG_LEVEL.
A .env file in the working directory is loaded first when present.
`

func main() {
	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 && args[0] != "" {
		cmd = args[0]
	}

	switch cmd {
	case "migrate":
		if len(args) < 2 {
			log.Fatalf("slashbot migrate: require subcommand (up, status)")
		}
		switch sub := args[1]; sub {
		case "up":
			if err := runMigrateUp(); err != nil {
				log.Fatalf("slashbot migrate up: %v", err)
			}
		case "status":
			if err := runMigrateStatus(); err != nil {
				log.Fatalf("slashbot migrate status: %v", err)
			}
		default:
			log.Fatalf("slashbot migrate: unknown subcommand %q (use up, status)", sub)
		}
		return
	case "clear":
		if err := runClear(); err != nil {
			log.Fatalf("slashbot clear: %v", err)
		}
		return
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	case "serve", "":
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q.\n%s", cmd, usage)
		os.Exit(1)
	}

	if err := server.Run(registerBuiltins); err != nil {
		log.Fatalf("slashbot: %v", err)
	}
}

func runMigrateUp() error {
	return withPool(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
		migrations, err := db.LoadMigrationFiles(cfg.MigrationPath)
		if err != nil {
			return fmt.Errorf("load migrations: %w", err)
		}
		if err := db.RunMigrations(ctx, pool, migrations); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		return nil
	})
}

func runMigrateStatus() error {
	return withPool(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
		return db.MigrationStatus(ctx, pool, cfg.MigrationPath)
	})
}

func runClear() error {
	return withPool(func(ctx context.Context, _ *config.Config, pool *pgxpool.Pool) error {
		if err := db.NewRepository(pool).ClearInvocations(ctx); err != nil {
			return fmt.Errorf("clear invocations: %w", err)
		}
		return nil
	})
}
