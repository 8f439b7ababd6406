package main

import (
	"context"
	"flag"
	"fmt"

	"finance/internal/config"
	"finance/internal/db"

	"github.com/google/subcommands"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

type upCmd struct {
	dir string
}

func (*upCmd) Name() string     { return "up" }
func (*upCmd) Synopsis() string { return "apply pending migrations" }
func (*upCmd) Usage() string {
	return `migrate up [-dir migrations]

Applies every migrations/*.sql file that is not yet recorded in schema_migrations, in file name order.
`
}

func (c *upCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "dir", "migrations", "directory holding the *.sql migration files")
}

func (c *upCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	database, ok := connect()
	if !ok {
		return subcommands.ExitFailure
	}
	defer database.Close()

	pending, err := pendingMigrations(ctx, database, c.dir)
	if err != nil {
		log.Errorf("failed to read migration state: %v", err)
		return subcommands.ExitFailure
	}
	for _, file := range pending {
		if err := applyMigration(ctx, database, file); err != nil {
			log.Errorf("failed to apply %s: %v", file.name, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("applied %s\n", file.name)
	}
	if len(pending) == 0 {
		fmt.Println("nothing to apply")
	}
	return subcommands.ExitSuccess
}

type statusCmd struct {
	dir string
}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "list pending migrations" }
func (*statusCmd) Usage() string {
	return `migrate status [-dir migrations]

Prints each migration file with its state.
`
}

func (c *statusCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "dir", "migrations", "directory holding the *.sql migration files")
}

func (c *statusCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	database, ok := connect()
	if !ok {
		return subcommands.ExitFailure
	}
	defer database.Close()

	files, err := migrationFiles(c.dir)
	if err != nil {
		log.Errorf("failed to read migrations: %v", err)
		return subcommands.ExitFailure
	}
	applied, err := appliedMigrations(ctx, database)
	if err != nil {
		log.Errorf("failed to read migration state: %v", err)
		return subcommands.ExitFailure
	}
	for _, file := range files {
		state := "pending"
		if applied[file.name] {
			state = "applied"
		}
		fmt.Printf("%-8s %s\n", state, file.name)
	}
	return subcommands.ExitSuccess
}

func connect() (*sqlx.DB, bool) {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Errorf("failed to connect database: %v", err)
		return nil, false
	}
	return database, true
}
