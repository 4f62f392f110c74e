package db

import (
	"github.com/kashguard/go-payment-intents/internal/api"
	"github.com/kashguard/go-payment-intents/internal/config"
	"github.com/kashguard/go-payment-intents/internal/util/command"
	"github.com/rs/zerolog/log"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"
)

const (
	migrationsTable = "migrations"
	dialect         = "postgres"
)

func newMigrate() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Executes all pending migrations against STORE_DATABASE_DSN",
		Long: `Executes all pending migrations from STORE_MIGRATIONS_DIR.

Only needed when STORE_DRIVER=postgres.`,
		Run: func(_ *cobra.Command, _ []string) {
			migrateCmdFunc()
		},
	}
}

func migrationSource(cfg config.Server) *migrate.FileMigrationSource {
	migrate.SetTable(migrationsTable)

	return &migrate.FileMigrationSource{
		Dir: cfg.Store.MigrationsDir,
	}
}

func migrateCmdFunc() {
	cfg := config.DefaultServiceConfigFromEnv()
	command.SetupLogger(cfg.Logger)

	db, err := api.NewDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer db.Close()

	n, err := migrate.Exec(db, dialect, migrationSource(cfg), migrate.Up)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	log.Info().Int("applied", n).Str("dir", cfg.Store.MigrationsDir).Msg("Applied migrations")
}
