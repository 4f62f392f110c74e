package db

import (
	"fmt"

	"github.com/kashguard/go-payment-intents/internal/api"
	"github.com/kashguard/go-payment-intents/internal/config"
	"github.com/kashguard/go-payment-intents/internal/util/command"
	"github.com/rs/zerolog/log"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"
)

func newStatus() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Lists known migrations and whether they were applied",
		Run: func(cmd *cobra.Command, _ []string) {
			cfg := config.DefaultServiceConfigFromEnv()
			command.SetupLogger(cfg.Logger)

			db, err := api.NewDB(cfg)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to connect to the database")
			}
			defer db.Close()

			migrations, err := migrationSource(cfg).FindMigrations()
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to read migrations")
			}

			records, err := migrate.GetMigrationRecords(db, dialect)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to read migration records")
			}

			applied := make(map[string]bool, len(records))
			for _, r := range records {
				applied[r.Id] = true
			}

			for _, m := range migrations {
				state := "pending"
				if applied[m.Id] {
					state = "applied"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", state, m.Id)
			}
		},
	}
}
