package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kashguard/go-payment-intents/internal/api"
	"github.com/kashguard/go-payment-intents/internal/api/router"
	"github.com/kashguard/go-payment-intents/internal/config"
	"github.com/kashguard/go-payment-intents/internal/util/command"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	probeFlag = "probe"
)

func newServer() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Starts the server",
		Long: `Starts the HTTP server.

Requires both signing identities to be configured. Uses the in-memory
intent store unless STORE_DRIVER selects redis or postgres.`,
		Run: func(cmd *cobra.Command, _ []string) {
			probe, err := cmd.Flags().GetBool(probeFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to parse probe flag")
			}
			runServer(probe)
		},
	}

	cmd.Flags().BoolP(probeFlag, "p", false, "Exit with status 0 when the server is ready to start (config and credentials load)")

	return cmd
}

func runServer(probeOnly bool) {
	cfg := config.DefaultServiceConfigFromEnv()
	command.SetupLogger(cfg.Logger)

	s, err := api.InitNewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	router.Init(s)

	if probeOnly {
		log.Info().Msg("Server initialized, exiting due to probe flag")
		shutdown(s)
		return
	}

	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Str("listen_address", cfg.Echo.ListenAddress).Msg("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdown(s)
}

func shutdown(s *api.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if errs := s.Shutdown(ctx); len(errs) > 0 {
		log.Fatal().Errs("shutdown_errors", errs).Msg("Failed to gracefully shut down server")
	}

	log.Info().Msg("Server shut down")
}
