package probe

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kashguard/go-payment-intents/internal/config"
	"github.com/kashguard/go-payment-intents/internal/util/command"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	verboseFlag string = "verbose"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("probe",
		newLiveness(),
		newReadiness(),
	)
}

func newProbe(use string, short string, path string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, err := cmd.Flags().GetBool(verboseFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to parse verbose flag")
			}

			cfg := config.DefaultServiceConfigFromEnv()
			command.SetupLogger(cfg.Logger)

			timeout := cfg.Management.ReadinessTimeout + time.Second
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if err := runProbe(ctx, cfg.Management.ProbeBaseURL+path); err != nil {
				if verbose {
					log.Error().Err(err).Str("path", path).Msg("Probe failed")
				}
				os.Exit(1)
			}

			if verbose {
				log.Info().Str("path", path).Msg("Probe succeeded")
			}
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Show verbose output.")

	return cmd
}

func newLiveness() *cobra.Command {
	return newProbe("liveness", "Runs the liveness probe against a running server", "/-/healthy")
}

func newReadiness() *cobra.Command {
	return newProbe("readiness", "Runs the readiness probe against a running server", "/-/ready")
}

func runProbe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create probe request")
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "probe request failed")
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	if res.StatusCode != http.StatusOK {
		return errors.Errorf("probe returned %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}
