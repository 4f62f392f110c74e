package intent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/kashguard/go-payment-intents/internal/client"
	"github.com/kashguard/go-payment-intents/internal/util/command"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	urlFlag           = "url"
	consulAddressFlag = "consul-address"
	serviceNameFlag   = "service-name"
	webhookSecretFlag = "webhook-secret"

	envPrefix = "PAYMENT_INTENTS"
)

func New() *cobra.Command {
	cmd := command.NewSubcommandGroup("intent",
		newCreate(),
		newGet(),
		newList(),
		newStart(),
		newContinue(),
		newEvent(),
	)

	flags := cmd.PersistentFlags()
	flags.String(urlFlag, "http://127.0.0.1:8080", "Base URL of the service (env PAYMENT_INTENTS_URL)")
	flags.String(consulAddressFlag, "", "Resolve the service through this consul agent instead of --url (env PAYMENT_INTENTS_CONSUL_ADDRESS)")
	flags.String(serviceNameFlag, "payment-intents", "Service name registered in consul (env PAYMENT_INTENTS_SERVICE_NAME)")
	flags.String(webhookSecretFlag, "", "Secret used to sign webhook events (env PAYMENT_INTENTS_WEBHOOK_SECRET)")

	return cmd
}

// settings merges flags with PAYMENT_INTENTS_* environment variables; an
// explicitly set flag wins.
func settings(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, errors.Wrap(err, "failed to bind flags")
	}

	return v, nil
}

func newClient(ctx context.Context, cmd *cobra.Command) (*client.Client, error) {
	v, err := settings(cmd)
	if err != nil {
		return nil, err
	}

	opts := []client.Option{client.WithWebhookSecret(v.GetString(webhookSecretFlag))}

	if addr := v.GetString(consulAddressFlag); addr != "" {
		return client.Discover(ctx, addr, v.GetString(serviceNameFlag), opts...)
	}

	return client.New(v.GetString(urlFlag), opts...), nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
