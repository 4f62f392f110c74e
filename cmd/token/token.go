package token

import (
	"encoding/json"

	"github.com/dropbox/godropbox/time2"
	"github.com/go-openapi/strfmt"
	"github.com/kashguard/go-payment-intents/internal/auth"
	"github.com/kashguard/go-payment-intents/internal/config"
	"github.com/kashguard/go-payment-intents/internal/types/tokens"
	"github.com/kashguard/go-payment-intents/internal/util/command"
	"github.com/spf13/cobra"
)

const (
	roleFlag  = "role"
	keyIDFlag = "key-id"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("token",
		newIssue(),
	)
}

func newIssue() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Mints a client assertion from the local signing identities",
		Long: `Mints a client assertion without a running server.

Reads the receiver and sender key material configured in the environment,
exactly as the server does on startup.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			roleName, _ := cmd.Flags().GetString(roleFlag)
			keyID, _ := cmd.Flags().GetString(keyIDFlag)

			role, err := auth.ParseRole(roleName)
			if err != nil {
				return err
			}

			cfg := config.DefaultServiceConfigFromEnv()
			command.SetupLogger(cfg.Logger)

			res, err := issue(cfg.Credentials, role, keyID, time2.DefaultClock)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().String(roleFlag, string(auth.RoleReceiver), "Identity to sign with: receiver or sender")
	cmd.Flags().String(keyIDFlag, "", "Key id override, defaults to the identity's key id")

	return cmd
}

func issue(creds config.Credentials, role auth.Role, keyID string, clock time2.Clock) (*tokens.TokenResponse, error) {
	identities, err := auth.LoadIdentities(creds)
	if err != nil {
		return nil, err
	}

	assertion, err := auth.NewIssuer(identities, clock, creds.TokenTTL, nil).Issue(role, keyID)
	if err != nil {
		return nil, err
	}

	return &tokens.TokenResponse{
		Token:     assertion.Token,
		KeyID:     assertion.KeyID,
		Role:      string(assertion.Role),
		Algorithm: assertion.Algorithm,
		ExpiresIn: int64(assertion.ExpiresAt.Sub(assertion.IssuedAt).Seconds()),
		ExpiresAt: strfmt.DateTime(assertion.ExpiresAt),
	}, nil
}
