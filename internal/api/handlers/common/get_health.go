package common

import (
	"net/http"

	"github.com/go-openapi/strfmt"
	"github.com/kashguard/go-payment-intents/internal/api"
	"github.com/kashguard/go-payment-intents/internal/types"
	"github.com/kashguard/go-payment-intents/internal/util"
	"github.com/labstack/echo/v4"
)

func GetHealthRoute(s *api.Server) *echo.Route {
	return s.Router.Root.GET("/health", getHealthHandler(s))
}

// getHealthHandler reports which credentials are present. Key material
// itself never leaves the process.
func getHealthHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		credentials := make(map[string]*types.CredentialFlags)
		for role, status := range s.Identities.Status() {
			credentials[string(role)] = &types.CredentialFlags{
				PrivateKey:    status.PrivateKey,
				PublicKeyFile: status.PublicKeyFile,
				KeyID:         status.KeyID,
				WalletAddress: status.WalletAddress,
			}
		}

		response := &types.HealthResponse{
			OK:                 true,
			Status:             "ok",
			Credentials:        credentials,
			ProviderConfigured: s.Provider.Configured(),
			WebhookSigned:      s.Config.Webhook.Secret != "",
			Store:              s.Config.Store.Driver,
			Time:               strfmt.DateTime(s.Clock.Now().UTC()),
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
