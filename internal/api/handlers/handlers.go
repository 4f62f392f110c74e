package handlers

import (
	"github.com/kashguard/go-payment-intents/internal/api"
	"github.com/kashguard/go-payment-intents/internal/api/handlers/common"
	"github.com/kashguard/go-payment-intents/internal/api/handlers/intents"
	"github.com/kashguard/go-payment-intents/internal/api/handlers/tokens"
	"github.com/kashguard/go-payment-intents/internal/api/handlers/webhooks"
	"github.com/labstack/echo/v4"
)

func AttachAllRoutes(s *api.Server) {
	s.Router.Routes = []*echo.Route{
		common.GetHealthRoute(s),
		common.GetHealthyRoute(s),
		common.GetMetricsRoute(s),
		common.GetReadyRoute(s),
		intents.GetIntentRoute(s),
		intents.GetIntentsRoute(s),
		intents.PostContinueIntentRoute(s),
		intents.PostCreateIntentRoute(s),
		intents.PostStartIntentRoute(s),
		tokens.PostTokenRoute(s),
		webhooks.PostPaymentEventRoute(s),
	}
}
