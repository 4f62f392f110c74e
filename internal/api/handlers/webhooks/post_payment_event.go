package webhooks

import (
	"net/http"

	"github.com/kashguard/go-payment-intents/internal/api"
	"github.com/kashguard/go-payment-intents/internal/types/webhooks"
	"github.com/kashguard/go-payment-intents/internal/util"
	"github.com/labstack/echo/v4"
)

func PostPaymentEventRoute(s *api.Server) *echo.Route {
	return s.Router.APIWebhooks.POST("/payment-events", postPaymentEventHandler(s))
}

// postPaymentEventHandler acknowledges every well-formed event, including
// ones that change nothing, so the provider stops redelivering.
func postPaymentEventHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body webhooks.PostPaymentEventPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		outcome, err := s.Intents.HandleEvent(ctx, body.Event, body.Data)
		if err != nil {
			log.Error().Err(err).Str("event", body.Event).Msg("Failed to apply payment event")
			return err
		}

		log.Info().Str("event", body.Event).Str("outcome", string(outcome)).Msg("Payment event received")

		response := &webhooks.PaymentEventResponse{
			OK:       true,
			Received: true,
			Outcome:  string(outcome),
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
