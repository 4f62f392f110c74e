package intents

import (
	"net/http"

	"github.com/kashguard/go-payment-intents/internal/api"
	"github.com/kashguard/go-payment-intents/internal/intent"
	"github.com/kashguard/go-payment-intents/internal/types/intents"
	"github.com/kashguard/go-payment-intents/internal/util"
	"github.com/labstack/echo/v4"
)

func PostContinueIntentRoute(s *api.Server) *echo.Route {
	return s.Router.APIIntents.POST("/:id/continue", postContinueIntentHandler(s))
}

func postContinueIntentHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var params intents.IntentIDParams
		if err := util.BindAndValidatePathParams(c, &params); err != nil {
			return err
		}

		var body intents.PostContinueIntentPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		res, err := s.Intents.Continue(ctx, intent.ContinueRequest{
			IntentID:  params.ID,
			PaymentID: body.PaymentID,
			Grant:     body.Grant,
		})
		if err != nil {
			log.Debug().Err(err).Str("intent_id", params.ID).Msg("Continuation rejected")
			return stateHTTPError(err)
		}

		pi := res.Intent
		response := &intents.ContinueIntentResponse{
			OK:           true,
			Message:      continueMessage(pi.Status, res.Changed),
			IntentID:     pi.ID,
			PaymentID:    pi.PaymentID,
			Status:       string(pi.Status),
			AuthorizedAt: dateTime(pi.AuthorizedAt),
			CompletedAt:  dateTime(pi.CompletedAt),
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}

func continueMessage(status intent.Status, changed bool) string {
	switch status {
	case intent.StatusAuthorized:
		if changed {
			return "Payment authorized"
		}
		return "Payment already authorized"
	case intent.StatusCancelled:
		return "Payment cancelled"
	case intent.StatusCompleted:
		return "Payment completed"
	default:
		return "Payment " + string(status)
	}
}
