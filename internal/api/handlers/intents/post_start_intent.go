package intents

import (
	"net/http"

	"github.com/kashguard/go-payment-intents/internal/api"
	"github.com/kashguard/go-payment-intents/internal/api/httperrors"
	"github.com/kashguard/go-payment-intents/internal/types/intents"
	"github.com/kashguard/go-payment-intents/internal/util"
	"github.com/labstack/echo/v4"
)

func PostStartIntentRoute(s *api.Server) *echo.Route {
	return s.Router.APIIntents.POST("/:id/start", postStartIntentHandler(s))
}

func postStartIntentHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var params intents.IntentIDParams
		if err := util.BindAndValidatePathParams(c, &params); err != nil {
			return err
		}

		var body intents.PostStartIntentPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		if body.IntentID != "" && body.IntentID != params.ID {
			return httperrors.ErrBadRequestIntentIDMismatch
		}

		res, err := s.Intents.Start(ctx, params.ID)
		if err != nil {
			return stateHTTPError(err)
		}

		response := &intents.StartIntentResponse{
			OK:                true,
			IntentID:          params.ID,
			RedirectURL:       res.RedirectURL,
			PaymentID:         res.PaymentID,
			ContinuationURI:   res.ContinuationURI,
			ContinuationToken: res.ContinuationToken,
			Simulated:         res.Simulated,
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
