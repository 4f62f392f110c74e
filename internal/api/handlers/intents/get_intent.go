package intents

import (
	"net/http"

	"github.com/kashguard/go-payment-intents/internal/api"
	"github.com/kashguard/go-payment-intents/internal/api/httperrors"
	"github.com/kashguard/go-payment-intents/internal/intent"
	"github.com/kashguard/go-payment-intents/internal/types/intents"
	"github.com/kashguard/go-payment-intents/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func GetIntentRoute(s *api.Server) *echo.Route {
	return s.Router.APIIntents.GET("/:id", getIntentHandler(s))
}

func getIntentHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var params intents.IntentIDParams
		if err := util.BindAndValidatePathParams(c, &params); err != nil {
			return err
		}

		pi, err := s.Intents.Get(ctx, params.ID)
		if err != nil {
			if errors.Is(err, intent.ErrNotFound) {
				return httperrors.ErrNotFoundIntent
			}
			return err
		}

		return util.ValidateAndReturn(c, http.StatusOK, intentResponse(pi))
	}
}
