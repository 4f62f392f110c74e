package intents

import (
	"net/http"

	"github.com/kashguard/go-payment-intents/internal/api"
	"github.com/kashguard/go-payment-intents/internal/api/httperrors"
	"github.com/kashguard/go-payment-intents/internal/intent"
	"github.com/kashguard/go-payment-intents/internal/types"
	"github.com/kashguard/go-payment-intents/internal/types/intents"
	"github.com/kashguard/go-payment-intents/internal/util"
	"github.com/labstack/echo/v4"
)

func GetIntentsRoute(s *api.Server) *echo.Route {
	return s.Router.APIIntents.GET("", getIntentsHandler(s))
}

func getIntentsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var params intents.ListIntentsParams
		if err := util.BindAndValidateQueryParams(c, &params); err != nil {
			return err
		}

		var status intent.Status
		if params.Status != "" {
			parsed, err := intent.ParseStatus(params.Status)
			if err != nil {
				return httperrors.NewHTTPErrorWithDetail(http.StatusBadRequest, types.PublicHTTPErrorTypeInvalidParams, "Invalid status filter", err.Error())
			}
			status = parsed
		}

		list, err := s.Intents.List(ctx, params.Vendor, status)
		if err != nil {
			return err
		}

		response := &intents.IntentListResponse{
			OK:      true,
			Count:   int64(len(list)),
			Intents: make([]*intents.IntentResponse, 0, len(list)),
		}
		for _, pi := range list {
			response.Intents = append(response.Intents, intentResponse(pi))
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
