package intents

import (
	"net/http"

	"github.com/go-openapi/strfmt"
	"github.com/kashguard/go-payment-intents/internal/api"
	"github.com/kashguard/go-payment-intents/internal/intent"
	"github.com/kashguard/go-payment-intents/internal/types/intents"
	"github.com/kashguard/go-payment-intents/internal/util"
	"github.com/labstack/echo/v4"
)

func PostCreateIntentRoute(s *api.Server) *echo.Route {
	return s.Router.APIIntents.POST("", postCreateIntentHandler(s))
}

func postCreateIntentHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body intents.PostCreateIntentPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		req, err := createRequestFromPayload(&body)
		if err != nil {
			return stateHTTPError(err)
		}

		pi, err := s.Intents.Create(ctx, req)
		if err != nil {
			log.Debug().Err(err).Msg("Failed to create payment intent")
			return stateHTTPError(err)
		}

		response := &intents.IntentCreatedResponse{
			OK:          true,
			QRImage:     pi.QRImage,
			IntentID:    pi.ID,
			Amount:      amountPayload(pi.Amount),
			Description: pi.Description,
			Vendor:      pi.VendorLabel,
			PaymentURL:  pi.PaymentURL,
			Simulated:   pi.Simulated,
			Status:      string(pi.Status),
			ExpiresAt:   strfmt.DateTime(pi.ExpiresAt),
			Payload:     pi.Payload,
		}

		return util.ValidateAndReturn(c, http.StatusCreated, response)
	}
}

func createRequestFromPayload(body *intents.PostCreateIntentPayload) (intent.CreateRequest, error) {
	amount, err := intent.ParseMajor(body.Amount.String())
	if err != nil {
		return intent.CreateRequest{}, err
	}

	req := intent.CreateRequest{
		Amount:      amount,
		Description: body.Description,
		VendorLabel: body.Vendor,
		AssetCode:   body.Currency,
		CartID:      body.CartID,
	}

	for _, item := range body.Items {
		price, err := intent.ParseMajor(item.UnitPrice.String())
		if err != nil {
			return intent.CreateRequest{}, err
		}
		req.Items = append(req.Items, intent.CartItem{
			ProductID: item.ProductID,
			UnitPrice: price,
			Quantity:  item.Quantity,
		})
	}

	return req, nil
}
