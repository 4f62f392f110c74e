package tokens

import (
	"net/http"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/kashguard/go-payment-intents/internal/api"
	"github.com/kashguard/go-payment-intents/internal/api/httperrors"
	"github.com/kashguard/go-payment-intents/internal/auth"
	"github.com/kashguard/go-payment-intents/internal/types/tokens"
	"github.com/kashguard/go-payment-intents/internal/util"
	"github.com/labstack/echo/v4"
)

func PostTokenRoute(s *api.Server) *echo.Route {
	return s.Router.APIAuth.POST("/tokens", postTokenHandler(s))
}

func postTokenHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body tokens.PostTokenPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		role := auth.RoleReceiver
		if strings.TrimSpace(body.Role) != "" {
			parsed, err := auth.ParseRole(body.Role)
			if err != nil {
				return httperrors.ErrBadRequestUnknownRole.Wrap(err)
			}
			role = parsed
		}

		assertion, err := s.Issuer.Issue(role, body.KeyID)
		if err != nil {
			log.Error().Err(err).Str("role", string(role)).Msg("Failed to issue token")
			return httperrors.ErrTokenIssuanceFailed.Wrap(err)
		}

		response := &tokens.TokenResponse{
			Token:     assertion.Token,
			KeyID:     assertion.KeyID,
			Role:      string(assertion.Role),
			Algorithm: assertion.Algorithm,
			ExpiresIn: int64(assertion.ExpiresAt.Sub(assertion.IssuedAt).Seconds()),
			ExpiresAt: strfmt.DateTime(assertion.ExpiresAt),
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
