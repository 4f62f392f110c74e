package common

import (
	"context"
	"net/http"

	"github.com/kashguard/go-payment-intents/internal/api"
	"github.com/kashguard/go-payment-intents/internal/api/httperrors"
	"github.com/kashguard/go-payment-intents/internal/util"
	"github.com/labstack/echo/v4"
)

func GetReadyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/ready", getReadyHandler(s))
}

// Readiness additionally pings the intent store.
func getReadyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), s.Config.Management.ReadinessTimeout)
		defer cancel()

		if err := s.Probe(ctx); err != nil {
			util.LogFromContext(ctx).Warn().Err(err).Msg("Readiness probe failed")
			return httperrors.ErrServiceUnavailable.Wrap(err)
		}

		return c.String(http.StatusOK, "Ready.")
	}
}
