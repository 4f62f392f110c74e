package common

import (
	"net/http"

	"github.com/kashguard/go-payment-intents/internal/api"
	"github.com/labstack/echo/v4"
)

func GetHealthyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/healthy", getHealthyHandler(s))
}

// Liveness only: the process is up and the router answers.
func getHealthyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.Ready() {
			return c.String(http.StatusServiceUnavailable, "Not initialized.")
		}
		return c.String(http.StatusOK, "Healthy.")
	}
}
