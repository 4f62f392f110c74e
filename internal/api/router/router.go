package router

import (
	"github.com/kashguard/go-payment-intents/internal/api"
	"github.com/kashguard/go-payment-intents/internal/api/handlers"
	"github.com/kashguard/go-payment-intents/internal/api/httperrors"
	"github.com/kashguard/go-payment-intents/internal/api/middleware"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

func Init(s *api.Server) {
	s.Echo = echo.New()

	s.Echo.Debug = s.Config.Echo.Debug
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.Logger.SetOutput(&echoLogWriter{})

	s.Echo.HTTPErrorHandler = httperrors.HTTPErrorHandler

	if s.Config.Echo.EnableRecoverMiddleware {
		s.Echo.Use(echoMiddleware.Recover())
	} else {
		log.Warn().Msg("Disabling recover middleware due to environment config")
	}

	if s.Config.Echo.EnableRequestIDMiddleware {
		s.Echo.Use(echoMiddleware.RequestID())
	} else {
		log.Warn().Msg("Disabling request ID middleware due to environment config")
	}

	if s.Config.Echo.EnableLoggerMiddleware {
		s.Echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Level: s.Config.Logger.RequestLevel,
			Skipper: func(c echo.Context) bool {
				// probes are hit every few seconds
				return c.Path() == "/-/healthy" || c.Path() == "/-/ready"
			},
		}))
	} else {
		log.Warn().Msg("Disabling logger middleware due to environment config")
	}

	if s.Config.Echo.BodyLimit != "" {
		s.Echo.Use(echoMiddleware.BodyLimit(s.Config.Echo.BodyLimit))
	}

	webhookLimiter := echoMiddleware.RateLimiterWithConfig(echoMiddleware.RateLimiterConfig{
		Store: echoMiddleware.NewRateLimiterMemoryStoreWithConfig(echoMiddleware.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(s.Config.Webhook.RateLimit),
			Burst: s.Config.Webhook.Burst,
		}),
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return httperrors.ErrTooManyRequests
		},
	})

	if s.Config.Webhook.Secret == "" {
		log.Warn().Msg("WEBHOOK_SECRET not set, payment events are accepted without signature verification")
	}

	s.Router = &api.Router{
		Routes:     nil,
		Root:       s.Echo.Group(""),
		Management: s.Echo.Group("/-"),
		APIIntents: s.Echo.Group("/payment-intents"),
		APIWebhooks: s.Echo.Group("/webhooks",
			webhookLimiter,
			middleware.WebhookSignature(s.Config.Webhook.Secret),
		),
		APIAuth: s.Echo.Group("/auth"),
	}

	handlers.AttachAllRoutes(s)
}

type echoLogWriter struct{}

func (w *echoLogWriter) Write(p []byte) (int, error) {
	log.Debug().Str("source", "echo").Msg(string(p))
	return len(p), nil
}
