package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/kashguard/go-payment-intents/internal/auth"
	"github.com/kashguard/go-payment-intents/internal/config"
	"github.com/kashguard/go-payment-intents/internal/discovery"
	"github.com/kashguard/go-payment-intents/internal/intent"
	"github.com/kashguard/go-payment-intents/internal/metrics"
	"github.com/kashguard/go-payment-intents/internal/provider"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type Router struct {
	Routes      []*echo.Route
	Root        *echo.Group
	Management  *echo.Group
	APIIntents  *echo.Group
	APIWebhooks *echo.Group
	APIAuth     *echo.Group
}

// Server is the central struct keeping all the dependencies. It is built
// once at startup via wire and handed to every route.
type Server struct {
	Config     config.Server
	Echo       *echo.Echo
	Router     *Router
	Clock      time2.Clock
	Metrics    *metrics.Metrics
	Identities *auth.Identities
	Issuer     *auth.Issuer
	Provider   *provider.Client
	Store      intent.Store
	Intents    *intent.Service
	Sweeper    *intent.Sweeper
	Registrar  *discovery.Registrar

	sweeperCancel context.CancelFunc
	sweeperDone   chan struct{}
	stopOnce      sync.Once
}

func NewServer(config config.Server) *Server {
	return &Server{
		Config: config,
	}
}

func newServerWithComponents(
	cfg config.Server,
	clock time2.Clock,
	m *metrics.Metrics,
	identities *auth.Identities,
	issuer *auth.Issuer,
	providerClient *provider.Client,
	store intent.Store,
	intents *intent.Service,
	sweeper *intent.Sweeper,
	registrar *discovery.Registrar,
) *Server {
	s := NewServer(cfg)

	s.Clock = clock
	s.Metrics = m
	s.Identities = identities
	s.Issuer = issuer
	s.Provider = providerClient
	s.Store = store
	s.Intents = intents
	s.Sweeper = sweeper
	s.Registrar = registrar

	return s
}

// Ready reports whether all components needed to serve requests are
// initialized.
func (s *Server) Ready() bool {
	return s.Echo != nil &&
		s.Router != nil &&
		s.Clock != nil &&
		s.Identities != nil &&
		s.Issuer != nil &&
		s.Store != nil &&
		s.Intents != nil
}

// Probe checks backing systems. Used by the readiness endpoint.
func (s *Server) Probe(ctx context.Context) error {
	if !s.Ready() {
		return errors.New("server is not fully initialized")
	}
	if p, ok := s.Store.(intent.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *Server) Start() error {
	if !s.Ready() {
		return errors.New("server is not ready")
	}

	if s.Sweeper.Enabled() {
		ctx, cancel := context.WithCancel(context.Background())
		s.sweeperCancel = cancel
		s.sweeperDone = make(chan struct{})
		go func() {
			defer close(s.sweeperDone)
			s.Sweeper.Run(ctx)
		}()
	}

	if s.Registrar != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Registrar.Register(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to register with consul, continuing without discovery")
		}
	}

	return s.Echo.Start(s.Config.Echo.ListenAddress)
}

// Shutdown stops accepting requests and releases every component. Errors
// are collected, not short-circuited.
func (s *Server) Shutdown(ctx context.Context) []error {
	log.Warn().Msg("Shutting down server")

	var errs []error

	s.stopOnce.Do(func() {
		if s.Registrar != nil {
			if err := s.Registrar.Deregister(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to deregister from consul")
				errs = append(errs, err)
			}
		}

		if s.sweeperCancel != nil {
			s.sweeperCancel()
			<-s.sweeperDone
		}

		if s.Echo != nil {
			log.Debug().Msg("Shutting down echo server")
			if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Failed to shutdown echo server")
				errs = append(errs, err)
			}
		}

		if c, ok := s.Store.(io.Closer); ok {
			log.Debug().Msg("Closing intent store")
			if err := c.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close intent store")
				errs = append(errs, err)
			}
		}
	})

	return errs
}
