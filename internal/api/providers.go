package api

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/kashguard/go-payment-intents/internal/auth"
	"github.com/kashguard/go-payment-intents/internal/config"
	"github.com/kashguard/go-payment-intents/internal/discovery"
	"github.com/kashguard/go-payment-intents/internal/infra/storage"
	"github.com/kashguard/go-payment-intents/internal/intent"
	"github.com/kashguard/go-payment-intents/internal/metrics"
	"github.com/kashguard/go-payment-intents/internal/provider"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// PROVIDERS - define here only providers that for various reasons (e.g. cyclic dependency) can't live in their corresponding packages
// or for wrapping providers that only accept sub-configs to prevent the requirements for defining providers for sub-configs.
// https://github.com/google/wire/blob/main/docs/guide.md#defining-providers

func NewClock(t ...*testing.T) time2.Clock {
	var clock time2.Clock

	useMock := len(t) > 0 && t[0] != nil

	if useMock {
		clock = time2.NewMockClock(time.Now())
	} else {
		clock = time2.DefaultClock
	}

	return clock
}

func NoTest() []*testing.T {
	return nil
}

func NewIdentities(cfg config.Server) (*auth.Identities, error) {
	return auth.LoadIdentities(cfg.Credentials)
}

func NewIssuer(cfg config.Server, identities *auth.Identities, clock time2.Clock, m *metrics.Metrics) *auth.Issuer {
	return auth.NewIssuer(identities, clock, cfg.Credentials.TokenTTL, m)
}

func NewProviderClient(cfg config.Server, issuer *auth.Issuer, m *metrics.Metrics) *provider.Client {
	client := provider.NewClient(cfg.Provider, issuer, m)
	if !client.Configured() {
		log.Warn().Msg("PROVIDER_BASE_URL not set, every payment intent will be simulated")
	}
	return client
}

func NewBuilder(cfg config.Server, identities *auth.Identities, client *provider.Client, clock time2.Clock) (*intent.Builder, error) {
	receiver, err := identities.Identity(auth.RoleReceiver)
	if err != nil {
		return nil, err
	}
	return intent.NewBuilder(cfg.Intent, cfg.Provider, receiver.WalletAddress, client, clock), nil
}

func NewIntentService(
	cfg config.Server,
	builder *intent.Builder,
	store intent.Store,
	client *provider.Client,
	identities *auth.Identities,
	clock time2.Clock,
	m *metrics.Metrics,
) (*intent.Service, error) {
	sender, err := identities.Identity(auth.RoleSender)
	if err != nil {
		return nil, err
	}

	return intent.NewService(builder, store, client, clock, m, intent.ServiceOptions{
		SenderAddress:     sender.WalletAddress,
		FinishRedirectURL: cfg.Provider.FinishRedirectURL,
		ListLimit:         cfg.Intent.ListLimit,
	}), nil
}

func NewSweeper(cfg config.Server, service *intent.Service) *intent.Sweeper {
	return intent.NewSweeper(service, cfg.Intent.SweepInterval)
}

func NewRegistrar(cfg config.Server) (*discovery.Registrar, error) {
	return discovery.NewRegistrar(cfg.Discovery, cfg.Echo.ListenAddress)
}

// NewStore opens the configured intent store.
func NewStore(cfg config.Server) (intent.Store, error) {
	switch cfg.Store.Driver {
	case "", config.StoreDriverMemory:
		log.Warn().Msg("Using in-memory intent store, intents are lost on restart")
		return storage.NewMemoryStore(), nil
	case config.StoreDriverRedis:
		client, err := NewRedisClient(cfg)
		if err != nil {
			return nil, err
		}
		return storage.NewRedisStore(client, cfg.Store.KeyPrefix), nil
	case config.StoreDriverPostgres:
		db, err := NewDB(cfg)
		if err != nil {
			return nil, err
		}
		return storage.NewPostgreSQLStore(db), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func NewRedisClient(cfg config.Server) (*redis.Client, error) {
	if cfg.Store.RedisAddress == "" {
		return nil, fmt.Errorf("STORE_REDIS_ADDRESS is not configured")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Store.RedisAddress,
		Password: cfg.Store.RedisPassword,
		DB:       cfg.Store.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

func NewDB(cfg config.Server) (*sql.DB, error) {
	connector, err := pq.NewConnector(cfg.Store.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("invalid database dsn: %w", err)
	}

	db := sql.OpenDB(connector)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
