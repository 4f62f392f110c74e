//go:build wireinject

//go:generate wire

package api

import (
	"testing"

	"github.com/google/wire"
	"github.com/kashguard/go-payment-intents/internal/config"
	"github.com/kashguard/go-payment-intents/internal/intent"
	"github.com/kashguard/go-payment-intents/internal/metrics"
)

// INJECTORS - https://github.com/google/wire/blob/main/docs/guide.md#injectors

// serviceSet groups the default set of providers that are required for initing a server
var serviceSet = wire.NewSet(
	newServerWithComponents,
	metrics.New,
	NewIdentities,
	NewIssuer,
	NewProviderClient,
	NewBuilder,
	NewIntentService,
	NewSweeper,
	NewRegistrar,
)

// InitNewServer returns a new Server instance.
func InitNewServer(
	_ config.Server,
) (*Server, error) {
	wire.Build(serviceSet, NewStore, NewClock, NoTest)
	return new(Server), nil
}

// InitNewServerWithStore returns a new Server instance with the given store.
// All the other components are initialized via go wire according to the configuration.
// Passing t switches the clock to a mock clock.
func InitNewServerWithStore(
	_ config.Server,
	_ intent.Store,
	t ...*testing.T,
) (*Server, error) {
	wire.Build(serviceSet, NewClock)
	return new(Server), nil
}
