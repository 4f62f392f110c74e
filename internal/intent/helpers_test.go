package intent_test

import (
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/kashguard/go-payment-intents/internal/config"
	"github.com/kashguard/go-payment-intents/internal/infra/storage"
	"github.com/kashguard/go-payment-intents/internal/intent"
	"github.com/kashguard/go-payment-intents/internal/metrics"
	"github.com/kashguard/go-payment-intents/internal/provider"
	"github.com/kashguard/go-payment-intents/internal/test"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	service     *intent.Service
	store       *storage.MemoryStore
	clock       *time2.MockClock
	fake        *test.FakeProvider
	builder     *intent.Builder
	client      *provider.Client
	metrics     *metrics.Metrics
	providerCfg config.Provider
}

func testIntentConfig() config.Intent {
	return config.Intent{
		TTL:                30 * time.Minute,
		PayloadType:        "payment_request",
		PaymentURLTemplate: "http://localhost:8080/payment-intents/{intentId}/start",
		QRCodeSize:         128,
		MaxDescriptionLen:  280,
		MaxVendorLen:       120,
	}
}

// newFixture builds a service against a fake provider. Without a provider
// every registration is simulated.
func newFixture(t *testing.T, withProvider bool) *fixture {
	t.Helper()

	clock := time2.NewMockClock(testEpoch)
	store := storage.NewMemoryStore()

	m, err := metrics.New()
	require.NoError(t, err)

	providerCfg := config.Provider{
		Timeout:           200 * time.Millisecond,
		FinishRedirectURL: "http://localhost:8080/payment-finished",
		AssetCode:         "USD",
		AssetScale:        2,
	}

	var fake *test.FakeProvider
	if withProvider {
		fake = test.NewFakeProvider(t)
		providerCfg.BaseURL = fake.URL()
		providerCfg.AuthServerURL = fake.AuthURL()
	}

	client := provider.NewClient(providerCfg, nil, m)
	f := &fixture{
		store:       store,
		clock:       clock,
		fake:        fake,
		builder:     intent.NewBuilder(testIntentConfig(), providerCfg, test.TestReceiverWalletAddress, client, clock),
		client:      client,
		metrics:     m,
		providerCfg: providerCfg,
	}
	f.service = f.newServiceWithStore(store)

	return f
}

func (f *fixture) newServiceWithStore(store intent.Store) *intent.Service {
	return intent.NewService(f.builder, store, f.client, f.clock, f.metrics, intent.ServiceOptions{
		SenderAddress:     test.TestSenderWalletAddress,
		FinishRedirectURL: f.providerCfg.FinishRedirectURL,
	})
}
