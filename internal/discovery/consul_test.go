package discovery

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/kashguard/go-payment-intents/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistrarDisabled(t *testing.T) {
	r, err := NewRegistrar(config.Discovery{}, ":8080")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestServiceInfoFromConfig(t *testing.T) {
	info, err := serviceInfoFromConfig(config.Discovery{}, "0.0.0.0:8080")
	require.NoError(t, err)
	assert.Equal(t, DefaultServiceName, info.Name)
	assert.Equal(t, "127.0.0.1", info.Address)
	assert.Equal(t, 8080, info.Port)
	assert.Equal(t, "payment-intents-127.0.0.1-8080", info.ID)
	assert.Equal(t, "http://127.0.0.1:8080", info.BaseURL())

	info, err = serviceInfoFromConfig(config.Discovery{
		ServiceName:      "pi",
		ServiceID:        "pi-1",
		AdvertiseAddress: "10.0.0.5",
		AdvertisePort:    9000,
	}, ":8080")
	require.NoError(t, err)
	assert.Equal(t, "pi-1", info.ID)
	assert.Equal(t, "10.0.0.5", info.Address)
	assert.Equal(t, 9000, info.Port)

	_, err = serviceInfoFromConfig(config.Discovery{}, "not-an-address")
	assert.Error(t, err)
}

func TestBuildRegistration(t *testing.T) {
	info := &ServiceInfo{ID: "pi-1", Name: "pi", Address: "10.0.0.5", Port: 9000}

	reg := buildRegistration(info, 20*time.Second)
	require.NotNil(t, reg.Check)
	assert.Equal(t, "http://10.0.0.5:9000/health", reg.Check.HTTP)
	assert.Equal(t, "20s", reg.Check.Interval)
	assert.Equal(t, "10s", reg.Check.Timeout)
	assert.Equal(t, "2m0s", reg.Check.DeregisterCriticalServiceAfter)

	reg = buildRegistration(info, 0)
	assert.Equal(t, DefaultCheckInterval.String(), reg.Check.Interval)
}

func TestRegistrarLive(t *testing.T) {
	addr := os.Getenv("TEST_CONSUL_ADDR")
	if addr == "" {
		t.Skip("TEST_CONSUL_ADDR not set, skipping consul test")
	}

	r, err := NewRegistrar(config.Discovery{ConsulAddress: addr, ServiceID: "payment-intents-test"}, "127.0.0.1:18080")
	require.NoError(t, err)
	require.NotNil(t, r)

	ctx := context.Background()
	require.NoError(t, r.Register(ctx))
	t.Cleanup(func() { _ = r.Deregister(ctx) })

	// the check will be critical since nothing listens, so only passing=false would list it
	_, err = Discover(ctx, addr, DefaultServiceName)
	require.NoError(t, err)
}
