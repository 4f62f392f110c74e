package common_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/kashguard/go-payment-intents/internal/api"
	"github.com/kashguard/go-payment-intents/internal/api/httperrors"
	"github.com/kashguard/go-payment-intents/internal/test"
	"github.com/kashguard/go-payment-intents/internal/types"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHealth(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/health", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		body := res.Body.String()
		assert.NotContains(t, body, "PRIVATE KEY")

		var response types.HealthResponse
		test.ParseResponseAndValidate(t, res, &response)
		assert.True(t, response.OK)
		assert.False(t, response.ProviderConfigured)
		assert.False(t, response.WebhookSigned)
		assert.Equal(t, "memory", response.Store)

		for _, role := range []string{"receiver", "sender"} {
			flags, ok := response.Credentials[role]
			require.True(t, ok, role)
			assert.True(t, flags.PrivateKey, role)
			assert.True(t, flags.PublicKeyFile, role)
			assert.True(t, flags.KeyID, role)
			assert.True(t, flags.WalletAddress, role)
		}
	})
}

func TestProbes(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/-/healthy", nil, nil)
		assert.Equal(t, http.StatusOK, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "GET", "/-/ready", nil, nil)
		assert.Equal(t, http.StatusOK, res.Result().StatusCode)
	})
}

func TestGetMetrics(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "POST", "/payment-intents", test.GenericPayload{
			"amount":      "1.00",
			"description": "metrics",
			"vendor":      "v",
		}, nil)
		require.Equal(t, http.StatusCreated, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "GET", "/metrics", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
		assert.True(t, strings.Contains(res.Body.String(), `payment_intents_intents_created_total{mode="simulated"} 1`), res.Body.String())
	})
}

func TestUnknownRoute(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/does-not-exist", nil, nil)
		test.RequireHTTPError(t, res, httperrors.NewFromEcho(echo.ErrNotFound))
	})
}
