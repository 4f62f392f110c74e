package webhooks_test

import (
	"net/http"
	"testing"

	"github.com/kashguard/go-payment-intents/internal/api"
	"github.com/kashguard/go-payment-intents/internal/api/httperrors"
	"github.com/kashguard/go-payment-intents/internal/api/middleware"
	"github.com/kashguard/go-payment-intents/internal/intent"
	"github.com/kashguard/go-payment-intents/internal/test"
	"github.com/kashguard/go-payment-intents/internal/types/webhooks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec-test"

func seedIntent(t *testing.T, s *api.Server) *intent.PaymentIntent {
	t.Helper()

	pi, err := s.Intents.Create(t.Context(), intent.CreateRequest{
		Amount:      decimal.RequireFromString("42.00"),
		Description: "webhook test",
		VendorLabel: "Vendor X",
	})
	require.NoError(t, err)
	return pi
}

func postEvent(t *testing.T, s *api.Server, event string, data test.GenericPayload) *webhooks.PaymentEventResponse {
	t.Helper()

	res := test.PerformRequest(t, s, "POST", "/webhooks/payment-events", test.GenericPayload{
		"event": event,
		"data":  data,
	}, nil)
	require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

	var response webhooks.PaymentEventResponse
	test.ParseResponseAndValidate(t, res, &response)
	assert.True(t, response.OK)
	assert.True(t, response.Received)
	return &response
}

func TestPostPaymentEventCompleted(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		pi := seedIntent(t, s)

		response := postEvent(t, s, intent.EventPaymentCompleted, test.GenericPayload{"intentId": pi.ID})
		assert.Equal(t, string(intent.OutcomeApplied), response.Outcome)

		stored, err := s.Store.Get(t.Context(), pi.ID)
		require.NoError(t, err)
		assert.Equal(t, intent.StatusCompleted, stored.Status)
		assert.NotNil(t, stored.CompletedAt)

		// redelivery
		response = postEvent(t, s, intent.EventPaymentCompleted, test.GenericPayload{"intentId": pi.ID})
		assert.Equal(t, string(intent.OutcomeNoop), response.Outcome)
	})
}

func TestPostPaymentEventProviderURLReference(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		pi := seedIntent(t, s)

		response := postEvent(t, s, intent.EventIncomingPaymentCompleted, test.GenericPayload{
			"id": "https://provider.example.test/incoming-payments/" + pi.ID,
		})
		assert.Equal(t, string(intent.OutcomeApplied), response.Outcome)
	})
}

func TestPostPaymentEventWithStartedPaymentID(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		pi := seedIntent(t, s)

		started, err := s.Intents.Start(t.Context(), pi.ID)
		require.NoError(t, err)

		response := postEvent(t, s, intent.EventPaymentCompleted, test.GenericPayload{
			"id":        pi.ID,
			"paymentId": started.PaymentID,
		})
		assert.Equal(t, string(intent.OutcomeApplied), response.Outcome)

		stored, err := s.Store.Get(t.Context(), pi.ID)
		require.NoError(t, err)
		assert.Equal(t, intent.StatusCompleted, stored.Status)
	})
}

func TestPostPaymentEventCancelledAndExpired(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		cancelled := seedIntent(t, s)
		expired := seedIntent(t, s)

		postEvent(t, s, intent.EventPaymentCancelled, test.GenericPayload{"intentId": cancelled.ID})
		postEvent(t, s, intent.EventPaymentExpired, test.GenericPayload{"intentId": expired.ID})

		stored, err := s.Store.Get(t.Context(), cancelled.ID)
		require.NoError(t, err)
		assert.Equal(t, intent.StatusCancelled, stored.Status)

		stored, err = s.Store.Get(t.Context(), expired.ID)
		require.NoError(t, err)
		assert.Equal(t, intent.StatusExpired, stored.Status)

		// completed never follows cancelled
		response := postEvent(t, s, intent.EventPaymentCompleted, test.GenericPayload{"intentId": cancelled.ID})
		assert.Equal(t, string(intent.OutcomeNoop), response.Outcome)
	})
}

func TestPostPaymentEventIgnored(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		pi := seedIntent(t, s)

		response := postEvent(t, s, "payment.refunded", test.GenericPayload{"intentId": pi.ID})
		assert.Equal(t, string(intent.OutcomeIgnored), response.Outcome)

		response = postEvent(t, s, intent.EventPaymentCompleted, test.GenericPayload{"unrelated": "x"})
		assert.Equal(t, string(intent.OutcomeIgnored), response.Outcome)

		response = postEvent(t, s, intent.EventPaymentCompleted, test.GenericPayload{"intentId": "nope"})
		assert.Equal(t, string(intent.OutcomeUnknownIntent), response.Outcome)

		stored, err := s.Store.Get(t.Context(), pi.ID)
		require.NoError(t, err)
		assert.Equal(t, intent.StatusPending, stored.Status)
	})
}

func TestPostPaymentEventMissingEvent(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "POST", "/webhooks/payment-events", test.GenericPayload{
			"data": test.GenericPayload{},
		}, nil)
		assert.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}

func TestPostPaymentEventSignature(t *testing.T) {
	cfg := test.NewTestConfig(t)
	cfg.Webhook.Secret = testWebhookSecret

	test.WithTestServerConfigurable(t, cfg, func(s *api.Server) {
		pi := seedIntent(t, s)
		body := []byte(`{"event":"payment.completed","data":{"intentId":"` + pi.ID + `"}}`)

		res := test.PerformRawRequest(t, s, "POST", "/webhooks/payment-events", body, nil)
		test.RequireHTTPError(t, res, httperrors.ErrUnauthorizedSignature)

		headers := http.Header{}
		headers.Set(middleware.HeaderWebhookSignature, middleware.SignWebhookBody("wrong-secret", body))
		res = test.PerformRawRequest(t, s, "POST", "/webhooks/payment-events", body, headers)
		test.RequireHTTPError(t, res, httperrors.ErrUnauthorizedSignature)

		stored, err := s.Store.Get(t.Context(), pi.ID)
		require.NoError(t, err)
		assert.Equal(t, intent.StatusPending, stored.Status)

		headers.Set(middleware.HeaderWebhookSignature, "sha256="+middleware.SignWebhookBody(testWebhookSecret, body))
		res = test.PerformRawRequest(t, s, "POST", "/webhooks/payment-events", body, headers)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		stored, err = s.Store.Get(t.Context(), pi.ID)
		require.NoError(t, err)
		assert.Equal(t, intent.StatusCompleted, stored.Status)
	})
}

func TestPostPaymentEventRateLimited(t *testing.T) {
	cfg := test.NewTestConfig(t)
	cfg.Webhook.RateLimit = 0.001
	cfg.Webhook.Burst = 1

	test.WithTestServerConfigurable(t, cfg, func(s *api.Server) {
		payload := test.GenericPayload{"event": "payment.refunded", "data": test.GenericPayload{}}

		res := test.PerformRequest(t, s, "POST", "/webhooks/payment-events", payload, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "POST", "/webhooks/payment-events", payload, nil)
		test.RequireHTTPError(t, res, httperrors.ErrTooManyRequests)
	})
}
