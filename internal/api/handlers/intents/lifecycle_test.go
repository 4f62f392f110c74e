package intents_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/kashguard/go-payment-intents/internal/api"
	"github.com/kashguard/go-payment-intents/internal/api/httperrors"
	"github.com/kashguard/go-payment-intents/internal/intent"
	"github.com/kashguard/go-payment-intents/internal/test"
	"github.com/kashguard/go-payment-intents/internal/types/intents"
	"github.com/kashguard/go-payment-intents/internal/types/webhooks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonDecode(res *httptest.ResponseRecorder, v interface{}) error {
	return json.NewDecoder(res.Body).Decode(v)
}

func defaultIntent(t *testing.T, s *api.Server) *intents.IntentCreatedResponse {
	t.Helper()

	return createIntent(t, s, test.GenericPayload{
		"amount":      "100.00",
		"description": "3 items",
		"vendor":      "Vendor X",
	})
}

func continueIntent(t *testing.T, s *api.Server, id string, grant string) *intents.ContinueIntentResponse {
	t.Helper()

	res := test.PerformRequest(t, s, "POST", "/payment-intents/"+id+"/continue", test.GenericPayload{
		"grant": grant,
	}, nil)
	require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

	var response intents.ContinueIntentResponse
	test.ParseResponseAndValidate(t, res, &response)
	return &response
}

func getIntent(t *testing.T, s *api.Server, id string) *intents.IntentResponse {
	t.Helper()

	res := test.PerformRequest(t, s, "GET", "/payment-intents/"+id, nil, nil)
	require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

	var response intents.IntentResponse
	test.ParseResponseAndValidate(t, res, &response)
	return &response
}

func TestIntentLifecycleEndToEnd(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		created := defaultIntent(t, s)
		assert.Equal(t, "10000", created.Amount.Value)

		continued := continueIntent(t, s, created.IntentID, "authorized")
		assert.Equal(t, "Payment authorized", continued.Message)
		assert.Equal(t, string(intent.StatusAuthorized), continued.Status)
		require.NotNil(t, continued.AuthorizedAt)
		assert.Nil(t, continued.CompletedAt)

		res := test.PerformRequest(t, s, "POST", "/webhooks/payment-events", test.GenericPayload{
			"event": intent.EventPaymentCompleted,
			"data":  test.GenericPayload{"intentId": created.IntentID},
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var ack webhooks.PaymentEventResponse
		test.ParseResponseAndValidate(t, res, &ack)
		assert.True(t, ack.Received)
		assert.Equal(t, string(intent.OutcomeApplied), ack.Outcome)

		final := getIntent(t, s, created.IntentID)
		assert.Equal(t, string(intent.StatusCompleted), final.Status)
		require.NotNil(t, final.CompletedAt)
		require.NotNil(t, final.AuthorizedAt)
		assert.True(t, time.Time(*final.AuthorizedAt).Equal(time.Time(*continued.AuthorizedAt)))
	})
}

func TestPostContinueIntentRepeat(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		created := defaultIntent(t, s)

		first := continueIntent(t, s, created.IntentID, "authorized")

		test.MockClock(t, s).Advance(time.Minute)

		second := continueIntent(t, s, created.IntentID, "authorized")
		assert.Equal(t, "Payment already authorized", second.Message)
		assert.Equal(t, string(intent.StatusAuthorized), second.Status)
		assert.True(t, time.Time(*first.AuthorizedAt).Equal(time.Time(*second.AuthorizedAt)))
	})
}

func TestPostContinueIntentRejectedGrant(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		created := defaultIntent(t, s)

		response := continueIntent(t, s, created.IntentID, "rejected")
		assert.Equal(t, "Payment cancelled", response.Message)
		assert.Equal(t, string(intent.StatusCancelled), response.Status)
		assert.Nil(t, response.AuthorizedAt)
	})
}

func TestPostContinueIntentUnknown(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "POST", "/payment-intents/does-not-exist/continue", test.GenericPayload{
			"grant": "authorized",
		}, nil)
		test.RequireHTTPError(t, res, httperrors.ErrNotFoundIntent)
	})
}

func TestPostContinueIntentTerminal(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		created := defaultIntent(t, s)
		continueIntent(t, s, created.IntentID, "denied")

		res := test.PerformRequest(t, s, "POST", "/payment-intents/"+created.IntentID+"/continue", test.GenericPayload{
			"grant": "authorized",
		}, nil)
		test.RequireHTTPError(t, res, httperrors.ErrConflictIntentTerminal)
	})
}

func TestPostContinueIntentPaymentIDMismatch(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		created := defaultIntent(t, s)

		res := test.PerformRequest(t, s, "POST", "/payment-intents/"+created.IntentID+"/start", test.GenericPayload{
			"intentId": created.IntentID,
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		res = test.PerformRequest(t, s, "POST", "/payment-intents/"+created.IntentID+"/continue", test.GenericPayload{
			"paymentId": "not-this-payment",
			"grant":     "authorized",
		}, nil)
		test.RequireHTTPError(t, res, errInvalidIntent)

		read := getIntent(t, s, created.IntentID)
		assert.Equal(t, string(intent.StatusPending), read.Status)
	})
}

func TestPostContinueIntentMissingGrant(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		created := defaultIntent(t, s)

		res := test.PerformRequest(t, s, "POST", "/payment-intents/"+created.IntentID+"/continue", test.GenericPayload{
			"paymentId": "abc",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}

func TestIntentExpiredScenario(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		created := defaultIntent(t, s)

		test.MockClock(t, s).Advance(31 * time.Minute)

		read := getIntent(t, s, created.IntentID)
		assert.Equal(t, string(intent.StatusExpired), read.Status)
		require.NotNil(t, read.ExpiredAt)

		res := test.PerformRequest(t, s, "POST", "/payment-intents/"+created.IntentID+"/continue", test.GenericPayload{
			"grant": "authorized",
		}, nil)
		test.RequireHTTPError(t, res, httperrors.ErrConflictIntentTerminal)

		res = test.PerformRequest(t, s, "POST", "/webhooks/payment-events", test.GenericPayload{
			"event": intent.EventPaymentCompleted,
			"data":  test.GenericPayload{"intentId": created.IntentID},
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		stored, err := s.Store.Get(t.Context(), created.IntentID)
		require.NoError(t, err)
		assert.Equal(t, intent.StatusExpired, stored.Status)
	})
}

func TestPostStartIntentSimulated(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		created := defaultIntent(t, s)

		res := test.PerformRequest(t, s, "POST", "/payment-intents/"+created.IntentID+"/start", test.GenericPayload{
			"intentId": created.IntentID,
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var first intents.StartIntentResponse
		test.ParseResponseAndValidate(t, res, &first)
		assert.True(t, first.Simulated)
		assert.NotEmpty(t, first.PaymentID)
		assert.Contains(t, first.ContinuationURI, created.IntentID+"/continue")

		redirect, err := url.Parse(first.RedirectURL)
		require.NoError(t, err)
		assert.Equal(t, first.PaymentID, redirect.Query().Get("paymentId"))
		assert.Equal(t, "simulated", redirect.Query().Get("result"))

		res = test.PerformRequest(t, s, "POST", "/payment-intents/"+created.IntentID+"/start", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var second intents.StartIntentResponse
		test.ParseResponseAndValidate(t, res, &second)
		assert.Equal(t, first.PaymentID, second.PaymentID)
		assert.Equal(t, first.ContinuationToken, second.ContinuationToken)

		read := getIntent(t, s, created.IntentID)
		assert.Equal(t, string(intent.StatusPending), read.Status)
		assert.Equal(t, first.PaymentID, read.PaymentID)
		assert.NotNil(t, read.StartedAt)
	})
}

func TestPostStartIntentAlreadyAuthorized(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		created := defaultIntent(t, s)
		continueIntent(t, s, created.IntentID, "authorized")

		res := test.PerformRequest(t, s, "POST", "/payment-intents/"+created.IntentID+"/start", test.GenericPayload{
			"intentId": created.IntentID,
		}, nil)
		body := test.RequireHTTPError(t, res, httperrors.ErrConflictIntentTerminal)
		assert.Equal(t, "status authorized", body.Detail)

		read := getIntent(t, s, created.IntentID)
		assert.Equal(t, string(intent.StatusAuthorized), read.Status)
		assert.Empty(t, read.PaymentID)
	})
}

func TestPostStartIntentMismatch(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		created := defaultIntent(t, s)

		res := test.PerformRequest(t, s, "POST", "/payment-intents/"+created.IntentID+"/start", test.GenericPayload{
			"intentId": "someone-else",
		}, nil)
		test.RequireHTTPError(t, res, httperrors.ErrBadRequestIntentIDMismatch)
	})
}

func TestPostStartIntentUnknown(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "POST", "/payment-intents/missing/start", test.GenericPayload{}, nil)
		test.RequireHTTPError(t, res, httperrors.ErrNotFoundIntent)
	})
}

func TestGetIntentNotFound(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/payment-intents/missing", nil, nil)
		test.RequireHTTPError(t, res, httperrors.ErrNotFoundIntent)
	})
}

func TestGetIntentsFilter(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		a := createIntent(t, s, test.GenericPayload{"amount": "1.00", "description": "a", "vendor": "Vendor A"})
		b := createIntent(t, s, test.GenericPayload{"amount": "2.00", "description": "b", "vendor": "Vendor B"})
		c := createIntent(t, s, test.GenericPayload{"amount": "3.00", "description": "c", "vendor": "Vendor A"})

		continueIntent(t, s, c.IntentID, "authorized")

		list := func(query string) *intents.IntentListResponse {
			res := test.PerformRequest(t, s, "GET", "/payment-intents"+query, nil, nil)
			require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

			var response intents.IntentListResponse
			test.ParseResponseAndValidate(t, res, &response)
			return &response
		}

		all := list("")
		assert.EqualValues(t, 3, all.Count)

		vendorA := list("?vendor=Vendor%20A")
		require.EqualValues(t, 2, vendorA.Count)
		ids := []string{vendorA.Intents[0].IntentID, vendorA.Intents[1].IntentID}
		assert.ElementsMatch(t, []string{a.IntentID, c.IntentID}, ids)

		pending := list("?status=pending")
		require.EqualValues(t, 2, pending.Count)
		assert.NotContains(t, []string{pending.Intents[0].IntentID, pending.Intents[1].IntentID}, c.IntentID)

		authorizedA := list("?vendor=Vendor%20A&status=authorized")
		require.EqualValues(t, 1, authorizedA.Count)
		assert.Equal(t, c.IntentID, authorizedA.Intents[0].IntentID)

		test.MockClock(t, s).Advance(time.Hour)

		expired := list("?status=expired")
		require.EqualValues(t, 2, expired.Count)
		assert.ElementsMatch(t, []string{a.IntentID, b.IntentID},
			[]string{expired.Intents[0].IntentID, expired.Intents[1].IntentID})

		res := test.PerformRequest(t, s, "GET", "/payment-intents?status=bogus", nil, nil)
		assert.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}
