package intent_test

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/kashguard/go-payment-intents/internal/intent"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var simulatedIDPattern = regexp.MustCompile(`^incoming_\d+_simulated$`)

func createReq(amount string, description string, vendor string) intent.CreateRequest {
	return intent.CreateRequest{
		Amount:      decimal.RequireFromString(amount),
		Description: description,
		VendorLabel: vendor,
	}
}

func TestCreateIntentRegistered(t *testing.T) {
	f := newFixture(t, true)

	pi, err := f.service.Create(context.Background(), createReq("100.00", "3 items", "Vendor X"))
	require.NoError(t, err)

	assert.Equal(t, intent.StatusPending, pi.Status)
	assert.False(t, pi.Simulated)
	assert.Regexp(t, `^ip-\d+$`, pi.ID)
	assert.Contains(t, pi.ProviderURL, "/incoming-payments/"+pi.ID)
	assert.NotEmpty(t, pi.Payload)
	assert.True(t, strings.HasPrefix(pi.QRImage, "data:image/png;base64,"))
	assert.Equal(t, "http://localhost:8080/payment-intents/"+pi.ID+"/start", pi.PaymentURL)
	assert.True(t, testEpoch.Equal(pi.CreatedAt))
	assert.True(t, testEpoch.Add(30*time.Minute).Equal(pi.ExpiresAt))

	reqs := f.fake.IncomingRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "2026-03-01T12:30:00Z", reqs[0]["expiresAt"])
}

func TestCreateIntentValidPropertyHolds(t *testing.T) {
	f := newFixture(t, false)

	for _, tt := range []struct{ amount, description string }{
		{"0.01", "x"},
		{"1", "coffee"},
		{"999999.99", "large order"},
		{"42.5", "ünïcödé"},
	} {
		pi, err := f.service.Create(context.Background(), createReq(tt.amount, tt.description, "Vendor"))
		require.NoError(t, err, tt.amount)
		assert.Equal(t, intent.StatusPending, pi.Status)
		assert.NotEmpty(t, pi.Payload)
	}
}

func TestCreateIntentInvalid(t *testing.T) {
	f := newFixture(t, false)

	for name, req := range map[string]intent.CreateRequest{
		"zero amount":       createReq("0", "3 items", "Vendor X"),
		"negative amount":   createReq("-5", "3 items", "Vendor X"),
		"empty description": createReq("1", "   ", "Vendor X"),
		"sub-cent":          createReq("1.001", "3 items", "Vendor X"),
		"long vendor":       createReq("1", "3 items", strings.Repeat("v", 121)),
	} {
		_, err := f.service.Create(context.Background(), req)
		assert.ErrorIs(t, err, intent.ErrInvalidIntentRequest, name)
	}

	assert.Equal(t, 0, f.store.Len())
}

func TestCreateIntentSimulatedOnProviderFailure(t *testing.T) {
	f := newFixture(t, true)
	f.fake.SetIncomingStatus(http.StatusInternalServerError)

	pi, err := f.service.Create(context.Background(), createReq("100.00", "3 items", "Vendor X"))
	require.NoError(t, err)
	assert.True(t, pi.Simulated)
	assert.Regexp(t, simulatedIDPattern, pi.ID)
	assert.NotEmpty(t, pi.SimulationReason)
	assert.Equal(t, intent.StatusPending, pi.Status)
}

func TestCreateIntentSimulatedOnTimeout(t *testing.T) {
	f := newFixture(t, true)
	f.fake.SetDelay(2 * time.Second)

	started := time.Now()
	pi, err := f.service.Create(context.Background(), createReq("100.00", "3 items", "Vendor X"))
	require.NoError(t, err)
	assert.True(t, pi.Simulated)
	assert.Regexp(t, simulatedIDPattern, pi.ID)
	assert.Less(t, time.Since(started), time.Second)
}

func TestSimulatedIDsAreUnique(t *testing.T) {
	f := newFixture(t, false)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		// clock frozen: ids must still differ
		pi, err := f.service.Create(context.Background(), createReq("1", "x", "Vendor"))
		require.NoError(t, err)
		assert.Regexp(t, simulatedIDPattern, pi.ID)
		assert.False(t, seen[pi.ID], pi.ID)
		seen[pi.ID] = true
	}
	assert.Equal(t, 5, f.store.Len())
}

func TestCreateIntentPayloadDocument(t *testing.T) {
	f := newFixture(t, false)

	pi, err := f.service.Create(context.Background(), createReq("100.00", "3 items", "Vendor X"))
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(pi.Payload), &doc))

	assert.Equal(t, "payment_request", doc["type"])
	assert.Equal(t, pi.ID, doc["intentId"])
	assert.Equal(t, "3 items", doc["description"])
	assert.Equal(t, "Vendor X", doc["vendor"])
	assert.Equal(t, pi.PaymentURL, doc["continueUrl"])
	assert.Equal(t, true, doc["simulated"])
	assert.Equal(t, map[string]interface{}{"value": "10000", "assetCode": "USD", "assetScale": float64(2)}, doc["amount"])

	// canonical form: keys sorted, no whitespace
	assert.True(t, strings.HasPrefix(pi.Payload, `{"amount":{"assetCode":"USD","assetScale":2,"value":"10000"},"continueUrl":`))
}

func TestCreateIntentWithCart(t *testing.T) {
	f := newFixture(t, false)

	req := createReq("100.00", "3 items", "Vendor X")
	req.CartID = "cart-1"
	req.Items = []intent.CartItem{
		{ProductID: "sku-1", UnitPrice: decimal.RequireFromString("25"), Quantity: 2},
		{ProductID: "sku-2", UnitPrice: decimal.RequireFromString("50"), Quantity: 1},
	}

	pi, err := f.service.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "cart-1", pi.CartID)
	require.Len(t, pi.CartSnapshot, 2)

	req.Items[1].Quantity = 2
	_, err = f.service.Create(context.Background(), req)
	assert.ErrorIs(t, err, intent.ErrInvalidIntentRequest)
}

func TestExpandURLTemplate(t *testing.T) {
	assert.Equal(t, "https://pay.example/i/abc/start", intent.ExpandURLTemplate("https://pay.example/i/{intentId}/start", "abc"))
	assert.Equal(t, "https://pay.example/i/abc", intent.ExpandURLTemplate("https://pay.example/i/", "abc"))
	assert.Equal(t, "ip-1", intent.NormalizeID("https://wallet.example/incoming-payments/ip-1"))
	assert.Equal(t, "ip-1", intent.NormalizeID("ip-1"))
	assert.True(t, intent.IsSimulatedID("incoming_1740830400000_simulated"))
	assert.False(t, intent.IsSimulatedID("ip-1"))
}
