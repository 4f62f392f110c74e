package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/go-openapi/runtime"
	"github.com/go-openapi/strfmt"
	"github.com/kashguard/go-payment-intents/internal/api"
	"github.com/kashguard/go-payment-intents/internal/api/httperrors"
	"github.com/kashguard/go-payment-intents/internal/api/router"
	"github.com/kashguard/go-payment-intents/internal/config"
	"github.com/kashguard/go-payment-intents/internal/infra/storage"
	"github.com/kashguard/go-payment-intents/internal/types"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// NewTestConfig returns the env based config with generated key material, the
// in-memory store and no provider or consul, so every intent is simulated.
func NewTestConfig(t *testing.T) config.Server {
	t.Helper()

	cfg := config.DefaultServiceConfigFromEnv()
	cfg.Credentials = NewTestCredentials(t)
	cfg.Provider.BaseURL = ""
	cfg.Provider.AuthServerURL = ""
	cfg.Provider.Timeout = 500 * time.Millisecond
	cfg.Store.Driver = config.StoreDriverMemory
	cfg.Discovery.ConsulAddress = ""
	cfg.Webhook.Secret = ""
	cfg.Intent.SweepInterval = 0
	cfg.Logger.PrettyPrintConsole = false

	return cfg
}

// WithTestServer runs closure against a fully wired server backed by a fresh
// in-memory store and a mock clock.
func WithTestServer(t *testing.T, closure func(s *api.Server)) {
	t.Helper()

	WithTestServerConfigurable(t, NewTestConfig(t), closure)
}

func WithTestServerConfigurable(t *testing.T, cfg config.Server, closure func(s *api.Server)) {
	t.Helper()

	s, err := api.InitNewServerWithStore(cfg, storage.NewMemoryStore(), t)
	require.NoError(t, err, "failed to init test server")

	router.Init(s)

	closure(s)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if errs := s.Shutdown(ctx); len(errs) > 0 {
		t.Fatalf("failed to shutdown test server: %v", errs)
	}
}

// MockClock returns the server's clock. Test servers always run on a mock.
func MockClock(t *testing.T, s *api.Server) *time2.MockClock {
	t.Helper()

	clock, ok := s.Clock.(*time2.MockClock)
	require.True(t, ok, "server clock is not a mock clock")
	return clock
}

// GenericPayload is a JSON object used for ad-hoc request bodies.
type GenericPayload map[string]interface{}

// PerformRequest marshals body as JSON and serves it through the echo
// instance without opening a socket.
func PerformRequest(t *testing.T, s *api.Server, method string, path string, body interface{}, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
	}

	return PerformRawRequest(t, s, method, path, raw, headers)
}

// PerformRawRequest sends body exactly as given.
func PerformRawRequest(t *testing.T, s *api.Server, method string, path string, body []byte, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, values := range headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	res := httptest.NewRecorder()
	s.Echo.ServeHTTP(res, req)

	return res
}

// ParseResponseAndValidate decodes the body into v and runs its validation.
func ParseResponseAndValidate(t *testing.T, res *httptest.ResponseRecorder, v runtime.Validatable) {
	t.Helper()

	require.NoError(t, json.NewDecoder(res.Body).Decode(v), "failed to parse response body: %s", res.Body.String())
	require.NoError(t, v.Validate(strfmt.Default), "response failed validation")
}

// RequireHTTPError asserts that res carries httpErr's status, type and title.
func RequireHTTPError(t *testing.T, res *httptest.ResponseRecorder, httpErr *httperrors.HTTPError) types.PublicHTTPError {
	t.Helper()

	require.Equal(t, httpErr.Code, res.Result().StatusCode, "unexpected status, body: %s", res.Body.String())

	var body types.PublicHTTPError
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.False(t, body.OK)
	require.Equal(t, httpErr.Code, body.Code)
	require.Equal(t, httpErr.Type, body.Type)
	require.Equal(t, httpErr.Title, body.Title)

	return body
}
