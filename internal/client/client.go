// Package client calls a running payment-intents service over HTTP. It is
// used by the CLI subcommands.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kashguard/go-payment-intents/internal/api/middleware"
	"github.com/kashguard/go-payment-intents/internal/discovery"
	"github.com/kashguard/go-payment-intents/internal/types"
	"github.com/kashguard/go-payment-intents/internal/types/intents"
	"github.com/kashguard/go-payment-intents/internal/types/tokens"
	"github.com/kashguard/go-payment-intents/internal/types/webhooks"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const DefaultTimeout = 30 * time.Second

var ErrNoInstance = errors.New("no healthy service instance")

// APIError is a non-2xx response. Body is set when the service answered with
// its structured error shape.
type APIError struct {
	StatusCode int
	Body       *types.PublicHTTPError
	Raw        string
}

func (e *APIError) Error() string {
	if e.Body != nil {
		return fmt.Sprintf("HTTP %d (%s): %s", e.StatusCode, e.Body.Type, e.Body.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Raw)
}

type Client struct {
	baseURL       string
	webhookSecret string
	httpClient    *http.Client
}

type Option func(*Client)

// WithWebhookSecret signs PostEvent bodies.
func WithWebhookSecret(secret string) Option {
	return func(c *Client) {
		c.webhookSecret = secret
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Discover resolves the first healthy instance registered in consul.
func Discover(ctx context.Context, consulAddress string, serviceName string, opts ...Option) (*Client, error) {
	instances, err := discovery.Discover(ctx, consulAddress, serviceName)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, errors.Wrapf(ErrNoInstance, "service %s", serviceName)
	}

	log.Debug().Str("service_id", instances[0].ID).Str("base_url", instances[0].BaseURL()).Msg("Resolved service instance")

	return New(instances[0].BaseURL(), opts...), nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) CreateIntent(ctx context.Context, payload *intents.PostCreateIntentPayload) (*intents.IntentCreatedResponse, error) {
	var res intents.IntentCreatedResponse
	if err := c.do(ctx, http.MethodPost, "/payment-intents", payload, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetIntent(ctx context.Context, id string) (*intents.IntentResponse, error) {
	var res intents.IntentResponse
	if err := c.do(ctx, http.MethodGet, "/payment-intents/"+id, nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ListIntents(ctx context.Context, vendor string, status string) (*intents.IntentListResponse, error) {
	q := url.Values{}
	if vendor != "" {
		q.Set("vendor", vendor)
	}
	if status != "" {
		q.Set("status", status)
	}

	path := "/payment-intents"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var res intents.IntentListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) StartIntent(ctx context.Context, id string) (*intents.StartIntentResponse, error) {
	var res intents.StartIntentResponse
	body := &intents.PostStartIntentPayload{IntentID: id}
	if err := c.do(ctx, http.MethodPost, "/payment-intents/"+id+"/start", body, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ContinueIntent(ctx context.Context, id string, payload *intents.PostContinueIntentPayload) (*intents.ContinueIntentResponse, error) {
	var res intents.ContinueIntentResponse
	if err := c.do(ctx, http.MethodPost, "/payment-intents/"+id+"/continue", payload, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// PostEvent delivers a provider notification, signed when the client has a
// webhook secret.
func (c *Client) PostEvent(ctx context.Context, payload *webhooks.PostPaymentEventPayload) (*webhooks.PaymentEventResponse, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal event")
	}

	headers := http.Header{}
	if c.webhookSecret != "" {
		headers.Set(middleware.HeaderWebhookSignature, middleware.SignWebhookBody(c.webhookSecret, raw))
	}

	var res webhooks.PaymentEventResponse
	if err := c.do(ctx, http.MethodPost, "/webhooks/payment-events", json.RawMessage(raw), headers, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) IssueToken(ctx context.Context, payload *tokens.PostTokenPayload) (*tokens.TokenResponse, error) {
	var res tokens.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/tokens", payload, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Health(ctx context.Context) (*types.HealthResponse, error) {
	var res types.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) do(ctx context.Context, method string, path string, body interface{}, headers http.Header, result interface{}) error {
	resp, err := c.makeRequest(ctx, method, path, body, headers)
	if err != nil {
		return err
	}
	return parseResponse(resp, result)
}

func (c *Client) makeRequest(ctx context.Context, method string, path string, body interface{}, headers http.Header) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal request body")
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, values := range headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to send %s %s", method, path)
	}

	return resp, nil
}

func parseResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Raw: string(body)}
		var public types.PublicHTTPError
		if json.Unmarshal(body, &public) == nil && public.Type != "" {
			apiErr.Body = &public
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return errors.Wrap(err, "failed to unmarshal response")
		}
	}

	return nil
}
