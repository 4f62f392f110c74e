package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kashguard/go-payment-intents/internal/auth"
	"github.com/kashguard/go-payment-intents/internal/config"
	"github.com/kashguard/go-payment-intents/internal/metrics"
	"github.com/kashguard/go-payment-intents/internal/util"
	"github.com/pkg/errors"
)

const (
	DefaultTimeout = 5 * time.Second

	HeaderClientAssertion = "Client-Assertion"

	OpCreateIncomingPayment = "create_incoming_payment"
	OpRequestGrant          = "request_grant"
)

var (
	ErrNotConfigured = errors.New("provider not configured")
	ErrBadResponse   = errors.New("provider returned an unusable response")
)

// StatusError is returned for any non-2xx provider response.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider %s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

// AssertionIssuer signs client assertions for outgoing provider calls.
type AssertionIssuer interface {
	Issue(role auth.Role, keyID string) (*auth.SignedAssertion, error)
}

// Client talks to an Open Payments style resource server and its
// authorization server.
type Client struct {
	baseURL           string
	authServerURL     string
	accessToken       string
	finishRedirectURL string
	timeout           time.Duration
	assertions        AssertionIssuer
	metrics           *metrics.Metrics
	httpClient        *http.Client
}

func NewClient(cfg config.Provider, assertions AssertionIssuer, m *metrics.Metrics) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL:           strings.TrimRight(cfg.BaseURL, "/"),
		authServerURL:     strings.TrimRight(cfg.AuthServerURL, "/"),
		accessToken:       cfg.AccessToken,
		finishRedirectURL: cfg.FinishRedirectURL,
		timeout:           timeout,
		assertions:        assertions,
		metrics:           m,
		httpClient:        &http.Client{},
	}
}

// Configured reports whether incoming payments can be registered at all.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

func (c *Client) GrantsConfigured() bool {
	return c != nil && c.authServerURL != ""
}

func (c *Client) Timeout() time.Duration {
	return c.timeout
}

func (c *Client) FinishRedirectURL() string {
	return c.finishRedirectURL
}

// CreateIncomingPayment registers an incoming payment on the receiver's
// wallet. The call is bounded by the configured timeout.
func (c *Client) CreateIncomingPayment(ctx context.Context, req IncomingPaymentRequest) (*IncomingPayment, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	var res IncomingPayment
	err := c.do(ctx, OpCreateIncomingPayment, auth.RoleReceiver, c.baseURL+"/incoming-payments", req.wire(), &res)
	if err != nil {
		return nil, err
	}

	if res.ID == "" {
		return nil, errors.Wrap(ErrBadResponse, "incoming payment without id")
	}

	return &res, nil
}

// RequestGrant asks the authorization server for an interactive
// outgoing-payment grant on behalf of the sender.
func (c *Client) RequestGrant(ctx context.Context, req GrantRequest) (*Grant, error) {
	if !c.GrantsConfigured() {
		return nil, ErrNotConfigured
	}

	var res grantResponse
	err := c.do(ctx, OpRequestGrant, auth.RoleSender, c.authServerURL, req.wire(c.finishRedirectURL), &res)
	if err != nil {
		return nil, err
	}

	if res.Interact.Redirect == "" || res.Continue.URI == "" {
		return nil, errors.Wrap(ErrBadResponse, "grant without interaction")
	}

	return &Grant{
		RedirectURL:   res.Interact.Redirect,
		FinishNonce:   res.Interact.Finish,
		ContinueURI:   res.Continue.URI,
		ContinueToken: res.Continue.AccessToken.Value,
	}, nil
}

func (c *Client) do(ctx context.Context, op string, role auth.Role, url string, body interface{}, result interface{}) (err error) {
	log := util.LogFromContext(ctx).With().Str("op", op).Logger()

	started := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			if errors.Is(err, context.DeadlineExceeded) {
				outcome = "timeout"
			}
		}
		c.metrics.ProviderRequest(op, outcome, time.Since(started).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "failed to marshal provider request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return errors.Wrap(err, "failed to create provider request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "GNAP "+c.accessToken)
	}

	if c.assertions != nil {
		assertion, err := c.assertions.Issue(role, "")
		if err != nil {
			return errors.Wrap(err, "failed to sign client assertion")
		}
		req.Header.Set(HeaderClientAssertion, assertion.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("Provider request failed")
		return errors.Wrapf(err, "provider %s", op)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrap(err, "failed to read provider response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Debug().Int("status", resp.StatusCode).Msg("Provider returned non-success status")
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: truncate(string(respBody), 256)}
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return errors.Wrap(ErrBadResponse, err.Error())
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
