package test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// FakeProvider is an in-process stand-in for the payment provider: it serves
// incoming payment registration under /incoming-payments and grant requests
// under /auth.
type FakeProvider struct {
	Server *httptest.Server

	mu               sync.Mutex
	incomingStatus   int
	grantStatus      int
	delay            time.Duration
	incomingRequests []map[string]interface{}
	grantRequests    []map[string]interface{}
	headers          []http.Header
	counter          atomic.Int64
}

func NewFakeProvider(t *testing.T) *FakeProvider {
	t.Helper()

	p := &FakeProvider{
		incomingStatus: http.StatusCreated,
		grantStatus:    http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/incoming-payments", p.handleIncomingPayment)
	mux.HandleFunc("/auth", p.handleGrant)

	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Server.Close)

	return p
}

func (p *FakeProvider) URL() string {
	return p.Server.URL
}

func (p *FakeProvider) AuthURL() string {
	return p.Server.URL + "/auth"
}

// SetIncomingStatus makes subsequent incoming payment registrations answer
// with status.
func (p *FakeProvider) SetIncomingStatus(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.incomingStatus = status
}

func (p *FakeProvider) SetGrantStatus(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.grantStatus = status
}

// SetDelay delays every response, used to provoke client timeouts.
func (p *FakeProvider) SetDelay(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delay = d
}

func (p *FakeProvider) IncomingRequests() []map[string]interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]map[string]interface{}(nil), p.incomingRequests...)
}

func (p *FakeProvider) GrantRequests() []map[string]interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]map[string]interface{}(nil), p.grantRequests...)
}

func (p *FakeProvider) Headers() []http.Header {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]http.Header(nil), p.headers...)
}

func (p *FakeProvider) record(r *http.Request, into *[]map[string]interface{}) (int, time.Duration) {
	var body map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&body)

	p.mu.Lock()
	defer p.mu.Unlock()

	*into = append(*into, body)
	p.headers = append(p.headers, r.Header.Clone())

	if into == &p.grantRequests {
		return p.grantStatus, p.delay
	}
	return p.incomingStatus, p.delay
}

func (p *FakeProvider) wait(r *http.Request, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-time.After(d):
		return true
	case <-r.Context().Done():
		return false
	}
}

func (p *FakeProvider) handleIncomingPayment(w http.ResponseWriter, r *http.Request) {
	status, delay := p.record(r, &p.incomingRequests)
	if !p.wait(r, delay) {
		return
	}

	if status >= http.StatusMultipleChoices {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":"unavailable"}`))
		return
	}

	n := p.counter.Add(1)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"id":            fmt.Sprintf("%s/incoming-payments/ip-%04d", p.Server.URL, n),
		"walletAddress": TestReceiverWalletAddress,
		"completed":     false,
	})
}

func (p *FakeProvider) handleGrant(w http.ResponseWriter, r *http.Request) {
	status, delay := p.record(r, &p.grantRequests)
	if !p.wait(r, delay) {
		return
	}

	if status >= http.StatusMultipleChoices {
		w.WriteHeader(status)
		return
	}

	n := p.counter.Add(1)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"interact": map[string]interface{}{
			"redirect": fmt.Sprintf("%s/interact/%d", p.Server.URL, n),
			"finish":   fmt.Sprintf("finish-%d", n),
		},
		"continue": map[string]interface{}{
			"uri":  fmt.Sprintf("%s/continue/%d", p.Server.URL, n),
			"wait": 5,
			"access_token": map[string]interface{}{
				"value": fmt.Sprintf("continue-token-%d", n),
			},
		},
	})
}
