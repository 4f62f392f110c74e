package intent

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusAuthorized Status = "authorized"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusExpired    Status = "expired"
)

var AllStatuses = []Status{StatusPending, StatusAuthorized, StatusCompleted, StatusCancelled, StatusExpired}

var transitions = map[Status][]Status{
	StatusPending:    {StatusAuthorized, StatusCompleted, StatusCancelled, StatusExpired},
	StatusAuthorized: {StatusCompleted, StatusCancelled},
}

func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllStatuses {
		if status == known {
			return status, nil
		}
	}
	return "", errors.Errorf("unknown status %q", s)
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusExpired
}

// CanTransition reports whether from -> to is an edge of the lifecycle.
// Terminal states have no outgoing edges.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PaymentIntent is the persisted record of one payment request. Payload and
// CartSnapshot never change after creation.
type PaymentIntent struct {
	ID               string     `json:"intentId"`
	CartID           string     `json:"cartId,omitempty"`
	Amount           Amount     `json:"amount"`
	Description      string     `json:"description"`
	VendorLabel      string     `json:"vendorLabel"`
	ReceiverAddress  string     `json:"receiverAddress"`
	ProviderURL      string     `json:"providerUrl,omitempty"`
	Simulated        bool       `json:"simulated"`
	SimulationReason string     `json:"simulationReason,omitempty"`
	Status           Status     `json:"status"`
	Payload          string     `json:"payload"`
	QRImage          string     `json:"qrImage"`
	PaymentURL       string     `json:"paymentUrl"`
	CartSnapshot     []CartLine `json:"cartSnapshot,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	ExpiresAt        time.Time  `json:"expiresAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`

	PaymentID         string     `json:"paymentId,omitempty"`
	StartedAt         *time.Time `json:"startedAt,omitempty"`
	RedirectURL       string     `json:"redirectUrl,omitempty"`
	ContinuationURI   string     `json:"continuationUri,omitempty"`
	ContinuationToken string     `json:"continuationToken,omitempty"`
	StartSimulated    bool       `json:"startSimulated,omitempty"`
	Grant             string     `json:"grant,omitempty"`

	AuthorizedAt *time.Time `json:"authorizedAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	CancelledAt  *time.Time `json:"cancelledAt,omitempty"`
	ExpiredAt    *time.Time `json:"expiredAt,omitempty"`
}

// LapsedAt reports whether a pending intent is past its expiry at now.
func (pi *PaymentIntent) LapsedAt(now time.Time) bool {
	return pi.Status == StatusPending && !now.Before(pi.ExpiresAt)
}

// EffectiveStatus is the status every read reports: a pending intent past
// ExpiresAt is expired even before anything persisted that.
func (pi *PaymentIntent) EffectiveStatus(now time.Time) Status {
	if pi.LapsedAt(now) {
		return StatusExpired
	}
	return pi.Status
}

// AsOf returns a copy with lazy expiry applied.
func (pi *PaymentIntent) AsOf(now time.Time) *PaymentIntent {
	c := pi.Clone()
	if c.LapsedAt(now) {
		expiredAt := c.ExpiresAt
		c.Status = StatusExpired
		c.ExpiredAt = &expiredAt
	}
	return c
}

func (pi *PaymentIntent) Clone() *PaymentIntent {
	c := *pi
	if pi.CartSnapshot != nil {
		c.CartSnapshot = append([]CartLine(nil), pi.CartSnapshot...)
	}
	c.StartedAt = cloneTime(pi.StartedAt)
	c.AuthorizedAt = cloneTime(pi.AuthorizedAt)
	c.CompletedAt = cloneTime(pi.CompletedAt)
	c.CancelledAt = cloneTime(pi.CancelledAt)
	c.ExpiredAt = cloneTime(pi.ExpiredAt)
	return &c
}

// apply moves the intent to next and stamps the matching timestamp.
func (pi *PaymentIntent) apply(next Status, now time.Time) {
	ts := now
	switch next {
	case StatusAuthorized:
		pi.AuthorizedAt = &ts
	case StatusCompleted:
		pi.CompletedAt = &ts
	case StatusCancelled:
		pi.CancelledAt = &ts
	case StatusExpired:
		expiredAt := pi.ExpiresAt
		if now.Before(expiredAt) {
			expiredAt = now
		}
		pi.ExpiredAt = &expiredAt
	}
	pi.Status = next
	pi.UpdatedAt = now
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
