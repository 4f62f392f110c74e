package intent

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/dropbox/godropbox/time2"
	"github.com/kashguard/go-payment-intents/internal/config"
	"github.com/kashguard/go-payment-intents/internal/provider"
	"github.com/kashguard/go-payment-intents/internal/util"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	DefaultTTL               = 30 * time.Minute
	DefaultMaxDescriptionLen = 280
	DefaultMaxVendorLen      = 120
)

// IncomingPaymentCreator registers incoming payments with the provider.
type IncomingPaymentCreator interface {
	Configured() bool
	CreateIncomingPayment(ctx context.Context, req provider.IncomingPaymentRequest) (*provider.IncomingPayment, error)
}

// CreateRequest carries the caller's input; Amount is in major units.
type CreateRequest struct {
	Amount      decimal.Decimal
	Description string
	VendorLabel string
	AssetCode   string
	CartID      string
	Items       []CartItem
}

// Builder turns a cart total into a pending PaymentIntent. It does not
// persist anything.
type Builder struct {
	cfg             config.Intent
	assetCode       string
	assetScale      uint8
	receiverAddress string
	payments        IncomingPaymentCreator
	clock           time2.Clock

	lastSimulatedMillis atomic.Int64
}

func NewBuilder(cfg config.Intent, providerCfg config.Provider, receiverAddress string, payments IncomingPaymentCreator, clock time2.Clock) *Builder {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxDescriptionLen <= 0 {
		cfg.MaxDescriptionLen = DefaultMaxDescriptionLen
	}
	if cfg.MaxVendorLen <= 0 {
		cfg.MaxVendorLen = DefaultMaxVendorLen
	}

	assetCode := providerCfg.AssetCode
	if assetCode == "" {
		assetCode = DefaultAssetCode
	}

	return &Builder{
		cfg:             cfg,
		assetCode:       assetCode,
		assetScale:      providerCfg.AssetScale,
		receiverAddress: receiverAddress,
		payments:        payments,
		clock:           clock,
	}
}

// CreateIntent validates req, registers the payment (falling back to a
// simulated registration when the provider is unavailable) and renders the
// scannable payload.
func (b *Builder) CreateIntent(ctx context.Context, req CreateRequest) (*PaymentIntent, error) {
	log := util.LogFromContext(ctx)

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, errors.Wrap(ErrInvalidIntentRequest, "description is required")
	}
	if utf8.RuneCountInString(description) > b.cfg.MaxDescriptionLen {
		return nil, errors.Wrapf(ErrInvalidIntentRequest, "description exceeds %d characters", b.cfg.MaxDescriptionLen)
	}

	vendor := strings.TrimSpace(req.VendorLabel)
	if utf8.RuneCountInString(vendor) > b.cfg.MaxVendorLen {
		return nil, errors.Wrapf(ErrInvalidIntentRequest, "vendor exceeds %d characters", b.cfg.MaxVendorLen)
	}

	assetCode := req.AssetCode
	if assetCode == "" {
		assetCode = b.assetCode
	}

	amount, err := NewAmount(req.Amount, assetCode, b.assetScale)
	if err != nil {
		return nil, err
	}

	snapshot, err := BuildCartSnapshot(req.Items, amount)
	if err != nil {
		return nil, err
	}

	now := b.clock.Now().UTC()
	expiresAt := now.Add(b.cfg.TTL)

	registration := b.register(ctx, amount, description, req.CartID, expiresAt)

	pi := &PaymentIntent{
		ID:              registration.IntentID(),
		CartID:          req.CartID,
		Amount:          amount,
		Description:     description,
		VendorLabel:     vendor,
		ReceiverAddress: b.receiverAddress,
		Status:          StatusPending,
		CartSnapshot:    snapshot,
		CreatedAt:       now,
		ExpiresAt:       expiresAt,
		UpdatedAt:       now,
	}

	switch r := registration.(type) {
	case Registered:
		pi.ProviderURL = r.URL
	case Simulated:
		pi.Simulated = true
		if r.Cause != nil {
			pi.SimulationReason = r.Cause.Error()
		}
		log.Warn().
			Err(r.Cause).
			Str("intent_id", pi.ID).
			Msg("Provider registration unavailable, using simulated intent")
	}

	pi.PaymentURL = ExpandURLTemplate(b.cfg.PaymentURLTemplate, pi.ID)

	payload, err := RenderPayload(newPayloadDocument(b.cfg.PayloadType, pi))
	if err != nil {
		return nil, err
	}
	pi.Payload = string(payload)

	pi.QRImage, err = RenderQRCode(payload, b.cfg.QRCodeSize)
	if err != nil {
		return nil, err
	}

	return pi, nil
}

func (b *Builder) register(ctx context.Context, amount Amount, description string, cartID string, expiresAt time.Time) Registration {
	if b.payments == nil || !b.payments.Configured() {
		return Simulated{ID: b.simulatedID(), Cause: provider.ErrNotConfigured}
	}

	res, err := b.payments.CreateIncomingPayment(ctx, provider.IncomingPaymentRequest{
		WalletAddress: b.receiverAddress,
		Amount:        amount.provider(),
		Description:   description,
		ExternalRef:   cartID,
		ExpiresAt:     expiresAt,
	})
	if err != nil {
		return Simulated{ID: b.simulatedID(), Cause: err}
	}

	id := NormalizeID(res.ID)
	if id == "" {
		return Simulated{ID: b.simulatedID(), Cause: errors.Wrap(provider.ErrBadResponse, "empty incoming payment id")}
	}

	return Registered{ID: id, URL: res.ID}
}

// simulatedID returns incoming_<unixMillis>_simulated with a millisecond
// value strictly greater than any earlier one from this builder.
func (b *Builder) simulatedID() string {
	now := b.clock.Now().UnixMilli()
	for {
		last := b.lastSimulatedMillis.Load()
		next := now
		if next <= last {
			next = last + 1
		}
		if b.lastSimulatedMillis.CompareAndSwap(last, next) {
			return fmt.Sprintf("incoming_%d_simulated", next)
		}
	}
}

// IsSimulatedID reports whether id was synthesized locally.
func IsSimulatedID(id string) bool {
	return strings.HasPrefix(id, "incoming_") && strings.HasSuffix(id, "_simulated")
}

// NormalizeID reduces a provider resource URL to its last path segment.
func NormalizeID(id string) string {
	id = strings.TrimRight(strings.TrimSpace(id), "/")
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}
