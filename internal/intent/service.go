package intent

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/google/uuid"
	"github.com/kashguard/go-payment-intents/internal/metrics"
	"github.com/kashguard/go-payment-intents/internal/provider"
	"github.com/kashguard/go-payment-intents/internal/util"
	"github.com/pkg/errors"
)

const DefaultListLimit = 100

// casAttempts bounds retries when a compare-and-swap loses to a write that
// did not change the status.
const casAttempts = 3

// GrantRequester starts the payer-side authorization at the provider.
type GrantRequester interface {
	GrantsConfigured() bool
	RequestGrant(ctx context.Context, req provider.GrantRequest) (*provider.Grant, error)
}

// Service orchestrates the intent lifecycle on top of a Store. All status
// changes go through compare-and-swap so concurrent requests need no locks.
type Service struct {
	builder           *Builder
	store             Store
	grants            GrantRequester
	clock             time2.Clock
	metrics           *metrics.Metrics
	senderAddress     string
	finishRedirectURL string
	listLimit         int
}

type ServiceOptions struct {
	SenderAddress     string
	FinishRedirectURL string
	ListLimit         int
}

func NewService(builder *Builder, store Store, grants GrantRequester, clock time2.Clock, m *metrics.Metrics, opts ServiceOptions) *Service {
	if opts.ListLimit <= 0 {
		opts.ListLimit = DefaultListLimit
	}

	return &Service{
		builder:           builder,
		store:             store,
		grants:            grants,
		clock:             clock,
		metrics:           m,
		senderAddress:     opts.SenderAddress,
		finishRedirectURL: opts.FinishRedirectURL,
		listLimit:         opts.ListLimit,
	}
}

func (s *Service) Store() Store {
	return s.store
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

// Create builds a new intent and persists it in pending.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*PaymentIntent, error) {
	log := util.LogFromContext(ctx)

	pi, err := s.builder.CreateIntent(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, pi); err != nil {
		return nil, errors.Wrapf(err, "failed to store intent %s", pi.ID)
	}

	mode := "registered"
	if pi.Simulated {
		mode = "simulated"
	}
	s.metrics.IntentCreated(mode)

	log.Info().
		Str("intent_id", pi.ID).
		Str("amount", pi.Amount.Value).
		Str("vendor", pi.VendorLabel).
		Bool("simulated", pi.Simulated).
		Msg("Created payment intent")

	return pi, nil
}

// Get returns the intent as of now. A lapsed pending intent is reported as
// expired and the expiry is persisted on the way.
func (s *Service) Get(ctx context.Context, id string) (*PaymentIntent, error) {
	pi, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if pi.LapsedAt(now) {
		s.persistExpiry(ctx, pi.ID)
	}

	return pi.AsOf(now), nil
}

// List scans intents. Pending and expired filters are evaluated against the
// effective status, not the stored one.
func (s *Service) List(ctx context.Context, vendor string, status Status) ([]*PaymentIntent, error) {
	filter := Filter{Vendor: vendor}

	switch status {
	case "":
	case StatusExpired:
		filter.Statuses = []Status{StatusPending, StatusExpired}
	default:
		filter.Statuses = []Status{status}
	}

	intents, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list intents")
	}

	now := s.now()
	res := make([]*PaymentIntent, 0, len(intents))
	for _, pi := range intents {
		view := pi.AsOf(now)
		if status != "" && view.Status != status {
			continue
		}
		res = append(res, view)
	}

	return ApplyLimit(res, s.listLimit), nil
}

// StartResult is what the payer needs to begin the provider interaction.
type StartResult struct {
	Intent            *PaymentIntent
	RedirectURL       string
	PaymentID         string
	ContinuationURI   string
	ContinuationToken string
	Simulated         bool
}

// Start requests an outgoing-payment grant for the sender. When the provider
// cannot be reached a simulated redirect is returned instead. Starting an
// intent twice returns the first result. Only pending intents request a new
// grant; an intent authorized without a start fails with a *StateError.
func (s *Service) Start(ctx context.Context, id string) (*StartResult, error) {
	log := util.LogFromContext(ctx)

	for attempt := 0; attempt < casAttempts; attempt++ {
		pi, err := s.store.Get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, &StateError{IntentID: id}
			}
			return nil, err
		}

		now := s.now()
		status := pi.EffectiveStatus(now)
		if status.IsTerminal() {
			if pi.LapsedAt(now) {
				s.persistExpiry(ctx, pi.ID)
			}
			return nil, &StateError{IntentID: id, Status: status}
		}

		if pi.PaymentID != "" {
			return startResultFrom(pi), nil
		}

		if status != StatusPending {
			return nil, &StateError{IntentID: id, Status: status}
		}

		res := s.requestGrant(ctx, pi)

		updated, swapped, err := s.store.CompareAndSwap(ctx, id, StatusPending, func(cur *PaymentIntent) error {
			if cur.PaymentID != "" {
				return nil
			}
			startedAt := now
			cur.PaymentID = res.PaymentID
			cur.StartedAt = &startedAt
			cur.RedirectURL = res.RedirectURL
			cur.ContinuationURI = res.ContinuationURI
			cur.ContinuationToken = res.ContinuationToken
			cur.StartSimulated = res.Simulated
			cur.UpdatedAt = now
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to record start of intent %s", id)
		}
		if !swapped {
			log.Debug().Str("intent_id", id).Int("attempt", attempt).Msg("Intent changed while starting, retrying")
			continue
		}

		log.Info().
			Str("intent_id", id).
			Str("payment_id", updated.PaymentID).
			Bool("simulated", updated.StartSimulated).
			Msg("Started payment")

		return startResultFrom(updated), nil
	}

	pi, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if pi.Status.IsTerminal() {
		return nil, &StateError{IntentID: id, Status: pi.Status}
	}
	return startResultFrom(pi), nil
}

func (s *Service) requestGrant(ctx context.Context, pi *PaymentIntent) StartResult {
	log := util.LogFromContext(ctx)

	paymentID := uuid.NewString()

	if s.grants != nil && s.grants.GrantsConfigured() && !pi.Simulated {
		grant, err := s.grants.RequestGrant(ctx, provider.GrantRequest{
			ClientWalletAddress: s.senderAddress,
			ReceiverAddress:     pi.ReceiverAddress,
			Amount:              pi.Amount.provider(),
			Nonce:               paymentID,
			FinishURI:           s.finishURL(paymentID, ""),
		})
		if err == nil {
			return StartResult{
				RedirectURL:       grant.RedirectURL,
				PaymentID:         paymentID,
				ContinuationURI:   grant.ContinueURI,
				ContinuationToken: grant.ContinueToken,
			}
		}
		log.Warn().Err(err).Str("intent_id", pi.ID).Msg("Grant request failed, using simulated redirect")
	}

	return StartResult{
		RedirectURL:       s.finishURL(paymentID, "simulated"),
		PaymentID:         paymentID,
		ContinuationURI:   continuationURI(pi.PaymentURL),
		ContinuationToken: uuid.NewString(),
		Simulated:         true,
	}
}

func (s *Service) finishURL(paymentID string, result string) string {
	base := s.finishRedirectURL
	if base == "" {
		return ""
	}

	u, err := url.Parse(base)
	if err != nil {
		return base
	}

	q := u.Query()
	q.Set("paymentId", paymentID)
	if result != "" {
		q.Set("result", result)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// continuationURI points at this service's continue endpoint for the intent.
func continuationURI(paymentURL string) string {
	if strings.HasSuffix(paymentURL, "/start") {
		return strings.TrimSuffix(paymentURL, "/start") + "/continue"
	}
	return strings.TrimRight(paymentURL, "/") + "/continue"
}

func startResultFrom(pi *PaymentIntent) *StartResult {
	return &StartResult{
		Intent:            pi,
		RedirectURL:       pi.RedirectURL,
		PaymentID:         pi.PaymentID,
		ContinuationURI:   pi.ContinuationURI,
		ContinuationToken: pi.ContinuationToken,
		Simulated:         pi.StartSimulated,
	}
}

// transition performs one CAS from -> to. A lost race is not an error: the
// current record is returned with swapped == false.
func (s *Service) transition(ctx context.Context, id string, from, to Status, extra func(pi *PaymentIntent)) (*PaymentIntent, bool, error) {
	if !CanTransition(from, to) {
		return nil, false, errors.Errorf("invalid transition %s -> %s", from, to)
	}

	now := s.now()
	pi, swapped, err := s.store.CompareAndSwap(ctx, id, from, func(cur *PaymentIntent) error {
		if to != StatusExpired && cur.LapsedAt(now) {
			return errLapsed
		}
		if extra != nil {
			extra(cur)
		}
		cur.apply(to, now)
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if swapped {
		s.metrics.Transition(string(from), string(to))
		util.LogFromContext(ctx).Info().
			Str("intent_id", id).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("Intent transitioned")
	}

	return pi, swapped, nil
}

var errLapsed = errors.New("intent lapsed")

// persistExpiry records a lapsed pending intent as expired. Failures are only
// logged since every read already reports the expiry.
func (s *Service) persistExpiry(ctx context.Context, id string) {
	if _, _, err := s.transition(ctx, id, StatusPending, StatusExpired, nil); err != nil {
		util.LogFromContext(ctx).Warn().Err(err).Str("intent_id", id).Msg("Failed to persist intent expiry")
	}
}
