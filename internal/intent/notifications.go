package intent

import (
	"context"
	"strings"

	"github.com/kashguard/go-payment-intents/internal/util"
	"github.com/pkg/errors"
)

const (
	EventPaymentCompleted         = "payment.completed"
	EventPaymentCancelled         = "payment.cancelled"
	EventPaymentExpired           = "payment.expired"
	EventIncomingPaymentCompleted = "incoming_payment.completed"
	EventIncomingPaymentExpired   = "incoming_payment.expired"
)

// EventOutcome is how a notification was handled.
type EventOutcome string

const (
	OutcomeApplied       EventOutcome = "applied"
	OutcomeNoop          EventOutcome = "noop"
	OutcomeIgnored       EventOutcome = "ignored"
	OutcomeUnknownIntent EventOutcome = "unknown_intent"
)

type eventRule struct {
	target  Status
	sources []Status
}

var eventRules = map[string]eventRule{
	EventPaymentCompleted:         {target: StatusCompleted, sources: []Status{StatusPending, StatusAuthorized}},
	EventIncomingPaymentCompleted: {target: StatusCompleted, sources: []Status{StatusPending, StatusAuthorized}},
	EventPaymentCancelled:         {target: StatusCancelled, sources: []Status{StatusPending, StatusAuthorized}},
	EventPaymentExpired:           {target: StatusExpired, sources: []Status{StatusPending}},
	EventIncomingPaymentExpired:   {target: StatusExpired, sources: []Status{StatusPending}},
}

// IsKnownEvent reports whether eventType changes intent state.
func IsKnownEvent(eventType string) bool {
	_, ok := eventRules[eventType]
	return ok
}

// IntentIDFromEventData extracts the intent reference from a webhook data
// object. Provider resource URLs are reduced to their id. paymentId is not
// an intent reference, see PaymentIDFromEventData.
func IntentIDFromEventData(data map[string]interface{}) string {
	for _, key := range []string{"intentId", "incomingPaymentId", "id"} {
		if v, ok := data[key].(string); ok && strings.TrimSpace(v) != "" {
			return NormalizeID(v)
		}
	}
	return ""
}

// PaymentIDFromEventData returns the payment id handed out by Start, if the
// data object carries one.
func PaymentIDFromEventData(data map[string]interface{}) string {
	if v, ok := data["paymentId"].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// intentIDForPayment finds the intent a started payment belongs to.
func (s *Service) intentIDForPayment(ctx context.Context, paymentID string) (string, error) {
	all, err := s.store.List(ctx, Filter{})
	if err != nil {
		return "", errors.Wrap(err, "failed to look up intent by payment id")
	}
	for _, pi := range all {
		if pi.PaymentID == paymentID {
			return pi.ID, nil
		}
	}
	return "", nil
}

// HandleEvent applies a provider notification. Unknown event types and
// events for intents in a state the event does not apply to are
// acknowledged without changes. Only store failures return an error.
func (s *Service) HandleEvent(ctx context.Context, eventType string, data map[string]interface{}) (EventOutcome, error) {
	log := util.LogFromContext(ctx).With().Str("event", eventType).Logger()

	rule, ok := eventRules[eventType]
	if !ok {
		log.Info().Msg("Ignoring unrecognized payment event")
		s.metrics.WebhookEvent(eventType, string(OutcomeIgnored))
		return OutcomeIgnored, nil
	}

	id := IntentIDFromEventData(data)
	if id == "" {
		paymentID := PaymentIDFromEventData(data)
		if paymentID == "" {
			log.Warn().Msg("Payment event without intent reference")
			s.metrics.WebhookEvent(eventType, string(OutcomeIgnored))
			return OutcomeIgnored, nil
		}

		resolved, err := s.intentIDForPayment(ctx, paymentID)
		if err != nil {
			s.metrics.WebhookEvent(eventType, "error")
			return "", err
		}
		if resolved == "" {
			log.Warn().Str("payment_id", paymentID).Msg("Payment event for unknown payment")
			s.metrics.WebhookEvent(eventType, string(OutcomeUnknownIntent))
			return OutcomeUnknownIntent, nil
		}
		id = resolved
	}

	outcome, err := s.applyEvent(ctx, id, rule)
	if err != nil {
		s.metrics.WebhookEvent(eventType, "error")
		return "", err
	}

	s.metrics.WebhookEvent(eventType, string(outcome))
	return outcome, nil
}

func (s *Service) applyEvent(ctx context.Context, id string, rule eventRule) (EventOutcome, error) {
	log := util.LogFromContext(ctx).With().Str("intent_id", id).Str("target", string(rule.target)).Logger()

	for attempt := 0; attempt < casAttempts; attempt++ {
		pi, err := s.store.Get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				log.Warn().Msg("Payment event for unknown intent")
				return OutcomeUnknownIntent, nil
			}
			return "", err
		}

		now := s.now()
		if pi.LapsedAt(now) && rule.target != StatusExpired {
			s.persistExpiry(ctx, id)
			log.Warn().Msg("Payment event for expired intent, not applied")
			return OutcomeNoop, nil
		}

		if !statusIn(pi.Status, rule.sources) {
			log.Warn().Str("status", string(pi.Status)).Msg("Payment event does not apply to intent state")
			return OutcomeNoop, nil
		}

		_, swapped, err := s.transition(ctx, id, pi.Status, rule.target, nil)
		if err != nil {
			if errors.Is(err, errLapsed) {
				s.persistExpiry(ctx, id)
				return OutcomeNoop, nil
			}
			return "", err
		}
		if swapped {
			return OutcomeApplied, nil
		}
	}

	return OutcomeNoop, nil
}

func statusIn(status Status, set []Status) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}
