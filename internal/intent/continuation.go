package intent

import (
	"context"
	"strings"

	"github.com/kashguard/go-payment-intents/internal/util"
	"github.com/pkg/errors"
)

// ContinueRequest carries the outcome of the payer's interaction.
type ContinueRequest struct {
	IntentID  string
	PaymentID string
	Grant     string
}

// ContinueResult reports the intent after continuation and whether this call
// changed it.
type ContinueResult struct {
	Intent  *PaymentIntent
	Changed bool
}

var rejectedGrants = map[string]bool{
	"rejected":  true,
	"denied":    true,
	"cancelled": true,
	"canceled":  true,
}

// IsRejectedGrant reports whether grant signals that the payer declined.
func IsRejectedGrant(grant string) bool {
	return rejectedGrants[strings.ToLower(strings.TrimSpace(grant))]
}

// Continue moves a pending intent to authorized, or to cancelled when the
// grant was rejected. Repeating it on an authorized intent changes nothing.
// Unknown and terminal intents fail with a *StateError.
func (s *Service) Continue(ctx context.Context, req ContinueRequest) (*ContinueResult, error) {
	log := util.LogFromContext(ctx)

	grant := strings.TrimSpace(req.Grant)
	if grant == "" {
		return nil, errors.Wrap(ErrInvalidIntentRequest, "grant is required")
	}

	pi, err := s.store.Get(ctx, req.IntentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &StateError{IntentID: req.IntentID}
		}
		return nil, err
	}

	if req.PaymentID != "" && pi.PaymentID != "" && req.PaymentID != pi.PaymentID {
		return nil, errors.Wrapf(ErrInvalidIntentRequest, "paymentId %s does not belong to intent %s", req.PaymentID, pi.ID)
	}

	now := s.now()
	switch pi.EffectiveStatus(now) {
	case StatusAuthorized:
		log.Debug().Str("intent_id", pi.ID).Msg("Intent already authorized")
		return &ContinueResult{Intent: pi.AsOf(now)}, nil
	case StatusPending:
	default:
		if pi.LapsedAt(now) {
			s.persistExpiry(ctx, pi.ID)
		}
		return nil, &StateError{IntentID: pi.ID, Status: pi.EffectiveStatus(now)}
	}

	target := StatusAuthorized
	if IsRejectedGrant(grant) {
		target = StatusCancelled
	}

	updated, swapped, err := s.transition(ctx, pi.ID, StatusPending, target, func(cur *PaymentIntent) {
		cur.Grant = grant
		if cur.PaymentID == "" {
			cur.PaymentID = req.PaymentID
		}
	})
	if err != nil {
		if errors.Is(err, errLapsed) {
			s.persistExpiry(ctx, pi.ID)
			return nil, &StateError{IntentID: pi.ID, Status: StatusExpired}
		}
		return nil, errors.Wrapf(err, "failed to continue intent %s", pi.ID)
	}

	if !swapped {
		// Lost the race: report whatever state won.
		log.Debug().Str("intent_id", pi.ID).Str("status", string(updated.Status)).Msg("Continuation lost race")
		return &ContinueResult{Intent: updated.AsOf(s.now())}, nil
	}

	return &ContinueResult{Intent: updated, Changed: true}, nil
}
