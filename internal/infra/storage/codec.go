package storage

import (
	"encoding/json"

	"github.com/kashguard/go-payment-intents/internal/intent"
	"github.com/pkg/errors"
)

func encodeIntent(pi *intent.PaymentIntent) ([]byte, error) {
	b, err := json.Marshal(pi)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode intent %s", pi.ID)
	}
	return b, nil
}

func decodeIntent(b []byte) (*intent.PaymentIntent, error) {
	var pi intent.PaymentIntent
	if err := json.Unmarshal(b, &pi); err != nil {
		return nil, errors.Wrap(err, "failed to decode intent")
	}
	return &pi, nil
}
