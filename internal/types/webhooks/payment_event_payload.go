package webhooks

import (
	"context"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/go-openapi/validate"
)

// PostPaymentEventPayload is a provider notification.
type PostPaymentEventPayload struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

func (m *PostPaymentEventPayload) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.RequiredString("event", "body", m.Event); err != nil {
		res = append(res, err)
	}

	if err := validate.MaxLength("event", "body", m.Event, 128); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *PostPaymentEventPayload) ContextValidate(ctx context.Context, formats strfmt.Registry) error {
	return nil
}

type PaymentEventResponse struct {
	OK       bool   `json:"ok"`
	Received bool   `json:"received"`
	Outcome  string `json:"outcome,omitempty"`
}

func (m *PaymentEventResponse) Validate(formats strfmt.Registry) error {
	return nil
}

func (m *PaymentEventResponse) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return swag.WriteJSON(m)
}

func (m *PaymentEventResponse) UnmarshalBinary(b []byte) error {
	var res PaymentEventResponse
	if err := swag.ReadJSON(b, &res); err != nil {
		return err
	}
	*m = res
	return nil
}
