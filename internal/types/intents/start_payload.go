package intents

import (
	"context"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/go-openapi/validate"
)

// PostStartIntentPayload is the body of POST /payment-intents/:id/start.
// IntentID is optional but must match the path when sent.
type PostStartIntentPayload struct {
	IntentID string `json:"intentId,omitempty"`
}

func (m *PostStartIntentPayload) Validate(formats strfmt.Registry) error {
	return nil
}

func (m *PostStartIntentPayload) ContextValidate(ctx context.Context, formats strfmt.Registry) error {
	return nil
}

type StartIntentResponse struct {
	OK                bool   `json:"ok"`
	IntentID          string `json:"intentId"`
	RedirectURL       string `json:"redirectUrl"`
	PaymentID         string `json:"paymentId"`
	ContinuationURI   string `json:"continuationUri"`
	ContinuationToken string `json:"continuationToken"`
	Simulated         bool   `json:"simulated"`
}

func (m *StartIntentResponse) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.RequiredString("paymentId", "body", m.PaymentID); err != nil {
		res = append(res, err)
	}

	if err := validate.RequiredString("continuationToken", "body", m.ContinuationToken); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *StartIntentResponse) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return swag.WriteJSON(m)
}

func (m *StartIntentResponse) UnmarshalBinary(b []byte) error {
	var res StartIntentResponse
	if err := swag.ReadJSON(b, &res); err != nil {
		return err
	}
	*m = res
	return nil
}

// PostContinueIntentPayload is the body of POST /payment-intents/:id/continue.
type PostContinueIntentPayload struct {
	PaymentID string `json:"paymentId"`
	Grant     string `json:"grant"`
}

func (m *PostContinueIntentPayload) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.RequiredString("grant", "body", m.Grant); err != nil {
		res = append(res, err)
	}

	if err := validate.MaxLength("paymentId", "body", m.PaymentID, 256); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *PostContinueIntentPayload) ContextValidate(ctx context.Context, formats strfmt.Registry) error {
	return nil
}

type ContinueIntentResponse struct {
	OK           bool             `json:"ok"`
	Message      string           `json:"message"`
	IntentID     string           `json:"intentId"`
	PaymentID    string           `json:"paymentId"`
	Status       string           `json:"status"`
	AuthorizedAt *strfmt.DateTime `json:"authorizedAt"`
	CompletedAt  *strfmt.DateTime `json:"completedAt"`
}

func (m *ContinueIntentResponse) Validate(formats strfmt.Registry) error {
	if err := validate.RequiredString("status", "body", m.Status); err != nil {
		return errors.CompositeValidationError(err)
	}
	return nil
}

func (m *ContinueIntentResponse) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return swag.WriteJSON(m)
}

func (m *ContinueIntentResponse) UnmarshalBinary(b []byte) error {
	var res ContinueIntentResponse
	if err := swag.ReadJSON(b, &res); err != nil {
		return err
	}
	*m = res
	return nil
}
