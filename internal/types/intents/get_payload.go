package intents

import (
	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/go-openapi/validate"
)

var statusEnum = []interface{}{"pending", "authorized", "completed", "cancelled", "expired"}

// IntentIDParams binds the :id path segment shared by all intent routes.
type IntentIDParams struct {
	ID string `param:"id"`
}

func (m *IntentIDParams) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.RequiredString("id", "path", m.ID); err != nil {
		res = append(res, err)
	}

	if err := validate.MaxLength("id", "path", m.ID, 256); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

// ListIntentsParams are the query filters of GET /payment-intents.
type ListIntentsParams struct {
	Vendor string `query:"vendor"`
	Status string `query:"status"`
}

func (m *ListIntentsParams) Validate(formats strfmt.Registry) error {
	if m.Status == "" {
		return nil
	}
	if err := validate.EnumCase("status", "query", m.Status, statusEnum, false); err != nil {
		return errors.CompositeValidationError(err)
	}
	return nil
}

type CartLinePayload struct {
	ProductID    string         `json:"productId"`
	UnitPrice    *AmountPayload `json:"unitPrice"`
	Quantity     int64          `json:"quantity"`
	LineSubtotal *AmountPayload `json:"lineSubtotal"`
}

// IntentResponse is the full read view of an intent.
type IntentResponse struct {
	OK           bool               `json:"ok"`
	IntentID     string             `json:"intentId"`
	CartID       string             `json:"cartId,omitempty"`
	Amount       *AmountPayload     `json:"amount"`
	Description  string             `json:"description"`
	Vendor       string             `json:"vendor"`
	Status       string             `json:"status"`
	Simulated    bool               `json:"simulated"`
	PaymentURL   string             `json:"paymentUrl"`
	Payload      string             `json:"payload"`
	PaymentID    string             `json:"paymentId,omitempty"`
	CartSnapshot []*CartLinePayload `json:"cartSnapshot,omitempty"`
	CreatedAt    strfmt.DateTime    `json:"createdAt"`
	ExpiresAt    strfmt.DateTime    `json:"expiresAt"`
	StartedAt    *strfmt.DateTime   `json:"startedAt,omitempty"`
	AuthorizedAt *strfmt.DateTime   `json:"authorizedAt,omitempty"`
	CompletedAt  *strfmt.DateTime   `json:"completedAt,omitempty"`
	CancelledAt  *strfmt.DateTime   `json:"cancelledAt,omitempty"`
	ExpiredAt    *strfmt.DateTime   `json:"expiredAt,omitempty"`
}

func (m *IntentResponse) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.RequiredString("intentId", "body", m.IntentID); err != nil {
		res = append(res, err)
	}

	if err := validate.EnumCase("status", "body", m.Status, statusEnum, true); err != nil {
		res = append(res, err)
	}

	if m.Amount != nil {
		if err := m.Amount.Validate(formats); err != nil {
			res = append(res, err)
		}
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *IntentResponse) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return swag.WriteJSON(m)
}

func (m *IntentResponse) UnmarshalBinary(b []byte) error {
	var res IntentResponse
	if err := swag.ReadJSON(b, &res); err != nil {
		return err
	}
	*m = res
	return nil
}

type IntentListResponse struct {
	OK      bool              `json:"ok"`
	Count   int64             `json:"count"`
	Intents []*IntentResponse `json:"intents"`
}

func (m *IntentListResponse) Validate(formats strfmt.Registry) error {
	for _, pi := range m.Intents {
		if pi == nil {
			continue
		}
		if err := pi.Validate(formats); err != nil {
			return err
		}
	}
	return nil
}
