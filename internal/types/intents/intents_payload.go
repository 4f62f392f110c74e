package intents

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/go-openapi/validate"
)

const (
	amountPattern   = `^[0-9]+(\.[0-9]+)?$`
	currencyPattern = `^[A-Za-z]{3}$`
	minorPattern    = `^[0-9]+$`
)

// AmountPayload is a fixed-point amount in minor units.
type AmountPayload struct {
	Value      string `json:"value"`
	AssetCode  string `json:"assetCode"`
	AssetScale int64  `json:"assetScale"`
}

func (m *AmountPayload) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.Pattern("value", "body", m.Value, minorPattern); err != nil {
		res = append(res, err)
	}

	if err := validate.RequiredString("assetCode", "body", m.AssetCode); err != nil {
		res = append(res, err)
	}

	if err := validate.MinimumInt("assetScale", "body", m.AssetScale, 0, false); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

// CartItemPayload is one cart line as submitted; unitPrice in major units.
type CartItemPayload struct {
	ProductID string      `json:"productId"`
	UnitPrice json.Number `json:"unitPrice"`
	Quantity  int64       `json:"quantity"`
}

func (m *CartItemPayload) validate(i int) []error {
	var res []error
	prefix := "items." + strconv.Itoa(i) + "."

	if err := validate.RequiredString(prefix+"productId", "body", m.ProductID); err != nil {
		res = append(res, err)
	}

	if err := validate.Pattern(prefix+"unitPrice", "body", m.UnitPrice.String(), amountPattern); err != nil {
		res = append(res, err)
	}

	if err := validate.MinimumInt(prefix+"quantity", "body", m.Quantity, 1, false); err != nil {
		res = append(res, err)
	}

	return res
}

// PostCreateIntentPayload is the body of POST /payment-intents. Amount is
// in major units and may be sent as a JSON number or a numeric string.
type PostCreateIntentPayload struct {
	Amount      json.Number        `json:"amount"`
	Description string             `json:"description"`
	Vendor      string             `json:"vendor"`
	Currency    string             `json:"currency,omitempty"`
	CartID      string             `json:"cartId,omitempty"`
	Items       []*CartItemPayload `json:"items,omitempty"`
}

func (m *PostCreateIntentPayload) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.RequiredString("amount", "body", m.Amount.String()); err != nil {
		res = append(res, err)
	} else if err := validate.Pattern("amount", "body", m.Amount.String(), amountPattern); err != nil {
		res = append(res, err)
	}

	if m.Currency != "" {
		if err := validate.Pattern("currency", "body", m.Currency, currencyPattern); err != nil {
			res = append(res, err)
		}
	}

	for i, item := range m.Items {
		if item == nil {
			res = append(res, errors.Required("items."+strconv.Itoa(i), "body", nil))
			continue
		}
		res = append(res, item.validate(i)...)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *PostCreateIntentPayload) ContextValidate(ctx context.Context, formats strfmt.Registry) error {
	return nil
}

// IntentCreatedResponse is returned by POST /payment-intents.
type IntentCreatedResponse struct {
	OK          bool            `json:"ok"`
	QRImage     string          `json:"qrImage"`
	IntentID    string          `json:"intentId"`
	Amount      *AmountPayload  `json:"amount"`
	Description string          `json:"description"`
	Vendor      string          `json:"vendor"`
	PaymentURL  string          `json:"paymentUrl"`
	Simulated   bool            `json:"simulated"`
	Status      string          `json:"status"`
	ExpiresAt   strfmt.DateTime `json:"expiresAt"`
	Payload     string          `json:"payload"`
}

func (m *IntentCreatedResponse) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.RequiredString("intentId", "body", m.IntentID); err != nil {
		res = append(res, err)
	}

	if err := validate.Required("amount", "body", m.Amount); err != nil {
		res = append(res, err)
	} else if err := m.Amount.Validate(formats); err != nil {
		res = append(res, err)
	}

	if err := validate.RequiredString("status", "body", m.Status); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *IntentCreatedResponse) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return swag.WriteJSON(m)
}

func (m *IntentCreatedResponse) UnmarshalBinary(b []byte) error {
	var res IntentCreatedResponse
	if err := swag.ReadJSON(b, &res); err != nil {
		return err
	}
	*m = res
	return nil
}
