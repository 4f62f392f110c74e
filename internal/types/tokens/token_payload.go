package tokens

import (
	"context"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/go-openapi/validate"
)

// PostTokenPayload requests a client assertion. Role defaults to receiver.
type PostTokenPayload struct {
	KeyID string `json:"keyId,omitempty"`
	Role  string `json:"role"`
}

func (m *PostTokenPayload) Validate(formats strfmt.Registry) error {
	if err := validate.MaxLength("keyId", "body", m.KeyID, 256); err != nil {
		return errors.CompositeValidationError(err)
	}
	return nil
}

func (m *PostTokenPayload) ContextValidate(ctx context.Context, formats strfmt.Registry) error {
	return nil
}

type TokenResponse struct {
	Token     string          `json:"token"`
	KeyID     string          `json:"keyId"`
	Role      string          `json:"role"`
	Algorithm string          `json:"algorithm"`
	ExpiresIn int64           `json:"expiresIn"`
	ExpiresAt strfmt.DateTime `json:"expiresAt"`
}

func (m *TokenResponse) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.RequiredString("token", "body", m.Token); err != nil {
		res = append(res, err)
	}

	if err := validate.RequiredString("keyId", "body", m.KeyID); err != nil {
		res = append(res, err)
	}

	if err := validate.MinimumInt("expiresIn", "body", m.ExpiresIn, 0, true); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *TokenResponse) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return swag.WriteJSON(m)
}

func (m *TokenResponse) UnmarshalBinary(b []byte) error {
	var res TokenResponse
	if err := swag.ReadJSON(b, &res); err != nil {
		return err
	}
	*m = res
	return nil
}
