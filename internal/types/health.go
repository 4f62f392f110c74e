package types

import (
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
)

type CredentialFlags struct {
	PrivateKey    bool `json:"privateKey"`
	PublicKeyFile bool `json:"publicKeyFile"`
	KeyID         bool `json:"keyId"`
	WalletAddress bool `json:"walletAddress"`
}

// HealthResponse reports liveness plus which credentials were loaded. It
// never contains key material.
type HealthResponse struct {
	OK                 bool                        `json:"ok"`
	Status             string                      `json:"status"`
	Credentials        map[string]*CredentialFlags `json:"credentials"`
	ProviderConfigured bool                        `json:"providerConfigured"`
	WebhookSigned      bool                        `json:"webhookSigned"`
	Store              string                      `json:"store"`
	Time               strfmt.DateTime             `json:"time"`
}

func (m *HealthResponse) Validate(formats strfmt.Registry) error {
	return nil
}

func (m *HealthResponse) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return swag.WriteJSON(m)
}

func (m *HealthResponse) UnmarshalBinary(b []byte) error {
	var res HealthResponse
	if err := swag.ReadJSON(b, &res); err != nil {
		return err
	}
	*m = res
	return nil
}
