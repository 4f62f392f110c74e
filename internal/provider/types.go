package provider

import "time"

// Amount is the Open Payments amount object: an integer value in minor units
// encoded as a decimal string.
type Amount struct {
	Value      string `json:"value"`
	AssetCode  string `json:"assetCode"`
	AssetScale uint8  `json:"assetScale"`
}

type IncomingPaymentRequest struct {
	WalletAddress string
	Amount        Amount
	Description   string
	ExternalRef   string
	ExpiresAt     time.Time
}

type incomingPaymentBody struct {
	WalletAddress  string            `json:"walletAddress"`
	IncomingAmount Amount            `json:"incomingAmount"`
	ExpiresAt      string            `json:"expiresAt"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

func (r IncomingPaymentRequest) wire() incomingPaymentBody {
	metadata := map[string]string{"description": r.Description}
	if r.ExternalRef != "" {
		metadata["externalRef"] = r.ExternalRef
	}

	return incomingPaymentBody{
		WalletAddress:  r.WalletAddress,
		IncomingAmount: r.Amount,
		ExpiresAt:      r.ExpiresAt.UTC().Format(time.RFC3339),
		Metadata:       metadata,
	}
}

type IncomingPayment struct {
	ID             string            `json:"id"`
	WalletAddress  string            `json:"walletAddress"`
	IncomingAmount *Amount           `json:"incomingAmount,omitempty"`
	Completed      bool              `json:"completed"`
	ExpiresAt      string            `json:"expiresAt,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

type GrantRequest struct {
	ClientWalletAddress string
	ReceiverAddress     string
	Amount              Amount
	Nonce               string
	// FinishURI overrides the configured finish redirect when set.
	FinishURI string
}

type grantAccess struct {
	Type       string   `json:"type"`
	Actions    []string `json:"actions"`
	Identifier string   `json:"identifier,omitempty"`
	Limits     *struct {
		ReceiveAmount Amount `json:"receiveAmount"`
	} `json:"limits,omitempty"`
}

type grantBody struct {
	AccessToken struct {
		Access []grantAccess `json:"access"`
	} `json:"access_token"`
	Client   string `json:"client"`
	Interact struct {
		Start  []string `json:"start"`
		Finish struct {
			Method string `json:"method"`
			URI    string `json:"uri"`
			Nonce  string `json:"nonce"`
		} `json:"finish"`
	} `json:"interact"`
}

func (r GrantRequest) wire(defaultFinish string) grantBody {
	var body grantBody

	access := grantAccess{
		Type:       "outgoing-payment",
		Actions:    []string{"create", "read"},
		Identifier: r.ClientWalletAddress,
	}
	access.Limits = &struct {
		ReceiveAmount Amount `json:"receiveAmount"`
	}{ReceiveAmount: r.Amount}

	body.AccessToken.Access = []grantAccess{access}
	body.Client = r.ClientWalletAddress
	body.Interact.Start = []string{"redirect"}
	body.Interact.Finish.Method = "redirect"
	body.Interact.Finish.URI = r.FinishURI
	if body.Interact.Finish.URI == "" {
		body.Interact.Finish.URI = defaultFinish
	}
	body.Interact.Finish.Nonce = r.Nonce

	return body
}

type grantResponse struct {
	Interact struct {
		Redirect string `json:"redirect"`
		Finish   string `json:"finish"`
	} `json:"interact"`
	Continue struct {
		URI         string `json:"uri"`
		Wait        int    `json:"wait"`
		AccessToken struct {
			Value string `json:"value"`
		} `json:"access_token"`
	} `json:"continue"`
}

// Grant is the interaction the payer has to complete at the provider.
type Grant struct {
	RedirectURL   string
	FinishNonce   string
	ContinueURI   string
	ContinueToken string
}
