package intent

import (
	"strings"

	"github.com/kashguard/go-payment-intents/internal/provider"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	DefaultAssetCode  = "USD"
	DefaultAssetScale = 2
)

// Amount is a fixed-point value in minor units. Value is an integer encoded
// as a decimal string so no float ever reaches the wire.
type Amount struct {
	Value      string `json:"value"`
	AssetCode  string `json:"assetCode"`
	AssetScale uint8  `json:"assetScale"`
}

// NewAmount converts a major-unit decimal into minor units at scale. Amounts
// with more fractional digits than the scale allows are rejected.
func NewAmount(major decimal.Decimal, assetCode string, scale uint8) (Amount, error) {
	if !major.IsPositive() {
		return Amount{}, errors.Wrap(ErrInvalidIntentRequest, "amount must be greater than zero")
	}

	minor := major.Shift(int32(scale))
	if !minor.Equal(minor.Truncate(0)) {
		return Amount{}, errors.Wrapf(ErrInvalidIntentRequest, "amount %s has more than %d decimal places", major.String(), scale)
	}

	code := strings.ToUpper(strings.TrimSpace(assetCode))
	if code == "" {
		code = DefaultAssetCode
	}

	return Amount{
		Value:      minor.Truncate(0).String(),
		AssetCode:  code,
		AssetScale: scale,
	}, nil
}

// ParseMajor parses a major-unit amount such as "100.00".
func ParseMajor(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, errors.Wrapf(ErrInvalidIntentRequest, "amount %q is not a number", s)
	}
	return d, nil
}

// Minor returns the integer minor-unit value.
func (a Amount) Minor() decimal.Decimal {
	d, err := decimal.NewFromString(a.Value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Major returns the amount in major units, e.g. 10000 at scale 2 is 100.
func (a Amount) Major() decimal.Decimal {
	return a.Minor().Shift(-int32(a.AssetScale))
}

// String renders the amount in major units with exactly AssetScale decimals.
func (a Amount) String() string {
	return a.Major().StringFixed(int32(a.AssetScale)) + " " + a.AssetCode
}

func (a Amount) provider() provider.Amount {
	return provider.Amount{
		Value:      a.Value,
		AssetCode:  a.AssetCode,
		AssetScale: a.AssetScale,
	}
}
