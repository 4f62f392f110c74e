package intent

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// CartItem is one line as submitted by the caller, prices in major units.
type CartItem struct {
	ProductID string
	UnitPrice decimal.Decimal
	Quantity  int64
}

// CartLine is the frozen form stored with the intent.
type CartLine struct {
	ProductID    string `json:"productId"`
	UnitPrice    Amount `json:"unitPrice"`
	Quantity     int64  `json:"quantity"`
	LineSubtotal Amount `json:"lineSubtotal"`
}

// BuildCartSnapshot computes line subtotals once and checks that they add up
// to total. An empty cart yields a nil snapshot.
func BuildCartSnapshot(items []CartItem, total Amount) ([]CartLine, error) {
	if len(items) == 0 {
		return nil, nil
	}

	lines := make([]CartLine, 0, len(items))
	sum := decimal.Zero

	for i, item := range items {
		if strings.TrimSpace(item.ProductID) == "" {
			return nil, errors.Wrapf(ErrInvalidIntentRequest, "items[%d]: productId is required", i)
		}
		if item.Quantity <= 0 {
			return nil, errors.Wrapf(ErrInvalidIntentRequest, "items[%d]: quantity must be greater than zero", i)
		}

		unit, err := NewAmount(item.UnitPrice, total.AssetCode, total.AssetScale)
		if err != nil {
			return nil, errors.Wrapf(err, "items[%d]: unitPrice", i)
		}

		subtotal := unit.Minor().Mul(decimal.NewFromInt(item.Quantity))
		sum = sum.Add(subtotal)

		lines = append(lines, CartLine{
			ProductID: item.ProductID,
			UnitPrice: unit,
			Quantity:  item.Quantity,
			LineSubtotal: Amount{
				Value:      subtotal.String(),
				AssetCode:  total.AssetCode,
				AssetScale: total.AssetScale,
			},
		})
	}

	if !sum.Equal(total.Minor()) {
		return nil, errors.Wrapf(ErrInvalidIntentRequest, "cart total %s does not match amount %s", sum.String(), total.Value)
	}

	return lines, nil
}
