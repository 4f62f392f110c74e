package intents

import (
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/kashguard/go-payment-intents/internal/intent"
	"github.com/kashguard/go-payment-intents/internal/types/intents"
)

func amountPayload(a intent.Amount) *intents.AmountPayload {
	return &intents.AmountPayload{
		Value:      a.Value,
		AssetCode:  a.AssetCode,
		AssetScale: int64(a.AssetScale),
	}
}

func dateTime(t *time.Time) *strfmt.DateTime {
	if t == nil {
		return nil
	}
	dt := strfmt.DateTime(*t)
	return &dt
}

func intentResponse(pi *intent.PaymentIntent) *intents.IntentResponse {
	res := &intents.IntentResponse{
		OK:           true,
		IntentID:     pi.ID,
		CartID:       pi.CartID,
		Amount:       amountPayload(pi.Amount),
		Description:  pi.Description,
		Vendor:       pi.VendorLabel,
		Status:       string(pi.Status),
		Simulated:    pi.Simulated,
		PaymentURL:   pi.PaymentURL,
		Payload:      pi.Payload,
		PaymentID:    pi.PaymentID,
		CreatedAt:    strfmt.DateTime(pi.CreatedAt),
		ExpiresAt:    strfmt.DateTime(pi.ExpiresAt),
		StartedAt:    dateTime(pi.StartedAt),
		AuthorizedAt: dateTime(pi.AuthorizedAt),
		CompletedAt:  dateTime(pi.CompletedAt),
		CancelledAt:  dateTime(pi.CancelledAt),
		ExpiredAt:    dateTime(pi.ExpiredAt),
	}

	for _, line := range pi.CartSnapshot {
		res.CartSnapshot = append(res.CartSnapshot, &intents.CartLinePayload{
			ProductID:    line.ProductID,
			UnitPrice:    amountPayload(line.UnitPrice),
			Quantity:     line.Quantity,
			LineSubtotal: amountPayload(line.LineSubtotal),
		})
	}

	return res
}
