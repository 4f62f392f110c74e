package intent

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gowebpki/jcs"
	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	DefaultPayloadType = "payment_request"
	DefaultQRCodeSize  = 256

	intentIDPlaceholder = "{intentId}"
)

// PayloadDocument is what the QR code encodes.
type PayloadDocument struct {
	Type        string `json:"type"`
	IntentID    string `json:"intentId"`
	Amount      Amount `json:"amount"`
	Description string `json:"description"`
	Vendor      string `json:"vendor"`
	Timestamp   string `json:"timestamp"`
	Receiver    string `json:"receiver"`
	ContinueURL string `json:"continueUrl"`
	Simulated   bool   `json:"simulated"`
}

func newPayloadDocument(payloadType string, pi *PaymentIntent) PayloadDocument {
	if payloadType == "" {
		payloadType = DefaultPayloadType
	}
	return PayloadDocument{
		Type:        payloadType,
		IntentID:    pi.ID,
		Amount:      pi.Amount,
		Description: pi.Description,
		Vendor:      pi.VendorLabel,
		Timestamp:   pi.CreatedAt.UTC().Format(time.RFC3339Nano),
		Receiver:    pi.ReceiverAddress,
		ContinueURL: pi.PaymentURL,
		Simulated:   pi.Simulated,
	}
}

// RenderPayload serializes doc in RFC 8785 canonical form, so the same intent
// always yields the same bytes.
func RenderPayload(doc PayloadDocument) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal payload document")
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to canonicalize payload document")
	}

	return canonical, nil
}

// RenderQRCode encodes content as a PNG QR code and returns it as a data URL.
func RenderQRCode(content []byte, size int) (string, error) {
	if size <= 0 {
		size = DefaultQRCodeSize
	}

	png, err := qrcode.Encode(string(content), qrcode.Medium, size)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode QR code")
	}

	mime := mimetype.Detect(png)
	return "data:" + mime.String() + ";base64," + base64.StdEncoding.EncodeToString(png), nil
}

// ExpandURLTemplate substitutes the intent id into tpl. A template without a
// placeholder gets the id appended as a path segment.
func ExpandURLTemplate(tpl string, intentID string) string {
	escaped := url.PathEscape(intentID)
	if strings.Contains(tpl, intentIDPlaceholder) {
		return strings.ReplaceAll(tpl, intentIDPlaceholder, escaped)
	}
	return strings.TrimRight(tpl, "/") + "/" + escaped
}
