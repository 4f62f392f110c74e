package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"

	"github.com/gowebpki/jcs"
	"github.com/kashguard/go-payment-intents/internal/api/httperrors"
	"github.com/kashguard/go-payment-intents/internal/util"
	"github.com/labstack/echo/v4"
)

const HeaderWebhookSignature = "X-Webhook-Signature"

// SignWebhookBody returns the hex HMAC-SHA256 of body under secret.
func SignWebhookBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature accepts a signature over the raw body or over its
// RFC 8785 canonical form, with or without a "sha256=" prefix.
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	got, err := hex.DecodeString(signature)
	if err != nil || len(got) != sha256.Size {
		return false
	}

	if hmacEqual(secret, body, got) {
		return true
	}

	canonical, err := jcs.Transform(body)
	if err != nil {
		return false
	}
	return hmacEqual(secret, canonical, got)
}

func hmacEqual(secret string, body []byte, sig []byte) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), sig)
}

// WebhookSignature rejects requests whose X-Webhook-Signature does not match.
// An empty secret disables the check.
func WebhookSignature(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return next(c)
			}

			req := c.Request()
			body, err := io.ReadAll(req.Body)
			if err != nil {
				return httperrors.ErrBadRequestMalformedBody
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			if !VerifyWebhookSignature(secret, body, req.Header.Get(HeaderWebhookSignature)) {
				util.LogFromEchoContext(c).Warn().Msg("Rejected webhook with invalid signature")
				return httperrors.ErrUnauthorizedSignature
			}

			return next(c)
		}
	}
}
