package types

import (
	"context"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
)

// PublicHTTPErrorType is a stable, machine readable error code.
type PublicHTTPErrorType string

const (
	PublicHTTPErrorTypeGeneric             PublicHTTPErrorType = "generic"
	PublicHTTPErrorTypeMalformedBody       PublicHTTPErrorType = "MALFORMED_BODY"
	PublicHTTPErrorTypeInvalidParams       PublicHTTPErrorType = "INVALID_PARAMS"
	PublicHTTPErrorTypeValidation          PublicHTTPErrorType = "VALIDATION_FAILED"
	PublicHTTPErrorTypeInvalidIntent       PublicHTTPErrorType = "INVALID_INTENT_REQUEST"
	PublicHTTPErrorTypeIntentNotFound      PublicHTTPErrorType = "INTENT_NOT_FOUND"
	PublicHTTPErrorTypeIntentTerminal      PublicHTTPErrorType = "INTENT_TERMINAL"
	PublicHTTPErrorTypeTokenIssuance       PublicHTTPErrorType = "TOKEN_ISSUANCE_FAILED"
	PublicHTTPErrorTypeUnknownRole         PublicHTTPErrorType = "UNKNOWN_ROLE"
	PublicHTTPErrorTypeInvalidSignature    PublicHTTPErrorType = "INVALID_WEBHOOK_SIGNATURE"
	PublicHTTPErrorTypeRateLimited         PublicHTTPErrorType = "RATE_LIMITED"
	PublicHTTPErrorTypeServiceNotReady     PublicHTTPErrorType = "SERVICE_NOT_READY"
	PublicHTTPErrorTypeInternalServerError PublicHTTPErrorType = "INTERNAL_SERVER_ERROR"
)

// PublicHTTPError is the body of every non-2xx response.
type PublicHTTPError struct {
	OK      bool                `json:"ok"`
	Message string              `json:"error"`
	Code    int                 `json:"status"`
	Type    PublicHTTPErrorType `json:"type"`
	Title   string              `json:"title"`
	Detail  string              `json:"detail,omitempty"`
}

func (m *PublicHTTPError) Validate(formats strfmt.Registry) error {
	return nil
}

func (m *PublicHTTPError) ContextValidate(ctx context.Context, formats strfmt.Registry) error {
	return nil
}

func (m *PublicHTTPError) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return swag.WriteJSON(m)
}

func (m *PublicHTTPError) UnmarshalBinary(b []byte) error {
	var res PublicHTTPError
	if err := swag.ReadJSON(b, &res); err != nil {
		return err
	}
	*m = res
	return nil
}

// HTTPValidationErrorDetail describes a single invalid field.
type HTTPValidationErrorDetail struct {
	Key   string `json:"key"`
	In    string `json:"in"`
	Error string `json:"error"`
}

// PublicHTTPValidationError extends PublicHTTPError with per-field details.
type PublicHTTPValidationError struct {
	PublicHTTPError
	ValidationErrors []*HTTPValidationErrorDetail `json:"validationErrors"`
}
