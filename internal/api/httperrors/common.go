package httperrors

import (
	"net/http"

	"github.com/kashguard/go-payment-intents/internal/types"
)

var (
	ErrBadRequestMalformedBody    = NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeMalformedBody, "Malformed request body")
	ErrBadRequestIntentIDMismatch = NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeInvalidParams, "Body intent id does not match path")
	ErrBadRequestUnknownRole      = NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeUnknownRole, "Unknown credential role")
	ErrUnauthorizedSignature      = NewHTTPError(http.StatusUnauthorized, types.PublicHTTPErrorTypeInvalidSignature, "Invalid webhook signature")
	ErrNotFoundIntent             = NewHTTPError(http.StatusNotFound, types.PublicHTTPErrorTypeIntentNotFound, "Payment intent not found")
	ErrConflictIntentTerminal     = NewHTTPError(http.StatusConflict, types.PublicHTTPErrorTypeIntentTerminal, "Payment intent is in a terminal state")
	ErrTooManyRequests            = NewHTTPError(http.StatusTooManyRequests, types.PublicHTTPErrorTypeRateLimited, "Too many requests")
	ErrTokenIssuanceFailed        = NewHTTPError(http.StatusInternalServerError, types.PublicHTTPErrorTypeTokenIssuance, "Failed to issue token")
	ErrInternalServer             = NewHTTPError(http.StatusInternalServerError, types.PublicHTTPErrorTypeInternalServerError, "Internal Server Error")
	ErrServiceUnavailable         = NewHTTPError(http.StatusServiceUnavailable, types.PublicHTTPErrorTypeServiceNotReady, "Service is not ready")
)
